//go:build linux
// +build linux

package api

import "syscall"

// ERESTART is Linux-only; glibc normally hides it but it can leak out of
// poll and recv on some kernels.
func isRestart(errno syscall.Errno) bool { return errno == syscall.ERESTART }
