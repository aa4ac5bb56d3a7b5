//go:build !linux
// +build !linux

package api

import "syscall"

func isRestart(syscall.Errno) bool { return false }
