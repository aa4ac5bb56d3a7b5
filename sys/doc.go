// Package sys provides the real platform implementation of api.Sys over
// raw non-blocking socket descriptors. Platform-specific code is strictly
// separated by build tags; non-Linux builds get a stub whose calls report
// api.KindNotSupported.
package sys
