// Package api defines the contracts shared by the transport core: the
// closed error-kind enumeration, the structured Error carrying a source
// location tag, the platform syscall surface (Sys) and its poll event
// types, and the pure errno classification used to decide retry vs fatal.
//
// Everything above this package (buffered channels, the UDP framer, the
// readable-connection selector) is written against these contracts so
// that the whole core can be driven by a scripted fake without touching
// a real socket.
package api
