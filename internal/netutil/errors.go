// Package netutil provides the listener and network error helpers shared by
// rplusd and rplusctl.
//
// Errors are classified by type rather than by message so the checks hold
// across operating systems and Go versions.
package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError reports whether err means "address already in use".
// The daemon uses it to tell port conflicts apart from other bind failures.
func IsAddressInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError reports whether err means "connection refused".
// The CLI uses it to hint that the daemon is not running.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
