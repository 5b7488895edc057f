//go:build !linux && !darwin

package network

import "syscall"

// controlReuseAddr is a no-op outside Linux/Darwin, where this
// broker's poller falls back to timer-based readiness anyway.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
