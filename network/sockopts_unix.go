//go:build linux || darwin

package network

import "syscall"

// controlReuseAddr sets SO_REUSEADDR and, for an IPv6 listener,
// disables IPV6_V6ONLY so a single socket serves both address
// families.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		if network == "tcp6" {
			sockErr = syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, 0)
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
