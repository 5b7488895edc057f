package network

import "errors"

var (
	// ErrConnectionClosed is returned by Read/Write on a Connection
	// whose state is no longer StateConnected, and reported on an
	// Event when the poller sees EPOLLERR/EPOLLHUP or kqueue EV_EOF.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrListenerClosed is returned by Poller.Add and Poller.Wait once
	// the poller has been closed.
	ErrListenerClosed = errors.New("listener closed")
)
