package network

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Listener is a single dual-stack TCP listening socket. The event loop
// calls Accept synchronously once per iteration, bounded by
// SetDeadline; the listening descriptor is never registered with the
// Poller, and there is no accept-loop goroutine.
type Listener struct {
	ln  net.Listener
	cfg *ConnectionConfig
}

// Listen opens addr, preferring a dual-stack IPv6 listener with
// IPV6_V6ONLY disabled and falling back to IPv4-only when IPv6 is
// unavailable. SO_REUSEADDR is always set.
func Listen(addr string, cfg *ConnectionConfig) (*Listener, error) {
	lc := net.ListenConfig{Control: controlReuseAddr}

	ln, err := lc.Listen(context.Background(), "tcp6", addr)
	if err != nil {
		ln, err = lc.Listen(context.Background(), "tcp4", addr)
		if err != nil {
			return nil, fmt.Errorf("network: listen %s: %w", addr, err)
		}
	}

	return &Listener{ln: ln, cfg: cfg}, nil
}

// Accept claims the next pending connection and wraps it. It blocks
// until a connection arrives or the deadline set by SetDeadline
// passes, whichever comes first.
func (l *Listener) Accept(id string) (*Connection, error) {
	netConn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return NewConnection(netConn, id, l.cfg), nil
}

// SetDeadline bounds the next Accept call on the underlying listener,
// letting the event loop poll the listening socket without a
// dedicated goroutine. It is a no-op on listener types that don't
// support deadlines.
func (l *Listener) SetDeadline(t time.Time) error {
	if tl, ok := l.ln.(*net.TCPListener); ok {
		return tl.SetDeadline(t)
	}
	return nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Close() error { return l.ln.Close() }
