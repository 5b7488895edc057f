package network

import (
	"net"
	"sync/atomic"
	"time"
)

// ConnectionState is the lifecycle state of a Connection.
type ConnectionState int32

const (
	StateConnected ConnectionState = iota
	StateClosed
)

// Connection wraps one accepted net.Conn with the state and
// best-effort nonblocking semantics the broker package's Conn
// interface needs. It carries no buffering, no TLS, and no read
// deadline: readiness is established up front by Poller.Wait, so a
// Read call only ever happens once data is already available.
type Connection struct {
	conn  net.Conn
	id    string
	state atomic.Int32
}

// ConnectionConfig tunes socket-level options applied at accept time.
type ConnectionConfig struct {
	// KeepAlive enables the kernel TCP keep-alive probe at this
	// interval. It is unrelated to the MQTT keep-alive the session
	// package enforces; it only guards against a dead peer the kernel
	// would otherwise hold open forever.
	KeepAlive time.Duration
}

// NewConnection wraps conn, applying TCP_NODELAY and, if cfg requests
// it, kernel keep-alive probing.
func NewConnection(conn net.Conn, id string, cfg *ConnectionConfig) *Connection {
	c := &Connection{conn: conn, id: id}
	c.state.Store(int32(StateConnected))

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
		if cfg != nil && cfg.KeepAlive > 0 {
			_ = tcpConn.SetKeepAlive(true)
			_ = tcpConn.SetKeepAlivePeriod(cfg.KeepAlive)
		}
	}

	return c
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Connection) State() ConnectionState { return ConnectionState(c.state.Load()) }

// Read fills b from the socket. The event loop only calls Read once
// the poller has reported this connection's descriptor readable, so
// in practice this never blocks.
func (c *Connection) Read(b []byte) (int, error) {
	if c.State() != StateConnected {
		return 0, ErrConnectionClosed
	}
	return c.conn.Read(b)
}

// Write sends b best-effort. A write deadline 10ms ahead is set before
// every call so the write completes at once against kernel buffer
// space, or returns a timeout within those 10ms once it would block —
// the broker never retries a short write; whatever the kernel
// accepted before back-pressure hit is all that is sent.
func (c *Connection) Write(b []byte) (int, error) {
	if c.State() != StateConnected {
		return 0, ErrConnectionClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Millisecond))
	return c.conn.Write(b)
}

func (c *Connection) Close() error {
	if !c.state.CompareAndSwap(int32(StateConnected), int32(StateClosed)) {
		return nil
	}
	return c.conn.Close()
}
