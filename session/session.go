// Package session implements the per-client MQTT 3.1.1 state machine:
// connection phase, receive-buffer framing, subscription and inflight
// slots, will capture, and keep-alive bookkeeping. A Session holds no
// lock; it is owned exclusively by the broker's single event loop.
package session

import (
	"time"

	"github.com/sewerpiped/broker/wire"
)

const (
	// RxBufSize is the fixed receive-buffer capacity per session.
	RxBufSize = 65536
	// MaxSubs bounds the number of subscription slots per session.
	MaxSubs = 32
	// MaxInflight bounds the number of outstanding QoS 1 deliveries
	// per session.
	MaxInflight = 16
	// MaxClientIDLen is the nominal maximum length of a client
	// identifier. CONNECT handling does not check it.
	MaxClientIDLen = 127
	// MaxFilterLen is the nominal maximum length of a subscription
	// filter. SUBSCRIBE handling does not check it.
	MaxFilterLen = 255

	// ConnectTimeout is how long a session may sit in Phase New before
	// it is destroyed for inactivity.
	ConnectTimeout = 10 * time.Second
	// RetryInterval is how long an unacknowledged QoS 1 delivery
	// waits before it is retransmitted with DUP set.
	RetryInterval = 5 * time.Second
)

// Phase is the session's position in the connection lifecycle.
type Phase byte

const (
	// New is the phase between accept and a successful CONNECT.
	New Phase = iota
	// Connected is the phase after a successful CONNECT handshake.
	Connected
	// Destroyed names the end of the lifecycle. The broker never
	// stores it: Broker.Destroy zeroes the table slot outright.
	Destroyed
)

// Subscription is one subscription slot. An empty Filter marks the
// slot free.
type Subscription struct {
	Filter []byte
	QoS    wire.QoS
}

func (s *Subscription) free() bool { return len(s.Filter) == 0 }

// Inflight is a QoS 1 publish sent to this session and awaiting
// PUBACK.
type Inflight struct {
	Active  bool
	MsgID   uint16
	Topic   []byte
	Payload []byte
	SentAt  time.Time
}

// Will is the session's captured last-will record.
type Will struct {
	Present bool
	Topic   []byte
	Payload []byte
	QoS     wire.QoS
	Retain  bool
}

// Session holds all per-client state for one accepted connection.
type Session struct {
	// ConnID is a diagnostic-only identifier (e.g. the listening
	// slot index); it plays no protocol role.
	ConnID int

	Phase    Phase
	ClientID []byte
	KeepAlive uint16

	ConnectedAt   time.Time
	LastActivity  time.Time

	Will Will

	Subs     [MaxSubs]Subscription
	Inflight [MaxInflight]Inflight
	nextMsgID uint16

	rxBuf [RxBufSize]byte
	rxLen int
}

// Reset clears s to its zero, unconnected state so its table slot can
// be reused for a new accept.
func (s *Session) Reset(connID int) {
	*s = Session{ConnID: connID, nextMsgID: 1}
}

// Touch records that a byte was just received, for keep-alive tracking.
func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
}

// KeepAliveDeadline reports the time by which another byte must
// arrive, or the zero Time if the keep-alive timeout is disabled.
func (s *Session) KeepAliveDeadline() time.Time {
	if s.KeepAlive == 0 {
		return time.Time{}
	}
	budget := time.Duration(s.KeepAlive) * time.Second
	return s.LastActivity.Add(budget + budget/2)
}

// Append adds data to the receive buffer. It reports false if doing
// so would exceed the buffer's fixed capacity; the caller must treat
// that as an oversize-frame framing error and destroy the session.
func (s *Session) Append(data []byte) bool {
	if s.rxLen+len(data) > RxBufSize {
		return false
	}
	copy(s.rxBuf[s.rxLen:], data)
	s.rxLen += len(data)
	return true
}

// Consume repeatedly frames complete packets out of the receive
// buffer, invoking fn for each in arrival order. fn returns true to
// request an early stop (e.g. the session was just destroyed).
// Consume returns wire.ErrMalformed if framing fails; any bytes of a
// trailing incomplete packet are preserved for the next Append.
func (s *Session) Consume(fn func(wire.Frame) (stop bool)) error {
	for {
		frame, outcome := wire.FrameOne(s.rxBuf[:s.rxLen])
		switch outcome {
		case wire.Incomplete:
			return nil
		case wire.Malformed:
			return wire.ErrMalformed
		}

		stop := fn(frame)
		copy(s.rxBuf[:s.rxLen-frame.Consumed], s.rxBuf[frame.Consumed:s.rxLen])
		s.rxLen -= frame.Consumed
		if stop {
			return nil
		}
	}
}

// NextMessageID returns the next outbound message id, advancing the
// generator. It starts at 1 and wraps from 0xFFFF back to 1.
func (s *Session) NextMessageID() uint16 {
	id := s.nextMsgID
	s.nextMsgID++
	if s.nextMsgID == 0 {
		s.nextMsgID = 1
	}
	return id
}

// SetWill records a captured last-will message.
func (s *Session) SetWill(topic, payload []byte, qos wire.QoS, retain bool) {
	s.Will = Will{
		Present: true,
		Topic:   append([]byte(nil), topic...),
		Payload: append([]byte(nil), payload...),
		QoS:     qos,
		Retain:  retain,
	}
}

// ClearWill suppresses the captured will, e.g. on an orderly
// DISCONNECT.
func (s *Session) ClearWill() {
	s.Will = Will{}
}
