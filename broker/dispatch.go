package broker

import (
	"time"

	"github.com/sewerpiped/broker/session"
	"github.com/sewerpiped/broker/wire"
)

// Dispatch feeds newly received bytes for slot id through the
// session's receive buffer and handles every complete packet it
// frames, in arrival order. It reports false once the session must
// be closed — the caller is then responsible for calling Destroy.
func (b *Broker) Dispatch(id int, data []byte, now time.Time) (keepOpen bool) {
	s := &b.slots[id].sess
	s.Touch(now)

	if !s.Append(data) {
		b.log.Warn("receive buffer overflow", "slot", id, "err", session.ErrOversizeFrame)
		return false
	}

	keepOpen = true
	err := s.Consume(func(f wire.Frame) bool {
		if !b.dispatchOne(id, f, now) {
			keepOpen = false
			return true
		}
		return false
	})
	if err != nil {
		return false
	}
	return keepOpen
}

func (b *Broker) dispatchOne(id int, f wire.Frame, now time.Time) (keepOpen bool) {
	s := &b.slots[id].sess

	if s.Phase != session.Connected {
		if f.Type != wire.CONNECT {
			return false
		}
	} else if f.Type == wire.CONNECT {
		// A second CONNECT on an already-established session is a
		// protocol error.
		return false
	}

	switch f.Type {
	case wire.CONNECT:
		return b.handleConnect(id, f.Body, now)
	case wire.PUBLISH:
		return b.handlePublish(id, f, now)
	case wire.PUBACK:
		return b.handlePubAck(id, f.Body)
	case wire.SUBSCRIBE:
		return b.handleSubscribe(id, f.Body, now)
	case wire.UNSUBSCRIBE:
		return b.handleUnsubscribe(id, f.Body)
	case wire.PINGREQ:
		return b.handlePingReq(id)
	case wire.DISCONNECT:
		s.ClearWill()
		return false
	default:
		return false
	}
}

func (b *Broker) handlePubAck(id int, body []byte) (keepOpen bool) {
	if len(body) < 2 {
		return false
	}
	msgID := uint16(body[0])<<8 | uint16(body[1])
	b.slots[id].sess.AckInflight(msgID)
	return true
}

func (b *Broker) handlePingReq(id int) (keepOpen bool) {
	n := wire.PingResp(b.scratch[:2])
	b.send(id, b.scratch[:n])
	return true
}
