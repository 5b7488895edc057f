package broker

import (
	"time"

	"github.com/sewerpiped/broker/session"
	"github.com/sewerpiped/broker/wire"
)

// Tick runs the event loop's periodic timer pass: the connect
// timeout for sessions still in Phase New, the keep-alive timeout for
// Connected sessions, and QoS 1 retransmission. A session that times
// out is released through Destroy, which also closes its transport.
func (b *Broker) Tick(now time.Time) {
	for i := range b.slots {
		if !b.slots[i].used {
			continue
		}
		s := &b.slots[i].sess

		switch s.Phase {
		case session.New:
			if now.Sub(s.ConnectedAt) >= session.ConnectTimeout {
				b.Destroy(i, false, now)
				continue
			}
		case session.Connected:
			if deadline := s.KeepAliveDeadline(); !deadline.IsZero() && now.After(deadline) {
				b.Destroy(i, true, now)
				continue
			}
		}

		if s.Phase == session.Connected {
			b.retryInflight(i, now)
		}
	}
}

func (b *Broker) retryInflight(id int, now time.Time) {
	s := &b.slots[id].sess
	s.DueForRetry(now, func(in *session.Inflight) {
		n, err := wire.Publish(b.scratch[:], in.Topic, in.Payload, wire.QoS1, in.MsgID, true, false)
		if err != nil {
			return
		}
		b.send(id, b.scratch[:n])
	})
}
