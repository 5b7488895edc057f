package broker

import (
	"time"

	"github.com/sewerpiped/broker/topic"
	"github.com/sewerpiped/broker/wire"
)

const subackFail = 0x80

// handleSubscribe processes a SUBSCRIBE body. It reports false when
// the packet must be rejected wholesale (too many filters, or a
// truncated body) without ever answering with a SUBACK.
func (b *Broker) handleSubscribe(id int, body []byte, now time.Time) (keepOpen bool) {
	packetID, filters, ok := wire.ParseSubscribe(body)
	if !ok {
		return false
	}

	s := &b.slots[id].sess
	codes := make([]byte, len(filters))
	for i, f := range filters {
		if !topic.ValidFilter(f.Filter) {
			codes[i] = subackFail
			continue
		}

		granted := f.QoS
		if granted > wire.QoS1 {
			granted = wire.QoS1
		}
		if !s.Subscribe(f.Filter, granted) {
			codes[i] = subackFail
			continue
		}
		codes[i] = byte(granted)
	}

	n, err := wire.SubAck(b.scratch[:], packetID, codes)
	if err != nil {
		b.log.Warn("suback too large for scratch buffer", "slot", id)
		return false
	}
	b.send(id, b.scratch[:n])

	for i, f := range filters {
		if codes[i] == subackFail {
			continue
		}
		b.retained.Match(f.Filter, func(top, payload []byte, storedQoS wire.QoS) {
			effective := storedQoS
			if wire.QoS(codes[i]) < effective {
				effective = wire.QoS(codes[i])
			}
			b.deliverRetained(id, top, payload, effective, now)
		})
	}

	return true
}

// handleUnsubscribe processes an UNSUBSCRIBE body.
func (b *Broker) handleUnsubscribe(id int, body []byte) (keepOpen bool) {
	packetID, filters, ok := wire.ParseUnsubscribe(body)
	if !ok {
		return false
	}

	s := &b.slots[id].sess
	for _, f := range filters {
		s.Unsubscribe(f)
	}

	n := wire.UnsubAck(b.scratch[:4], packetID)
	b.send(id, b.scratch[:n])
	return true
}
