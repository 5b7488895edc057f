package broker

import (
	"time"

	"github.com/sewerpiped/broker/session"
	"github.com/sewerpiped/broker/topic"
	"github.com/sewerpiped/broker/wire"
)

// handlePublish processes an inbound PUBLISH from slot id. It reports
// false when the session must be dropped (QoS 2 or a wildcard
// character in the topic).
func (b *Broker) handlePublish(id int, f wire.Frame, now time.Time) (keepOpen bool) {
	_, qos, retain := wire.ParsePublishFlags(f.Flags)
	if qos == wire.QoS2 {
		return false
	}

	p, ok := wire.ParsePublish(f.Body, qos)
	if !ok {
		return false
	}
	if topic.ContainsWildcard(p.Topic) {
		return false
	}

	if qos == wire.QoS1 {
		n := wire.PubAck(b.scratch[:4], p.PacketID)
		b.send(id, b.scratch[:n])
	}

	if retain {
		b.storeRetained(p.Topic, p.Payload, qos)
	}

	b.route(id, p.Topic, p.Payload, qos, now)
	return true
}

func (b *Broker) storeRetained(top, payload []byte, qos wire.QoS) {
	if !b.retained.Store(top, payload, qos) {
		b.log.Warn("retained store full, dropping publish", "topic", string(top))
	}
}

// route delivers (topTopic, payload) at sender QoS senderQoS to every
// Connected session's first matching subscription slot, including the
// sender itself if it has a matching subscription. RETAIN is never
// set on routed traffic; only the retained-replay path (deliverRetained)
// sets it.
func (b *Broker) route(senderID int, topTopic, payload []byte, senderQoS wire.QoS, now time.Time) {
	for i := range b.slots {
		if !b.slots[i].used {
			continue
		}
		dst := &b.slots[i].sess
		if dst.Phase != session.Connected {
			continue
		}

		grantedQoS, matched := dst.MatchFirst(topTopic)
		if !matched {
			continue
		}

		effective := senderQoS
		if grantedQoS < effective {
			effective = grantedQoS
		}
		b.deliver(i, topTopic, payload, effective, false, now)
	}
}

// deliverRetained replays one retained entry to a freshly subscribed
// session at the effective QoS, with RETAIN set.
func (b *Broker) deliverRetained(dstID int, top, payload []byte, effective wire.QoS, now time.Time) {
	b.deliver(dstID, top, payload, effective, true, now)
}

func (b *Broker) deliver(dstID int, top, payload []byte, qos wire.QoS, retain bool, now time.Time) {
	dst := &b.slots[dstID].sess

	if qos == wire.QoS0 {
		n, err := wire.Publish(b.scratch[:], top, payload, wire.QoS0, 0, false, retain)
		if err != nil {
			b.log.Warn("publish too large for scratch buffer", "topic", string(top))
			return
		}
		b.send(dstID, b.scratch[:n])
		return
	}

	msgID := dst.NextMessageID()
	if !dst.AllocInflight(msgID, top, payload, now) {
		return
	}
	n, err := wire.Publish(b.scratch[:], top, payload, wire.QoS1, msgID, false, retain)
	if err != nil {
		b.log.Warn("publish too large for scratch buffer", "topic", string(top))
		return
	}
	b.send(dstID, b.scratch[:n])
}
