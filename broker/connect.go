package broker

import (
	"fmt"
	"time"

	"github.com/sewerpiped/broker/session"
	"github.com/sewerpiped/broker/wire"
)

// handleConnect processes a CONNECT body for the session in slot id.
// It reports false when the connection must be closed immediately
// afterward (a CONNACK may already have been sent).
func (b *Broker) handleConnect(id int, body []byte, now time.Time) (keepOpen bool) {
	s := &b.slots[id].sess

	c, rejection, err := wire.ParseConnect(body)
	if err != nil {
		return false
	}
	if rejection != wire.Accepted {
		n := wire.ConnAck(b.scratch[:4], false, byte(rejection))
		b.send(id, b.scratch[:n])
		return false
	}

	clientID := c.ClientID
	if len(clientID) == 0 {
		clientID = b.synthesizeClientID()
	}

	if other, found := b.findConnected(clientID, id); found {
		b.log.Info("client id takeover", "client_id", string(clientID))
		b.Destroy(other, false, now)
	}

	s.ClientID = append(s.ClientID[:0], clientID...)
	s.KeepAlive = c.KeepAlive
	s.Phase = session.Connected
	if c.WillFlag {
		s.SetWill(c.WillTopic, c.WillPayload, c.WillQoS, c.WillRetain)
	}

	n := wire.ConnAck(b.scratch[:4], false, 0)
	b.send(id, b.scratch[:n])
	b.log.Debug("client connected", "client_id", string(clientID), "slot", id)
	return true
}

// findConnected returns the slot of the other Connected session
// already holding clientID, if any.
func (b *Broker) findConnected(clientID []byte, exclude int) (int, bool) {
	for i := range b.slots {
		if i == exclude || !b.slots[i].used {
			continue
		}
		other := &b.slots[i].sess
		if other.Phase == session.Connected && string(other.ClientID) == string(clientID) {
			return i, true
		}
	}
	return 0, false
}

// synthesizeClientID generates the next sewerpipe-<N> identifier from
// the broker's process-wide counter.
func (b *Broker) synthesizeClientID() []byte {
	b.clientSeq++
	return []byte(fmt.Sprintf("sewerpipe-%d", b.clientSeq))
}
