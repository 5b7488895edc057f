// Package broker implements the router: the session table, the
// retained-message table, and the fan-out logic that ties a parsed
// PUBLISH to every matching subscriber from a single event loop.
package broker

import (
	"log/slog"
	"time"

	"github.com/sewerpiped/broker/retained"
	"github.com/sewerpiped/broker/session"
)

const (
	// MaxClients bounds the number of simultaneously connected
	// sessions.
	MaxClients = 128
	// ScratchSize is the shared outbound-serialization buffer size,
	// reused synchronously by every send site within one dispatch.
	ScratchSize = 65536
)

// Conn is the minimal transport a session slot needs: a non-blocking,
// best-effort byte sink. Concrete connections live in the network
// package.
type Conn interface {
	Write(p []byte) (int, error)
	Close() error
}

type slot struct {
	conn Conn
	sess session.Session
	used bool
}

// Broker owns every session slot and the retained-message table. It
// is not safe for concurrent use; the event loop is its only caller.
type Broker struct {
	slots     [MaxClients]slot
	retained  *retained.Store
	scratch   [ScratchSize]byte
	clientSeq uint64
	log       *slog.Logger
}

// New returns an empty broker ready to accept connections.
func New(log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{retained: retained.New(), log: log}
}

// Accept claims a free session slot for a newly accepted connection.
// It reports false if the session table is full, in which case the
// caller must close conn immediately.
func (b *Broker) Accept(conn Conn, now time.Time) (id int, ok bool) {
	for i := range b.slots {
		if !b.slots[i].used {
			b.slots[i].used = true
			b.slots[i].conn = conn
			b.slots[i].sess.Reset(i)
			b.slots[i].sess.ConnectedAt = now
			b.slots[i].sess.LastActivity = now
			return i, true
		}
	}
	return 0, false
}

// Session returns the session state for slot id. The caller must only
// pass ids returned by Accept for slots still in use.
func (b *Broker) Session(id int) *session.Session {
	return &b.slots[id].sess
}

// InUse reports whether slot id currently holds a live session.
func (b *Broker) InUse(id int) bool {
	return b.slots[id].used
}

// RetainedCount reports the number of topics currently retained.
func (b *Broker) RetainedCount() int {
	return b.retained.Count()
}

func (b *Broker) send(id int, buf []byte) {
	if !b.slots[id].used || len(buf) == 0 {
		return
	}
	// Best-effort, nonblocking: a short write silently truncates the
	// outbound packet rather than blocking the event loop.
	_, _ = b.slots[id].conn.Write(buf)
}

// Destroy releases slot id: it closes the transport, publishes the
// captured will if publishWill is true and one is present, and frees
// the slot for reuse. publishWill is false where the will must be
// suppressed, such as a duplicate client-id takeover. An orderly
// DISCONNECT clears the will while it is dispatched, so Destroy
// publishes nothing for it even when publishWill is true.
func (b *Broker) Destroy(id int, publishWill bool, now time.Time) {
	s := &b.slots[id].sess
	if publishWill && s.Will.Present {
		if s.Will.Retain {
			b.storeRetained(s.Will.Topic, s.Will.Payload, s.Will.QoS)
		}
		b.route(id, s.Will.Topic, s.Will.Payload, s.Will.QoS, now)
	}

	if s.Phase == session.Connected {
		b.log.Info("client disconnected", "client_id", string(s.ClientID), "slot", id)
	}

	_ = b.slots[id].conn.Close()
	b.slots[id] = slot{}
}
