package session

import (
	"github.com/sewerpiped/broker/topic"
	"github.com/sewerpiped/broker/wire"
)

// Subscribe installs filter at the granted qos, replacing an existing
// subscription to the same filter in place. If no existing slot
// matches and no free slot remains, Subscribe reports false and the
// caller must record return code 0x80 for this filter.
func (s *Session) Subscribe(filter []byte, qos wire.QoS) (ok bool) {
	free := -1
	for i := range s.Subs {
		if s.Subs[i].free() {
			if free < 0 {
				free = i
			}
			continue
		}
		if string(s.Subs[i].Filter) == string(filter) {
			s.Subs[i].QoS = qos
			return true
		}
	}

	if free < 0 {
		return false
	}

	s.Subs[free] = Subscription{Filter: append([]byte(nil), filter...), QoS: qos}
	return true
}

// Unsubscribe frees the slot whose filter equals filter exactly. It
// is a no-op if no slot matches.
func (s *Session) Unsubscribe(filter []byte) {
	for i := range s.Subs {
		if !s.Subs[i].free() && string(s.Subs[i].Filter) == string(filter) {
			s.Subs[i] = Subscription{}
			return
		}
	}
}

// MatchFirst returns the granted QoS of the first subscription slot
// (in slot order) whose filter matches top, and true if one was
// found. The router stops scanning after the first match so a
// session never receives more than one copy of a publish.
func (s *Session) MatchFirst(top []byte) (wire.QoS, bool) {
	for i := range s.Subs {
		if s.Subs[i].free() {
			continue
		}
		if topic.Matches(s.Subs[i].Filter, top) {
			return s.Subs[i].QoS, true
		}
	}
	return 0, false
}
