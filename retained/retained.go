// Package retained implements the broker's retained-message table: a
// fixed-capacity, single-threaded store keyed by exact topic string.
package retained

import (
	"github.com/sewerpiped/broker/topic"
	"github.com/sewerpiped/broker/wire"
)

// Capacity bounds the number of distinct retained topics the broker
// will hold at once. It is a hard cap, not a tunable.
const Capacity = 256

type entry struct {
	used    bool
	topic   []byte
	payload []byte
	qos     wire.QoS
}

// Store is a flat, linearly-scanned table of retained messages. It is
// not safe for concurrent use; the broker owns it from its single
// event-loop goroutine.
type Store struct {
	entries [Capacity]entry
	count   int
}

// New returns an empty retained-message store.
func New() *Store {
	return &Store{}
}

// Count reports the number of retained topics currently held.
func (s *Store) Count() int {
	return s.count
}

// Store inserts, replaces, or removes the retained entry for topic.
//
// An empty payload removes any existing entry for topic and creates
// nothing. Otherwise the entry for topic is inserted or replaced in
// place. If topic has no existing entry and the store is full, Store
// drops the write and returns false; existing entries are left
// untouched and no partial entry is written.
func (s *Store) Store(top []byte, payload []byte, qos wire.QoS) (ok bool) {
	if len(payload) == 0 {
		s.remove(top)
		return true
	}

	if i := s.indexOf(top); i >= 0 {
		s.entries[i].payload = append(s.entries[i].payload[:0], payload...)
		s.entries[i].qos = qos
		return true
	}

	free := s.freeSlot()
	if free < 0 {
		return false
	}

	s.entries[free] = entry{
		used:    true,
		topic:   append([]byte(nil), top...),
		payload: append([]byte(nil), payload...),
		qos:     qos,
	}
	s.count++
	return true
}

// Match invokes fn once for every retained entry whose topic matches
// filter per the topic package's wildcard rules, in table order.
func (s *Store) Match(filter []byte, fn func(top []byte, payload []byte, qos wire.QoS)) {
	for i := range s.entries {
		e := &s.entries[i]
		if !e.used {
			continue
		}
		if topic.Matches(filter, e.topic) {
			fn(e.topic, e.payload, e.qos)
		}
	}
}

func (s *Store) indexOf(top []byte) int {
	for i := range s.entries {
		if s.entries[i].used && string(s.entries[i].topic) == string(top) {
			return i
		}
	}
	return -1
}

func (s *Store) freeSlot() int {
	for i := range s.entries {
		if !s.entries[i].used {
			return i
		}
	}
	return -1
}

func (s *Store) remove(top []byte) {
	if i := s.indexOf(top); i >= 0 {
		s.entries[i] = entry{}
		s.count--
	}
}
