package session

import "time"

// AllocInflight claims a free inflight slot for a QoS 1 delivery,
// recording the message id, topic, payload, and send time. It
// reports false if every slot is occupied, in which case the
// delivery is dropped silently by the caller.
func (s *Session) AllocInflight(msgID uint16, topic, payload []byte, sentAt time.Time) bool {
	for i := range s.Inflight {
		if !s.Inflight[i].Active {
			s.Inflight[i] = Inflight{
				Active:  true,
				MsgID:   msgID,
				Topic:   append([]byte(nil), topic...),
				Payload: append([]byte(nil), payload...),
				SentAt:  sentAt,
			}
			return true
		}
	}
	return false
}

// AckInflight releases the slot matching msgID, if any. A non-match
// is silently ignored per the PUBACK handling rule.
func (s *Session) AckInflight(msgID uint16) {
	for i := range s.Inflight {
		if s.Inflight[i].Active && s.Inflight[i].MsgID == msgID {
			s.Inflight[i] = Inflight{}
			return
		}
	}
}

// DueForRetry invokes fn for every active inflight slot whose last
// transmission is older than RetryInterval, refreshing its timestamp
// to now. fn is expected to retransmit the slot's payload with DUP
// set.
func (s *Session) DueForRetry(now time.Time, fn func(*Inflight)) {
	for i := range s.Inflight {
		if !s.Inflight[i].Active {
			continue
		}
		if now.Sub(s.Inflight[i].SentAt) >= RetryInterval {
			fn(&s.Inflight[i])
			s.Inflight[i].SentAt = now
		}
	}
}
