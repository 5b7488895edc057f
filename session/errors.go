package session

import "errors"

// ErrOversizeFrame is reported by the broker when a session's receive
// buffer would overflow before a complete packet is framed.
var ErrOversizeFrame = errors.New("session: oversize frame")
