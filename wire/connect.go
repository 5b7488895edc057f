package wire

import "errors"

// ErrConnectMalformed marks a CONNECT body that is truncated somewhere
// past the point a CONNACK can still meaningfully be sent — the caller
// must drop the connection with no response.
var ErrConnectMalformed = errors.New("wire: malformed CONNECT body")

// Rejection describes a CONNECT that must be answered with a nonzero
// CONNACK return code before the session is destroyed.
type Rejection byte

const (
	// Accepted means the CONNECT is well-formed and requests a clean
	// session; the caller should proceed to CONNACK 0.
	Accepted Rejection = iota
	// RejectProtocol is CONNACK return code 1: unacceptable protocol
	// name or level.
	RejectProtocol
	// RejectIdentifier is CONNACK return code 2, used here for the
	// clean-session-not-set case.
	RejectIdentifier
)

// Connect holds the fields of a parsed CONNECT variable header and
// payload relevant to this broker (no username/password, no MQTT 5
// properties).
type Connect struct {
	KeepAlive   uint16
	ClientID    []byte
	WillFlag    bool
	WillQoS     QoS
	WillRetain  bool
	WillTopic   []byte
	WillPayload []byte
}

// ParseConnect decodes a CONNECT packet body. The three return values
// are mutually exclusive: err != nil means the body is truncated and
// the session must be dropped silently; rejection != Accepted means a
// CONNACK carrying that code must be sent before dropping the session;
// otherwise c is ready to use.
func ParseConnect(body []byte) (c Connect, rejection Rejection, err error) {
	// Variable header minimum: 2+4 (protocol name) + 1 (level) +
	// 1 (flags) + 2 (keep alive) = 10 bytes.
	if len(body) < 10 {
		return Connect{}, RejectProtocol, nil
	}

	name, n, ok := ReadString(body)
	if !ok || string(name) != "MQTT" {
		return Connect{}, RejectProtocol, nil
	}
	pos := n

	if pos >= len(body) || body[pos] != 4 {
		return Connect{}, RejectProtocol, nil
	}
	pos++

	if pos >= len(body) {
		return Connect{}, Accepted, ErrConnectMalformed
	}
	connectFlags := body[pos]
	pos++

	willRetain := connectFlags>>5&1 != 0
	willFlag := connectFlags>>2&1 != 0
	cleanSession := connectFlags>>1&1 != 0
	willQoS := QoS(connectFlags >> 3 & 0x3)
	if willQoS > QoS1 {
		willQoS = QoS1
	}

	if !cleanSession {
		return Connect{}, RejectIdentifier, nil
	}

	if pos+2 > len(body) {
		return Connect{}, Accepted, ErrConnectMalformed
	}
	keepAlive := uint16(body[pos])<<8 | uint16(body[pos+1])
	pos += 2

	clientID, n, ok := ReadString(body[pos:])
	if !ok {
		return Connect{}, Accepted, ErrConnectMalformed
	}
	pos += n

	c = Connect{KeepAlive: keepAlive, ClientID: clientID}

	if willFlag {
		willTopic, n, ok := ReadString(body[pos:])
		if !ok {
			return Connect{}, Accepted, ErrConnectMalformed
		}
		pos += n

		willPayload, n, ok := ReadString(body[pos:])
		if !ok {
			return Connect{}, Accepted, ErrConnectMalformed
		}
		pos += n

		c.WillFlag = true
		c.WillQoS = willQoS
		c.WillRetain = willRetain
		c.WillTopic = willTopic
		c.WillPayload = willPayload
	}

	return c, Accepted, nil
}
