package broker

import (
	"github.com/sewerpiped/broker/wire"
)

type fakeConn struct {
	written [][]byte
	closed  bool
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.written = append(f.written, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func packet(typ wire.Type, flags byte, body []byte) []byte {
	var out []byte
	out = append(out, byte(typ)<<4|flags)
	rl, _ := wire.EncodeRemainingLength(nil, uint32(len(body)))
	out = append(out, rl...)
	out = append(out, body...)
	return out
}

func buildConnect(clientID string, keepAlive uint16, willTopic, willPayload string, willQoS wire.QoS, willRetain bool) []byte {
	var body []byte
	body = wire.AppendString(body, []byte("MQTT"))
	body = append(body, 4)

	var flags byte = 0x02 // clean session
	if willTopic != "" {
		flags |= 0x04
		flags |= byte(willQoS) << 3
		if willRetain {
			flags |= 0x20
		}
	}
	body = append(body, flags)
	body = append(body, byte(keepAlive>>8), byte(keepAlive))
	body = wire.AppendString(body, []byte(clientID))
	if willTopic != "" {
		body = wire.AppendString(body, []byte(willTopic))
		body = wire.AppendString(body, []byte(willPayload))
	}

	return packet(wire.CONNECT, 0, body)
}

func buildPublishIn(topic, payload string, qos wire.QoS, packetID uint16, retain bool) []byte {
	var body []byte
	body = wire.AppendString(body, []byte(topic))
	if qos != wire.QoS0 {
		body = append(body, byte(packetID>>8), byte(packetID))
	}
	body = append(body, []byte(payload)...)

	var flags byte = byte(qos) << 1
	if retain {
		flags |= 0x01
	}
	return packet(wire.PUBLISH, flags, body)
}

func buildSubscribe(packetID uint16, filters []wire.SubscribeFilter) []byte {
	body := []byte{byte(packetID >> 8), byte(packetID)}
	for _, f := range filters {
		body = wire.AppendString(body, f.Filter)
		body = append(body, byte(f.QoS))
	}
	return packet(wire.SUBSCRIBE, 0x02, body)
}

func buildUnsubscribe(packetID uint16, filters []string) []byte {
	body := []byte{byte(packetID >> 8), byte(packetID)}
	for _, f := range filters {
		body = wire.AppendString(body, []byte(f))
	}
	return packet(wire.UNSUBSCRIBE, 0x02, body)
}

func buildPubAck(packetID uint16) []byte {
	return packet(wire.PUBACK, 0, []byte{byte(packetID >> 8), byte(packetID)})
}

func buildDisconnect() []byte {
	return packet(wire.DISCONNECT, 0, nil)
}

// lastConnAck returns the return code of the most recently written
// CONNACK on conn, or -1 if none was written.
func lastConnAck(conn *fakeConn) int {
	for i := len(conn.written) - 1; i >= 0; i-- {
		p := conn.written[i]
		if len(p) >= 4 && wire.Type(p[0]>>4) == wire.CONNACK {
			return int(p[3])
		}
	}
	return -1
}

func findPublish(conn *fakeConn) (topic string, payload string, qos wire.QoS, retain bool, found bool) {
	for _, p := range conn.written {
		f, outcome := wire.FrameOne(p)
		if outcome != wire.Parsed || f.Type != wire.PUBLISH {
			continue
		}
		_, q, r := wire.ParsePublishFlags(f.Flags)
		pub, ok := wire.ParsePublish(f.Body, q)
		if !ok {
			continue
		}
		return string(pub.Topic), string(pub.Payload), q, r, true
	}
	return "", "", 0, false, false
}
