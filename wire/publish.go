package wire

// ParsedPublish holds the parsed fields of an incoming PUBLISH body.
type ParsedPublish struct {
	Topic    []byte
	PacketID uint16
	Payload  []byte
}

// ParsePublish decodes a PUBLISH variable header and payload. qos must
// be the value already extracted from the fixed header flags via
// ParsePublishFlags; it determines whether a packet identifier is
// present. A false return means the body is truncated and the
// connection must be dropped.
func ParsePublish(body []byte, qos QoS) (p ParsedPublish, ok bool) {
	topic, n, ok := ReadString(body)
	if !ok {
		return ParsedPublish{}, false
	}
	pos := n

	var packetID uint16
	if qos != QoS0 {
		if pos+2 > len(body) {
			return ParsedPublish{}, false
		}
		packetID = uint16(body[pos])<<8 | uint16(body[pos+1])
		pos += 2
	}

	return ParsedPublish{Topic: topic, PacketID: packetID, Payload: body[pos:]}, true
}
