package wire

// ReadString reads a length-prefixed byte field (2-byte big-endian
// length followed by that many raw bytes) from the front of buf. The
// broker treats these as opaque byte strings — MQTT 3.1.1 UTF-8
// well-formedness is never checked, per this broker's scope.
//
// It returns the field's bytes (aliasing buf), the number of bytes
// consumed, and ok=false if buf is too short to hold the declared
// length.
func ReadString(buf []byte) (value []byte, consumed int, ok bool) {
	if len(buf) < 2 {
		return nil, 0, false
	}
	n := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+n {
		return nil, 0, false
	}
	return buf[2 : 2+n], 2 + n, true
}

// AppendString appends a length-prefixed byte field to dst and returns
// the extended slice.
func AppendString(dst []byte, s []byte) []byte {
	dst = append(dst, byte(len(s)>>8), byte(len(s)))
	return append(dst, s...)
}
