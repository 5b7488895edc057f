package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameOneIncompleteFixedHeader(t *testing.T) {
	_, outcome := FrameOne(nil)
	assert.Equal(t, Incomplete, outcome)
}

func TestFrameOneIncompleteRemainingLength(t *testing.T) {
	_, outcome := FrameOne([]byte{byte(PINGREQ) << 4, 0x80})
	assert.Equal(t, Incomplete, outcome)
}

func TestFrameOneIncompleteBody(t *testing.T) {
	_, outcome := FrameOne([]byte{byte(PUBACK) << 4, 4, 0, 1})
	assert.Equal(t, Incomplete, outcome)
}

func TestFrameOneMalformedReservedType(t *testing.T) {
	_, outcome := FrameOne([]byte{0x00, 0x00})
	assert.Equal(t, Malformed, outcome)
}

func TestFrameOneMalformedReservedFlags(t *testing.T) {
	_, outcome := FrameOne([]byte{byte(SUBSCRIBE) << 4, 0x00})
	assert.Equal(t, Malformed, outcome)
}

func TestFrameOneMalformedQoS3Publish(t *testing.T) {
	flags := byte(0x06) // QoS bits both set = 3
	_, outcome := FrameOne([]byte{byte(PUBLISH)<<4 | flags, 0x00})
	assert.Equal(t, Malformed, outcome)
}

func TestFrameOneParsesPingReq(t *testing.T) {
	frame, outcome := FrameOne([]byte{byte(PINGREQ) << 4, 0x00, 0xFF})
	require.Equal(t, Parsed, outcome)
	assert.Equal(t, PINGREQ, frame.Type)
	assert.Equal(t, 2, frame.Consumed)
	assert.Empty(t, frame.Body)
}

func TestFrameOneRoundTripsSerializedPacket(t *testing.T) {
	buf := make([]byte, 64)
	n, err := Publish(buf, []byte("a/b"), []byte("hello"), QoS1, 7, false, true)
	require.NoError(t, err)

	frame, outcome := FrameOne(buf[:n])
	require.Equal(t, Parsed, outcome)
	assert.Equal(t, PUBLISH, frame.Type)
	assert.Equal(t, n, frame.Consumed)

	dup, qos, retain := ParsePublishFlags(frame.Flags)
	assert.False(t, dup)
	assert.Equal(t, QoS1, qos)
	assert.True(t, retain)
}

func TestFrameOneSplitAcrossReads(t *testing.T) {
	buf := make([]byte, 64)
	n, err := Publish(buf, []byte("x"), []byte("y"), QoS0, 0, false, false)
	require.NoError(t, err)

	// First half alone is incomplete.
	_, outcome := FrameOne(buf[:n-1])
	assert.Equal(t, Incomplete, outcome)

	// Whole packet parses once the rest has "arrived".
	frame, outcome := FrameOne(buf[:n])
	require.Equal(t, Parsed, outcome)
	assert.Equal(t, n, frame.Consumed)
}
