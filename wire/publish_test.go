package wire

import "testing"

func TestParsePublishQoS0HasNoPacketID(t *testing.T) {
	var body []byte
	body = AppendString(body, []byte("a/b"))
	body = append(body, []byte("payload")...)

	p, ok := ParsePublish(body, QoS0)
	if !ok {
		t.Fatal("expected ok")
	}
	if string(p.Topic) != "a/b" || string(p.Payload) != "payload" || p.PacketID != 0 {
		t.Fatalf("unexpected parse: %+v", p)
	}
}

func TestParsePublishQoS1HasPacketID(t *testing.T) {
	var body []byte
	body = AppendString(body, []byte("a/b"))
	body = append(body, 0x00, 0x2A)
	body = append(body, []byte("payload")...)

	p, ok := ParsePublish(body, QoS1)
	if !ok {
		t.Fatal("expected ok")
	}
	if p.PacketID != 42 || string(p.Payload) != "payload" {
		t.Fatalf("unexpected parse: %+v", p)
	}
}

func TestParsePublishRejectsTruncatedTopic(t *testing.T) {
	_, ok := ParsePublish([]byte{0x00, 0x05, 'a', 'b'}, QoS0)
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestParsePublishRejectsMissingPacketID(t *testing.T) {
	var body []byte
	body = AppendString(body, []byte("a/b"))
	_, ok := ParsePublish(body, QoS1)
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestParsePublishAllowsEmptyPayload(t *testing.T) {
	var body []byte
	body = AppendString(body, []byte("a/b"))
	p, ok := ParsePublish(body, QoS0)
	if !ok || len(p.Payload) != 0 {
		t.Fatalf("unexpected parse: %+v ok=%v", p, ok)
	}
}
