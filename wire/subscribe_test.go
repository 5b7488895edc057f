package wire

import "testing"

func buildSubscribeBody(packetID uint16, filters []SubscribeFilter) []byte {
	body := []byte{byte(packetID >> 8), byte(packetID)}
	for _, f := range filters {
		body = AppendString(body, f.Filter)
		body = append(body, byte(f.QoS))
	}
	return body
}

func TestParseSubscribeSinglePair(t *testing.T) {
	body := buildSubscribeBody(7, []SubscribeFilter{{Filter: []byte("a/b"), QoS: QoS1}})

	id, filters, ok := ParseSubscribe(body)
	if !ok || id != 7 || len(filters) != 1 {
		t.Fatalf("unexpected parse: id=%d filters=%v ok=%v", id, filters, ok)
	}
	if string(filters[0].Filter) != "a/b" || filters[0].QoS != QoS1 {
		t.Fatalf("unexpected filter: %+v", filters[0])
	}
}

func TestParseSubscribeMultiplePairs(t *testing.T) {
	body := buildSubscribeBody(1, []SubscribeFilter{
		{Filter: []byte("a/b"), QoS: QoS0},
		{Filter: []byte("c/#"), QoS: QoS1},
	})

	_, filters, ok := ParseSubscribe(body)
	if !ok || len(filters) != 2 {
		t.Fatalf("unexpected parse: filters=%v ok=%v", filters, ok)
	}
}

func TestParseSubscribeRejectsEmptyFilterList(t *testing.T) {
	_, _, ok := ParseSubscribe([]byte{0x00, 0x01})
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestParseSubscribeRejectsTruncatedHeader(t *testing.T) {
	_, _, ok := ParseSubscribe([]byte{0x00})
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestParseSubscribeRejectsMissingQoSByte(t *testing.T) {
	body := []byte{0x00, 0x01}
	body = AppendString(body, []byte("a/b"))
	_, _, ok := ParseSubscribe(body)
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestParseUnsubscribeMultipleFilters(t *testing.T) {
	body := []byte{0x00, 0x09}
	body = AppendString(body, []byte("a/b"))
	body = AppendString(body, []byte("c/d"))

	id, filters, ok := ParseUnsubscribe(body)
	if !ok || id != 9 || len(filters) != 2 {
		t.Fatalf("unexpected parse: id=%d filters=%v ok=%v", id, filters, ok)
	}
}

func TestParseUnsubscribeRejectsEmptyFilterList(t *testing.T) {
	_, _, ok := ParseUnsubscribe([]byte{0x00, 0x01})
	if ok {
		t.Fatal("expected rejection")
	}
}
