package wire

import "testing"

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	data, err := EncodeFrame(7, []interface{}{"alice", int64(3)})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	tag, body, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if tag != 7 {
		t.Fatalf("expected tag 7, got %d", tag)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 body fields, got %d", len(body))
	}
}

func TestDecodeFrameAcceptsNilBody(t *testing.T) {
	data, err := EncodeFrame(0, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	// EncodeFrame always emits a 2-element [tag, body] array; a frame with a
	// nil body must still decode cleanly, with a nil fields slice.
	tag, body, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if tag != 0 || body != nil {
		t.Fatalf("expected tag 0 and nil body, got tag=%d body=%v", tag, body)
	}
}

func TestDecodeFrameRejectsMalformedBytes(t *testing.T) {
	if _, _, err := DecodeFrame([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Fatal("expected malformed frame to error")
	}
}
