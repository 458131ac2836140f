package wire

import (
	"bytes"
	"testing"
)

func TestSendReadRawRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	jsonBytes := []byte(`{"FragmentRequest":{"worker_name":"w1","maximal_work_load":64}}`)
	payload := []byte{1, 2, 3, 4}

	if err := Send(&buf, jsonBytes, payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	raw, err := ReadRaw(&buf)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if !bytes.Equal(raw.JSON, jsonBytes) {
		t.Errorf("JSON = %q, want %q", raw.JSON, jsonBytes)
	}
	if !bytes.Equal(raw.Binary, payload) {
		t.Errorf("Binary = %v, want %v", raw.Binary, payload)
	}
	if raw.TotalLen != uint32(len(jsonBytes)+len(payload)) {
		t.Errorf("TotalLen = %d, want %d", raw.TotalLen, len(jsonBytes)+len(payload))
	}
}

func TestSendReadRawNoPayload(t *testing.T) {
	var buf bytes.Buffer
	jsonBytes := []byte(`{"FragmentRequest":{}}`)

	if err := Send(&buf, jsonBytes, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	raw, err := ReadRaw(&buf)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if len(raw.Binary) != 0 {
		t.Errorf("Binary = %v, want empty", raw.Binary)
	}
}

func TestReadRawRejectsJSONLenExceedingTotalLen(t *testing.T) {
	var buf bytes.Buffer
	header := []byte{0, 0, 0, 1, 0, 0, 0, 5}
	buf.Write(header)

	_, err := ReadRaw(&buf)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var protoErr *ProtocolError
	if !asProtocolError(err, &protoErr) {
		t.Errorf("expected a *ProtocolError, got %T: %v", err, err)
	}
}

func asProtocolError(err error, target **ProtocolError) bool {
	pe, ok := err.(*ProtocolError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func TestReadRawShortHeaderIsTransportError(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0})
	_, err := ReadRaw(buf)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if _, ok := err.(*TransportError); !ok {
		t.Errorf("expected a *TransportError, got %T: %v", err, err)
	}
}
