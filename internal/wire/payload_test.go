package wire

import (
	"testing"

	"fraktile/internal/model"
)

func TestEncodeDecodeResultPayloadRoundTrip(t *testing.T) {
	pixels := []model.PixelIntensity{
		{Zn: 1.5, Count: 10},
		{Zn: -2.25, Count: 255},
	}

	payload := EncodeResultPayload(pixels)
	if len(payload) != SignatureSize+len(pixels)*8 {
		t.Fatalf("payload length = %d, want %d", len(payload), SignatureSize+len(pixels)*8)
	}

	decoded, err := DecodePixels(payload, SignatureSize)
	if err != nil {
		t.Fatalf("DecodePixels: %v", err)
	}
	if len(decoded) != len(pixels) {
		t.Fatalf("decoded %d pixels, want %d", len(decoded), len(pixels))
	}
	for i, p := range pixels {
		if decoded[i] != p {
			t.Errorf("pixel %d = %+v, want %+v", i, decoded[i], p)
		}
	}
}

func TestDecodePixelsRejectsMisalignedPayload(t *testing.T) {
	_, err := DecodePixels(make([]byte, SignatureSize+3), SignatureSize)
	if err == nil {
		t.Fatal("expected an error for a payload not a multiple of 8 bytes")
	}
}

func TestDecodePixelsRejectsOffsetBeyondPayload(t *testing.T) {
	_, err := DecodePixels(make([]byte, 4), 8)
	if err == nil {
		t.Fatal("expected an error for an offset beyond the payload")
	}
}
