package wire

import (
	"encoding/binary"
	"math"

	"fraktile/internal/model"
)

// SignatureSize is the reserved, currently-unused prefix of a task or
// result binary payload (spec: 16 zero bytes, open question: future HMAC).
const SignatureSize = 16

// EncodeResultPayload builds a FragmentResult binary payload: SignatureSize
// zero bytes followed by nx*ny pairs of big-endian float32 (zn, count).
func EncodeResultPayload(pixels []model.PixelIntensity) []byte {
	buf := make([]byte, SignatureSize+len(pixels)*8)
	for i, p := range pixels {
		off := SignatureSize + i*8
		binary.BigEndian.PutUint32(buf[off:off+4], math.Float32bits(p.Zn))
		binary.BigEndian.PutUint32(buf[off+4:off+8], math.Float32bits(p.Count))
	}
	return buf
}

// DecodePixels skips the signature prefix named by offset and decodes the
// remainder as big-endian float32 (zn, count) pairs. It returns a
// ProtocolError if the remainder is not a multiple of 8 bytes.
func DecodePixels(payload []byte, offset uint32) ([]model.PixelIntensity, error) {
	if uint64(offset) > uint64(len(payload)) {
		return nil, protocolErrorf("pixel offset %d exceeds payload length %d", offset, len(payload))
	}
	body := payload[offset:]
	if len(body)%8 != 0 {
		return nil, protocolErrorf("pixel payload length %d is not a multiple of 8", len(body))
	}
	count := len(body) / 8
	pixels := make([]model.PixelIntensity, count)
	for i := 0; i < count; i++ {
		off := i * 8
		pixels[i] = model.PixelIntensity{
			Zn:    math.Float32frombits(binary.BigEndian.Uint32(body[off : off+4])),
			Count: math.Float32frombits(binary.BigEndian.Uint32(body[off+4 : off+8])),
		}
	}
	return pixels, nil
}
