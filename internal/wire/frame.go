// Package wire implements the framed envelope that carries a JSON header
// plus an opaque binary payload over a TCP stream: two big-endian u32
// lengths, the JSON header, then the binary payload.
package wire

import (
	"encoding/binary"
	"io"
)

// RawMessage is a frame read off the wire before header classification.
type RawMessage struct {
	TotalLen uint32
	JSONLen  uint32
	JSON     []byte
	Binary   []byte
}

// Send writes total length, json length, the json header, and the optional
// binary payload, in that order. It does not flush buffered writers itself;
// callers passing a *bufio.Writer are responsible for flushing.
func Send(w io.Writer, jsonBytes []byte, payload []byte) error {
	totalLen := uint32(len(jsonBytes) + len(payload))
	jsonLen := uint32(len(jsonBytes))

	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], totalLen)
	binary.BigEndian.PutUint32(header[4:8], jsonLen)

	if _, err := w.Write(header[:]); err != nil {
		return transportErrorf("write header", err)
	}
	if len(jsonBytes) > 0 {
		if _, err := w.Write(jsonBytes); err != nil {
			return transportErrorf("write json", err)
		}
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return transportErrorf("write binary", err)
		}
	}
	return nil
}

// ReadRaw reads one complete frame: both lengths, exactly jsonLen bytes of
// JSON, then exactly totalLen-jsonLen bytes of binary payload.
func ReadRaw(r io.Reader) (RawMessage, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return RawMessage{}, transportErrorf("read header", err)
	}
	totalLen := binary.BigEndian.Uint32(header[0:4])
	jsonLen := binary.BigEndian.Uint32(header[4:8])

	if jsonLen > totalLen {
		return RawMessage{}, protocolErrorf("json_len (%d) exceeds total_len (%d)", jsonLen, totalLen)
	}

	jsonBytes := make([]byte, jsonLen)
	if jsonLen > 0 {
		if _, err := io.ReadFull(r, jsonBytes); err != nil {
			return RawMessage{}, transportErrorf("read json", err)
		}
	}

	binaryLen := totalLen - jsonLen
	binaryBytes := make([]byte, binaryLen)
	if binaryLen > 0 {
		if _, err := io.ReadFull(r, binaryBytes); err != nil {
			return RawMessage{}, transportErrorf("read binary", err)
		}
	}

	return RawMessage{
		TotalLen: totalLen,
		JSONLen:  jsonLen,
		JSON:     jsonBytes,
		Binary:   binaryBytes,
	}, nil
}
