// Package compress holds the gzip framing used for oversized cache payloads.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Encode gzips raw.
func Encode(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode. Corrupt input returns an error; callers treat it
// as a cache miss, never as a caller-visible failure.
func Decode(packed []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
