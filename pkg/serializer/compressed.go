package serializer

import (
	"errors"

	"github.com/vnykmshr/perscache-go/pkg/compression"
)

// Frame bytes prepended to every blob so Decode can tell a compressed
// payload from a passthrough one.
const (
	frameRaw        = 0x00
	frameCompressed = 0x01
)

// DefaultMinCompressSize is the payload size below which compression
// is skipped entirely.
const DefaultMinCompressSize = 1024

// Compressed wraps another serializer and compresses its output when
// the encoded payload is large enough to be worth it. Payloads that
// compress poorly are stored raw.
type Compressed struct {
	inner      Serializer
	compressor compression.Compressor
	minSize    int
}

// NewCompressed wraps inner with the given compressor. minSize is the
// minimum encoded size before compression is attempted; values <= 0
// fall back to DefaultMinCompressSize.
func NewCompressed(inner Serializer, c compression.Compressor, minSize int) *Compressed {
	if minSize <= 0 {
		minSize = DefaultMinCompressSize
	}
	return &Compressed{inner: inner, compressor: c, minSize: minSize}
}

func (c *Compressed) Encode(v any) ([]byte, error) {
	data, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}

	if len(data) < c.minSize {
		return frame(frameRaw, data), nil
	}

	compressed, err := c.compressor.Compress(data)
	if err != nil {
		return nil, &Error{Codec: c.codecName(), Op: OpEncode, Err: err}
	}

	// Keep the raw bytes when compression doesn't pay for itself.
	if len(compressed) >= len(data) {
		return frame(frameRaw, data), nil
	}
	return frame(frameCompressed, compressed), nil
}

func (c *Compressed) Decode(data []byte, v any) error {
	if len(data) == 0 {
		return &Error{Codec: c.codecName(), Op: OpDecode, Err: errors.New("empty payload")}
	}

	payload := data[1:]
	switch data[0] {
	case frameRaw:
		return c.inner.Decode(payload, v)
	case frameCompressed:
		raw, err := c.compressor.Decompress(payload)
		if err != nil {
			return &Error{Codec: c.codecName(), Op: OpDecode, Err: err}
		}
		return c.inner.Decode(raw, v)
	default:
		return &Error{Codec: c.codecName(), Op: OpDecode, Err: errors.New("unknown frame byte")}
	}
}

func (c *Compressed) codecName() string {
	return "compressed/" + c.compressor.Name()
}

func frame(marker byte, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+1)
	out = append(out, marker)
	return append(out, payload...)
}
