package serializer

import (
	"bytes"
	"encoding/gob"
)

// Gob serializes values with encoding/gob. Its self-describing streams
// cover object graphs msgpack struct tags don't reach, at the cost of
// requiring concrete types registered with gob on both ends.
type Gob struct{}

// NewGob creates a gob serializer.
func NewGob() *Gob {
	return &Gob{}
}

func (Gob) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, &Error{Codec: "gob", Op: OpEncode, Err: err}
	}
	return buf.Bytes(), nil
}

func (Gob) Decode(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return &Error{Codec: "gob", Op: OpDecode, Err: err}
	}
	return nil
}
