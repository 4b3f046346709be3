package serializer

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack serializes values with MessagePack. It handles most Go
// types out of the box (primitives, exported struct fields, maps,
// slices, pointers) and is the process-wide default codec.
type Msgpack struct{}

// NewMsgpack creates a MessagePack serializer.
func NewMsgpack() *Msgpack {
	return &Msgpack{}
}

func (Msgpack) Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, &Error{Codec: "msgpack", Op: OpEncode, Err: err}
	}
	return data, nil
}

func (Msgpack) Decode(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return &Error{Codec: "msgpack", Op: OpDecode, Err: err}
	}
	return nil
}
