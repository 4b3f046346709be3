// Package serializer converts cached function results to and from the
// byte blobs a storage backend persists.
//
// Every serializer obeys the round-trip law: for any value v it claims
// to support, Decode(Encode(v)) yields a value observationally equal to
// v. Failures always surface as *Error, never as a silent default.
package serializer

import "fmt"

// Serializer converts a value to bytes and back. Decode fills the
// value pointed to by v, so callers keep static typing at the edges.
type Serializer interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// Op identifies which half of the serializer contract failed.
type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

// Error reports an encode or decode failure together with the codec
// that produced it.
type Error struct {
	Codec string
	Op    Op
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("serializer %s: %s failed: %v", e.Codec, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
