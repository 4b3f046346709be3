package serializer

import (
	"github.com/goccy/go-json"
)

// JSON serializes values as JSON. Values outside JSON's value model
// (channels, funcs, NaN floats) fail to encode.
type JSON struct{}

// NewJSON creates a JSON serializer.
func NewJSON() *JSON {
	return &JSON{}
}

func (JSON) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Codec: "json", Op: OpEncode, Err: err}
	}
	return data, nil
}

func (JSON) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Codec: "json", Op: OpDecode, Err: err}
	}
	return nil
}
