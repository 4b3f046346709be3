// Package compression provides byte-level compressors used to shrink
// serialized cache values before they reach a storage backend.
package compression

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
)

// Compressor defines the interface for cache value compression.
type Compressor interface {
	// Compress compresses the given data and returns compressed bytes
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses the given compressed bytes
	Decompress(compressed []byte) ([]byte, error)

	// Name returns the name/identifier of the compressor
	Name() string
}

// Algorithm identifies a compression algorithm by name.
type Algorithm string

const (
	AlgorithmNone    Algorithm = "none"
	AlgorithmGzip    Algorithm = "gzip"
	AlgorithmDeflate Algorithm = "deflate"
)

// DefaultLevel lets the underlying codec pick its default compression level.
const DefaultLevel = -1

// New creates a compressor for the given algorithm.
func New(algorithm Algorithm, level int) (Compressor, error) {
	switch algorithm {
	case AlgorithmNone:
		return NewNoOp(), nil
	case AlgorithmGzip:
		return NewGzip(level), nil
	case AlgorithmDeflate:
		return NewDeflate(level), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}

// NoOp is a compressor that passes data through unchanged.
type NoOp struct{}

// NewNoOp creates a pass-through compressor.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoOp) Decompress(compressed []byte) ([]byte, error) {
	return compressed, nil
}

func (n *NoOp) Name() string {
	return string(AlgorithmNone)
}

// Gzip compresses values with compress/gzip.
type Gzip struct {
	level int
}

// NewGzip creates a gzip compressor with the given level.
// Use DefaultLevel for the codec default.
func NewGzip(level int) *Gzip {
	return &Gzip{level: level}
}

func (g *Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write compressed data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *Gzip) Decompress(compressed []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed data: %w", err)
	}

	return data, nil
}

func (g *Gzip) Name() string {
	return string(AlgorithmGzip)
}

// Deflate compresses values with compress/zlib.
type Deflate struct {
	level int
}

// NewDeflate creates a deflate compressor with the given level.
// Use DefaultLevel for the codec default.
func NewDeflate(level int) *Deflate {
	return &Deflate{level: level}
}

func (d *Deflate) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := zlib.NewWriterLevel(&buf, d.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write compressed data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close deflate writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (d *Deflate) Decompress(compressed []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed data: %w", err)
	}

	return data, nil
}

func (d *Deflate) Name() string {
	return string(AlgorithmDeflate)
}
