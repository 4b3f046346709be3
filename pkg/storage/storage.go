// Package storage provides byte-blob persistence backends keyed by
// (tag, fingerprint) pairs.
//
// A tag is a caller-chosen namespace string, typically one per cached
// function; a fingerprint is a fixed-length digest of a call's
// arguments. Backends must map each distinct pair to a distinct
// physical location and must be able to delete everything under a tag
// without touching other tags.
//
// Two contracts exist. Storage is the blocking contract every backend
// satisfies. ContextStorage adds context-aware variants for backends
// whose I/O is worth cancelling or timing out; SQLite and File stay
// blocking-only on purpose, local disk latency being assumed cheaper
// than the suspension machinery.
package storage

import (
	"context"
	"fmt"
)

// Storage is the blocking persistence contract.
//
// Get returns (nil, false, nil) for a simple miss; it only errors when
// the backend itself fails. Set overwrites any previous value for the
// same (tag, key) and must be durable against normal process
// termination before it returns. DeleteTag removes every entry under
// the tag; a tag with no entries is not an error.
type Storage interface {
	Get(tag string, key []byte) (value []byte, ok bool, err error)
	Set(tag string, key []byte, value []byte) error
	DeleteTag(tag string) error
	Close() error
}

// ContextStorage is the suspendable persistence contract. Operations
// honor context cancellation and deadlines while waiting on I/O.
type ContextStorage interface {
	GetContext(ctx context.Context, tag string, key []byte) (value []byte, ok bool, err error)
	SetContext(ctx context.Context, tag string, key []byte, value []byte) error
	DeleteTagContext(ctx context.Context, tag string) error
}

// Error reports a failed storage operation together with the tag it
// was scoped to.
type Error struct {
	Op  string
	Tag string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s (tag %q): %v", e.Op, e.Tag, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
