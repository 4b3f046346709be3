package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// File persists one file per entry under root/<escaped tag>/<encoded
// key>. The tag becomes a directory, so tag-scoped deletion is a
// single directory removal and never reads unrelated tags. Writes go
// through a temp file, fsync and rename so concurrent writers on the
// same key can never expose a partial blob.
//
// File provides only the blocking Storage contract; ContextFile wraps
// it for callers on a cooperative scheduler.
type File struct {
	root string
}

// NewFile creates a flat-file store rooted at root (created if
// missing). An empty root defaults to ./.perscache.
func NewFile(root string) (*File, error) {
	if root == "" {
		root = DefaultDir
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &File{root: root}, nil
}

// Root returns the directory the store writes under.
func (f *File) Root() string {
	return f.root
}

// entryPath maps (tag, key) to a unique file path. The tag is
// path-escaped so separators cannot leave the tag directory; the key
// uses the unpadded URL-safe base64 alphabet.
func (f *File) entryPath(tag string, key []byte) string {
	return filepath.Join(f.tagDir(tag), base64.RawURLEncoding.EncodeToString(key))
}

func (f *File) tagDir(tag string) string {
	name := url.PathEscape(tag)
	// PathEscape leaves dots alone, and "." or ".." as a directory name
	// would resolve to the root or its parent. Percent-encode them by
	// hand; PathEscape escapes "%" itself, so these forms can never
	// collide with another escaped tag.
	switch name {
	case ".":
		name = "%2E"
	case "..":
		name = "%2E%2E"
	}
	return filepath.Join(f.root, name)
}

func (f *File) Get(tag string, key []byte) ([]byte, bool, error) {
	data, err := os.ReadFile(f.entryPath(tag, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Tag: tag, Err: err}
	}
	return data, true, nil
}

func (f *File) Set(tag string, key, value []byte) error {
	dir := f.tagDir(tag)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Op: "set", Tag: tag, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &Error{Op: "set", Tag: tag, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return &Error{Op: "set", Tag: tag, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &Error{Op: "set", Tag: tag, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "set", Tag: tag, Err: err}
	}

	if err := os.Rename(tmp.Name(), f.entryPath(tag, key)); err != nil {
		return &Error{Op: "set", Tag: tag, Err: err}
	}
	return nil
}

func (f *File) DeleteTag(tag string) error {
	// RemoveAll reports nil for a missing directory, which matches
	// the contract: deleting an absent tag is not an error.
	if err := os.RemoveAll(f.tagDir(tag)); err != nil {
		return &Error{Op: "delete-tag", Tag: tag, Err: err}
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
