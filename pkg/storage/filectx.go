package storage

import "context"

// ContextFile is the suspendable variant of File. Each operation runs
// on its own goroutine so the caller can abandon the wait when its
// context is cancelled; the underlying file operation still runs to
// completion, it just no longer blocks anyone.
//
// ContextFile also satisfies the blocking Storage contract by
// delegating straight to the wrapped File store.
type ContextFile struct {
	*File
}

// NewContextFile creates a context-aware flat-file store rooted at
// root. An empty root defaults to ./.perscache.
func NewContextFile(root string) (*ContextFile, error) {
	inner, err := NewFile(root)
	if err != nil {
		return nil, err
	}
	return &ContextFile{File: inner}, nil
}

type getResult struct {
	value []byte
	ok    bool
	err   error
}

func (c *ContextFile) GetContext(ctx context.Context, tag string, key []byte) ([]byte, bool, error) {
	ch := make(chan getResult, 1)
	go func() {
		value, ok, err := c.File.Get(tag, key)
		ch <- getResult{value: value, ok: ok, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, false, &Error{Op: "get", Tag: tag, Err: ctx.Err()}
	case r := <-ch:
		return r.value, r.ok, r.err
	}
}

func (c *ContextFile) SetContext(ctx context.Context, tag string, key, value []byte) error {
	ch := make(chan error, 1)
	go func() {
		ch <- c.File.Set(tag, key, value)
	}()

	select {
	case <-ctx.Done():
		return &Error{Op: "set", Tag: tag, Err: ctx.Err()}
	case err := <-ch:
		return err
	}
}

func (c *ContextFile) DeleteTagContext(ctx context.Context, tag string) error {
	ch := make(chan error, 1)
	go func() {
		ch <- c.File.DeleteTag(tag)
	}()

	select {
	case <-ctx.Done():
		return &Error{Op: "delete-tag", Tag: tag, Err: ctx.Err()}
	case err := <-ch:
		return err
	}
}
