package perscache

import (
	"context"
	"fmt"
	"time"

	"github.com/vnykmshr/perscache-go/pkg/metrics"
)

// CachedBatch adds per-element memoization to a batch function, one
// that maps a slice of inputs to a slice of outputs of the same
// length. Each element is fingerprinted independently; the
// wrapped function is invoked once per call with only the elements
// that missed, and its results are persisted individually, so a later
// call with any mix of seen and unseen elements recomputes only the
// unseen ones.
//
// fn must return exactly one output per input, in order; a length
// mismatch is an error. Persistence failures follow the same policy as
// Cached: the assembled results are returned together with the error.
func CachedBatch[A any, R any](tag string, fn func([]A) ([]R, error), opts ...Option) func([]A) ([]R, error) {
	b, hasher := newBatchBinding(tag, opts)

	return func(items []A) ([]R, error) {
		return runBatch(context.Background(), b, hasher, items, func(missing []A) ([]R, error) {
			return fn(missing)
		})
	}
}

// CachedBatchCtx is CachedBatch for context-taking batch functions.
// The context flows into the wrapped function and, when the backend
// implements storage.ContextStorage, into every storage operation.
func CachedBatchCtx[A any, R any](tag string, fn func(context.Context, []A) ([]R, error), opts ...Option) func(context.Context, []A) ([]R, error) {
	b, hasher := newBatchBinding(tag, opts)

	return func(ctx context.Context, items []A) ([]R, error) {
		return runBatch(ctx, b, hasher, items, func(missing []A) ([]R, error) {
			return fn(ctx, missing)
		})
	}
}

func newBatchBinding(tag string, opts []Option) (*binding, ArgHasherFunc) {
	cfg := newConfig(opts)

	hasher := cfg.hasher
	if hasher == nil {
		names := cfg.argNames
		if names == nil {
			names = positionalNames(1)
		}
		if len(names) != 1 {
			panic(fmt.Sprintf("perscache.CachedBatch: %d argument names for the single batch element", len(names)))
		}
		var err error
		hasher, err = DefaultArgHasher(names, cfg.skipArgs...)
		if err != nil {
			panic("perscache.CachedBatch: " + err.Error())
		}
	}

	return newBinding(tag, cfg), hasher
}

func runBatch[A any, R any](ctx context.Context, b *binding, hasher ArgHasherFunc, items []A, invoke func([]A) ([]R, error)) ([]R, error) {
	results := make([]R, len(items))
	keys := make([][]byte, len(items))

	var missIdx []int
	var missing []A

	for i, item := range items {
		key, err := hasher([]any{item})
		if err != nil {
			return nil, err
		}
		keys[i] = key

		value, ok, err := b.get(ctx, key)
		if err != nil {
			b.readFailed(key, err)
			ok = false
		}
		if ok {
			var decoded R
			derr := b.serializer.Decode(value, &decoded)
			if derr == nil {
				b.hit(key)
				results[i] = decoded
				continue
			}
			b.decodeMiss(key, derr)
		}
		b.miss(key)
		missIdx = append(missIdx, i)
		missing = append(missing, item)
	}

	if len(missing) == 0 {
		return results, nil
	}

	start := time.Now()
	b.stats.incInFlight()
	computed, err := invoke(missing)
	b.stats.decInFlight()
	b.recordDuration(metrics.OperationInvoke, start)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missing) {
		return nil, fmt.Errorf("batch function returned %d results for %d inputs", len(computed), len(missing))
	}

	// Fill in the fresh results first so the caller gets a complete
	// slice even when persisting some of them fails.
	for j, i := range missIdx {
		results[i] = computed[j]
	}

	var storeErr error
	for j, i := range missIdx {
		key := keys[i]
		data, err := b.serializer.Encode(computed[j])
		if err != nil {
			b.storeFailed(key, err)
			storeErr = err
			continue
		}
		if err := b.set(ctx, key, data); err != nil {
			b.storeFailed(key, err)
			storeErr = err
			continue
		}
		b.stored(key, len(data))
	}

	return results, storeErr
}
