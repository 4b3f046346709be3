// Package perscache provides transparent, persistent memoization of
// function results across process restarts.
//
// Wrap an expensive function with Cached and call it as before. The
// first call with a given set of arguments computes and persists the
// result; subsequent calls, in this process or the next one, return
// the stored value without invoking the function body:
//
//	expensive := perscache.Cached("multiply", func(x, y int) (float64, error) {
//	    return float64(x * y), nil
//	})
//
//	v, err := expensive(3, 4) // computes and stores 12.0
//	v, err = expensive(3, 4)  // served from storage
//
// Arguments are fingerprinted with a canonical SHA-256 hasher that is
// insensitive to map ordering and can exclude arguments that are
// unhashable or irrelevant to the result:
//
//	answer := perscache.Cached("llm-answer", ask,
//	    perscache.WithArgNames("client", "prompt"),
//	    perscache.WithSkipArgs("client"))
//
// Context-taking functions are the asynchronous variant: the leading
// context.Context is never hashed and is threaded into storage
// backends implementing storage.ContextStorage, so a cooperative
// caller can cancel both the computation and the cache I/O.
//
// Results are serialized to bytes (msgpack by default; JSON, gob and
// a compressing wrapper live in pkg/serializer) and persisted in a
// pluggable backend (SQLite by default; flat files, Redis and an
// in-memory LRU live in pkg/storage). Entries never expire; invalidate
// a whole function's cache with the backend's DeleteTag.
package perscache
