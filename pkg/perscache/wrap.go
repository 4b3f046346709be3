package perscache

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vnykmshr/perscache-go/pkg/metrics"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Cached wraps fn with persistent memoization and returns a function
// of the exact same type, so call sites and static typing are
// untouched. Results are fingerprinted by argument, stored under tag
// in the configured storage backend, and served from storage on
// subsequent calls with the same arguments, including across process
// restarts.
//
// Wrappable functions return one value, optionally followed by an
// error. A leading context.Context parameter is excluded from
// fingerprinting and, when the storage backend implements
// storage.ContextStorage, threaded into its operations. This is the
// asynchronous variant of the decorator; a blocking backend still
// runs its I/O inline on the calling goroutine. Variadic functions are
// not supported.
//
// Errors returned by fn are passed through and never cached; a call
// cancelled via its context therefore persists nothing. A stored entry
// that fails to decode is treated as a miss and recomputed, never
// surfaced. Failures to encode or persist a freshly computed result
// are surfaced through fn's error result alongside the computed value,
// since the computation succeeded and only persistence did not.
// Functions without an error result log such failures and return the
// value.
//
// Cached panics at decoration time on a non-function, an unsupported
// signature, a reused tag (see WithTagReuse) or a skip-arg name that
// matches no argument; these are programming errors on the order of a
// malformed tag, not runtime conditions.
func Cached[T any](tag string, fn T, opts ...Option) T {
	cfg := newConfig(opts)

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if err := validateWrappable(fnType); err != nil {
		panic("perscache.Cached: " + err.Error())
	}

	hasCtx := fnType.NumIn() > 0 && fnType.In(0) == ctxType
	numKeyArgs := fnType.NumIn()
	if hasCtx {
		numKeyArgs--
	}

	hasher := cfg.hasher
	if hasher == nil {
		names := cfg.argNames
		if names == nil {
			names = positionalNames(numKeyArgs)
		}
		if len(names) != numKeyArgs {
			panic(fmt.Sprintf("perscache.Cached: %d argument names for %d hashed arguments", len(names), numKeyArgs))
		}
		var err error
		hasher, err = DefaultArgHasher(names, cfg.skipArgs...)
		if err != nil {
			panic("perscache.Cached: " + err.Error())
		}
	}

	w := &wrapper{
		binding: newBinding(tag, cfg),
		fnValue: fnValue,
		fnType:  fnType,
		hasher:  hasher,
		hasCtx:  hasCtx,
		hasErr:  fnType.NumOut() == 2,
		outType: fnType.Out(0),
	}
	if cfg.singleflight {
		w.sf = &singleflight.Group{}
	}

	return reflect.MakeFunc(fnType, w.call).Interface().(T)
}

// validateWrappable rejects function shapes the cache cannot round-trip.
func validateWrappable(fnType reflect.Type) error {
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("not a function: %s", fnType)
	}
	if fnType.IsVariadic() {
		return fmt.Errorf("variadic functions are not supported")
	}

	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) == errType {
			return fmt.Errorf("functions returning only an error cannot be cached")
		}
	case 2:
		// Exactly the error interface: a concrete error type could not
		// carry the cache's own storage and serialization errors.
		if fnType.Out(1) != errType {
			return fmt.Errorf("two-result functions must return (value, error)")
		}
	case 0:
		return fmt.Errorf("functions with no return values cannot be cached")
	default:
		return fmt.Errorf("functions with more than one non-error result cannot be cached")
	}
	return nil
}

// wrapper holds everything one decorated function closes over.
type wrapper struct {
	*binding

	fnValue reflect.Value
	fnType  reflect.Type
	hasher  ArgHasherFunc
	sf      *singleflight.Group
	hasCtx  bool
	hasErr  bool
	outType reflect.Type
}

// call runs the per-call pipeline: compute key, look up, decode or
// invoke, store, return.
func (w *wrapper) call(args []reflect.Value) []reflect.Value {
	ctx, keyArgs := w.splitArgs(args)

	key, err := w.hasher(keyArgs)
	if err != nil {
		if w.hasErr {
			return w.returnError(err)
		}
		panic(err)
	}

	value, ok, err := w.get(ctx, key)
	if err != nil {
		// A failed read must not break the caller; recompute instead.
		w.readFailed(key, err)
		ok = false
	}
	if ok {
		out := reflect.New(w.outType)
		derr := w.serializer.Decode(value, out.Interface())
		if derr == nil {
			w.hit(key)
			return w.returnValue(out.Elem(), nil)
		}
		// Corrupted or incompatible entry: recompute and overwrite.
		w.decodeMiss(key, derr)
	}
	w.miss(key)

	result, callErr, shared := w.invoke(args, key)
	if callErr != nil {
		// The function's own failure: passed through, never cached.
		return w.returnError(callErr)
	}

	if shared {
		// Another in-flight call computed (and stored) this result.
		return w.returnValue(w.toOutValue(result), nil)
	}

	data, err := w.serializer.Encode(result)
	if err != nil {
		w.storeFailed(key, err)
		return w.returnValue(w.toOutValue(result), err)
	}
	if err := w.set(ctx, key, data); err != nil {
		w.storeFailed(key, err)
		return w.returnValue(w.toOutValue(result), err)
	}
	w.stored(key, len(data))

	return w.returnValue(w.toOutValue(result), nil)
}

// splitArgs separates a leading context from the hashed arguments.
func (w *wrapper) splitArgs(args []reflect.Value) (context.Context, []any) {
	ctx := context.Background()
	rest := args
	if w.hasCtx {
		if !args[0].IsNil() {
			ctx = args[0].Interface().(context.Context)
		}
		rest = args[1:]
	}
	keyArgs := make([]any, len(rest))
	for i, arg := range rest {
		keyArgs[i] = arg.Interface()
	}
	return ctx, keyArgs
}

// invoke runs the wrapped function, deduplicating concurrent calls on
// the same fingerprint when singleflight is enabled. It returns the
// computed value, the function's error, and whether the value came
// from another goroutine's in-flight computation.
func (w *wrapper) invoke(args []reflect.Value, key []byte) (any, error, bool) {
	start := time.Now()
	defer w.recordDuration(metrics.OperationInvoke, start)

	w.stats.incInFlight()
	defer w.stats.decInFlight()

	compute := func() (any, error) {
		rets := w.fnValue.Call(args)
		if w.hasErr && !rets[1].IsNil() {
			return nil, rets[1].Interface().(error)
		}
		return rets[0].Interface(), nil
	}

	if w.sf == nil {
		v, err := compute()
		return v, err, false
	}
	return w.sf.Do(string(key), compute)
}

// toOutValue converts a computed any back into a reflect value of the
// function's result type.
func (w *wrapper) toOutValue(v any) reflect.Value {
	if v == nil {
		return reflect.Zero(w.outType)
	}
	return reflect.ValueOf(v)
}

func (w *wrapper) returnValue(value reflect.Value, err error) []reflect.Value {
	if !w.hasErr {
		return []reflect.Value{value}
	}
	return []reflect.Value{value, w.errValue(err)}
}

func (w *wrapper) returnError(err error) []reflect.Value {
	return []reflect.Value{reflect.Zero(w.outType), w.errValue(err)}
}

func (w *wrapper) errValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(w.fnType.Out(1))
	}
	return reflect.ValueOf(err)
}
