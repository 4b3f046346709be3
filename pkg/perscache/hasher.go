package perscache

import (
	"bytes"
	"crypto/sha256"
	"encoding"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
)

// ArgHasherFunc converts one call's resolved arguments into a
// deterministic fingerprint. A custom hasher supplied via
// WithArgHasher is used as-is: no canonicalization is imposed, so
// determinism (and argument-order sensitivity, if wanted) is the
// implementer's business.
type ArgHasherFunc func(args []any) ([]byte, error)

// DefaultArgHasher builds the canonical hasher: each argument is
// paired with its name, skip-set entries are dropped, the remaining
// pairs are sorted by name and fed through a canonical byte encoding
// into SHA-256. Two calls whose included arguments are equal always
// produce the same 32-byte fingerprint regardless of how the caller
// ordered them.
//
// argNames must name every hashed argument in positional order.
// Each skipArgs entry must appear in argNames.
func DefaultArgHasher(argNames []string, skipArgs ...string) (ArgHasherFunc, error) {
	skip := make(map[string]struct{}, len(skipArgs))
	for _, name := range skipArgs {
		found := false
		for _, n := range argNames {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("skip argument %q is not among argument names %v", name, argNames)
		}
		skip[name] = struct{}{}
	}

	names := make([]string, len(argNames))
	copy(names, argNames)

	return func(args []any) ([]byte, error) {
		if len(args) != len(names) {
			return nil, fmt.Errorf("expected %d arguments, got %d", len(names), len(args))
		}

		type namedArg struct {
			name  string
			value any
		}
		included := make([]namedArg, 0, len(args))
		for i, name := range names {
			if _, ok := skip[name]; ok {
				continue
			}
			included = append(included, namedArg{name: name, value: args[i]})
		}
		sort.Slice(included, func(i, j int) bool {
			return included[i].name < included[j].name
		})

		digest := sha256.New()
		for _, arg := range included {
			writeString(digest, arg.name)
			if err := writeCanonical(digest, arg.value); err != nil {
				return nil, &HashingError{Arg: arg.name, Err: err}
			}
		}
		return digest.Sum(nil), nil
	}, nil
}

// positionalNames generates arg0..argN-1 for functions decorated
// without WithArgNames.
func positionalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "arg" + strconv.Itoa(i)
	}
	return names
}

// HashArgs computes the canonical SHA-256 fingerprint of the given
// positional values. Unlike the default hasher it is sensitive to
// argument order; it exists for callers assembling their own
// ArgHasherFunc from pieces of a call.
func HashArgs(values ...any) ([]byte, error) {
	digest := sha256.New()
	for i, v := range values {
		if err := writeCanonical(digest, v); err != nil {
			return nil, &HashingError{Arg: "arg" + strconv.Itoa(i), Err: err}
		}
	}
	return digest.Sum(nil), nil
}

// writeCanonical writes a canonical, type-prefixed byte encoding of v.
// The encoding is deterministic: map entries are sorted by their
// encoded key, struct fields walk in declaration order by name,
// pointers and interfaces are dereferenced. Structs implementing
// BinaryMarshaler or TextMarshaler are encoded through that form, so
// opaque types like time.Time hash by their state; structs with no
// exported fields and no marshaler are unhashable, as are kinds with
// no stable identity across runs (chan, func, unsafe pointers).
func writeCanonical(w io.Writer, v any) error {
	if v == nil {
		_, err := io.WriteString(w, "nil;")
		return err
	}
	return writeCanonicalValue(w, reflect.ValueOf(v))
}

func writeCanonicalValue(w io.Writer, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		writeString(w, rv.String())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fmt.Fprintf(w, "i:%d;", rv.Int())
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		fmt.Fprintf(w, "u:%d;", rv.Uint())
		return nil

	case reflect.Float32, reflect.Float64:
		fmt.Fprintf(w, "f:%s;", strconv.FormatFloat(rv.Float(), 'g', -1, 64))
		return nil

	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		fmt.Fprintf(w, "c:%s,%s;",
			strconv.FormatFloat(real(c), 'g', -1, 64),
			strconv.FormatFloat(imag(c), 'g', -1, 64))
		return nil

	case reflect.Bool:
		fmt.Fprintf(w, "b:%t;", rv.Bool())
		return nil

	case reflect.Ptr:
		if rv.IsNil() {
			_, err := io.WriteString(w, "ptr:nil;")
			return err
		}
		io.WriteString(w, "ptr:")
		return writeCanonicalValue(w, rv.Elem())

	case reflect.Interface:
		if rv.IsNil() {
			_, err := io.WriteString(w, "iface:nil;")
			return err
		}
		return writeCanonicalValue(w, rv.Elem())

	case reflect.Slice:
		if rv.IsNil() {
			_, err := io.WriteString(w, "slice:nil;")
			return err
		}
		return writeCanonicalSequence(w, rv)

	case reflect.Array:
		return writeCanonicalSequence(w, rv)

	case reflect.Map:
		return writeCanonicalMap(w, rv)

	case reflect.Struct:
		// Opaque types like time.Time keep their state in unexported
		// fields; their marshaled form is the canonical identity.
		if done, err := writeMarshaled(w, rv); done {
			return err
		}
		return writeCanonicalStruct(w, rv)

	default:
		// chan, func, unsafe pointers: no representation survives a
		// process restart, so the fingerprint would be meaningless.
		return fmt.Errorf("unhashable kind %s (type %s)", rv.Kind(), rv.Type())
	}
}

func writeCanonicalSequence(w io.Writer, rv reflect.Value) error {
	fmt.Fprintf(w, "seq%d[", rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if err := writeCanonicalValue(w, rv.Index(i)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "];")
	return err
}

func writeCanonicalMap(w io.Writer, rv reflect.Value) error {
	if rv.IsNil() {
		_, err := io.WriteString(w, "map:nil;")
		return err
	}

	type encodedEntry struct {
		key   []byte
		value []byte
	}
	entries := make([]encodedEntry, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		var kbuf, vbuf bytes.Buffer
		if err := writeCanonicalValue(&kbuf, iter.Key()); err != nil {
			return err
		}
		if err := writeCanonicalValue(&vbuf, iter.Value()); err != nil {
			return err
		}
		entries = append(entries, encodedEntry{key: kbuf.Bytes(), value: vbuf.Bytes()})
	}

	// Iteration order is randomized; sorting by encoded key makes the
	// digest independent of it.
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	fmt.Fprintf(w, "map%d{", len(entries))
	for _, e := range entries {
		w.Write(e.key)
		io.WriteString(w, "=")
		w.Write(e.value)
	}
	_, err := io.WriteString(w, "};")
	return err
}

// writeMarshaled encodes values carrying their own canonical byte form
// via encoding.BinaryMarshaler or encoding.TextMarshaler. It reports
// whether it handled the value.
func writeMarshaled(w io.Writer, rv reflect.Value) (bool, error) {
	if !rv.CanInterface() {
		return false, nil
	}
	switch m := rv.Interface().(type) {
	case encoding.BinaryMarshaler:
		data, err := m.MarshalBinary()
		if err != nil {
			return true, fmt.Errorf("marshal binary: %w", err)
		}
		fmt.Fprintf(w, "bin%d:", len(data))
		w.Write(data)
		_, werr := io.WriteString(w, ";")
		return true, werr
	case encoding.TextMarshaler:
		data, err := m.MarshalText()
		if err != nil {
			return true, fmt.Errorf("marshal text: %w", err)
		}
		fmt.Fprintf(w, "txt%d:", len(data))
		w.Write(data)
		_, werr := io.WriteString(w, ";")
		return true, werr
	}
	return false, nil
}

func writeCanonicalStruct(w io.Writer, rv reflect.Value) error {
	rt := rv.Type()
	fmt.Fprintf(w, "struct:%s{", rt.String())
	written := 0
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		writeString(w, field.Name)
		if err := writeCanonicalValue(w, rv.Field(i)); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		written++
	}
	if written == 0 {
		// Only unexported fields: the encoding would be a constant for
		// every value of the type, and a constant fingerprint serves
		// wrong answers. Refusing forces a skip or a custom hasher.
		return fmt.Errorf("struct %s has no exported fields and no marshaler; its values are indistinguishable", rt)
	}
	_, err := io.WriteString(w, "};")
	return err
}

// writeString length-prefixes the string so adjacent values can never
// run together into the same digest input.
func writeString(w io.Writer, s string) {
	fmt.Fprintf(w, "s%d:%s;", len(s), s)
}
