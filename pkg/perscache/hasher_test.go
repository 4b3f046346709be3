package perscache

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestDefaultArgHasherDeterministic(t *testing.T) {
	hasher, err := DefaultArgHasher([]string{"x", "y"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	first, err := hasher([]any{1, 2})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	second, err := hasher([]any{1, 2})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("Same arguments produced different fingerprints")
	}
	if len(first) != 32 {
		t.Fatalf("Expected a 32-byte digest, got %d bytes", len(first))
	}

	different, err := hasher([]any{1, 3})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(first, different) {
		t.Fatal("Different arguments produced the same fingerprint")
	}
}

func TestDefaultArgHasherNameOrderIrrelevant(t *testing.T) {
	// The same name->value mapping must fingerprint identically no
	// matter the positional order, the keyword-call property.
	xy, err := DefaultArgHasher([]string{"x", "y"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}
	yx, err := DefaultArgHasher([]string{"y", "x"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	a, err := xy([]any{1, 2})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	b, err := yx([]any{2, 1})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("Fingerprint depends on positional order of named arguments")
	}
}

func TestDefaultArgHasherSkipArgs(t *testing.T) {
	hasher, err := DefaultArgHasher([]string{"prompt", "client"}, "client")
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	// Channels are unhashable, but a skipped argument is never touched.
	first, err := hasher([]any{"hello", make(chan int)})
	if err != nil {
		t.Fatalf("Skipped argument was hashed: %v", err)
	}
	second, err := hasher([]any{"hello", make(chan int)})
	if err != nil {
		t.Fatalf("Skipped argument was hashed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("Fingerprint depends on an excluded argument")
	}

	other, err := hasher([]any{"goodbye", make(chan int)})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(first, other) {
		t.Fatal("Included argument change did not change the fingerprint")
	}
}

func TestDefaultArgHasherUnknownSkipName(t *testing.T) {
	if _, err := DefaultArgHasher([]string{"x"}, "nope"); err == nil {
		t.Fatal("Expected an error for a skip name matching no argument")
	}
}

func TestDefaultArgHasherUnhashableArgument(t *testing.T) {
	hasher, err := DefaultArgHasher([]string{"x", "ch"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	_, err = hasher([]any{1, make(chan int)})
	if err == nil {
		t.Fatal("Expected a hashing error for a channel argument")
	}

	var hashErr *HashingError
	if !errors.As(err, &hashErr) {
		t.Fatalf("Expected *HashingError, got %T", err)
	}
	if hashErr.Arg != "ch" {
		t.Fatalf("Expected the error to name argument ch, got %q", hashErr.Arg)
	}
}

func TestDefaultArgHasherMapOrderIndependent(t *testing.T) {
	hasher, err := DefaultArgHasher([]string{"m"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	m1 := map[string]int{}
	m1["a"] = 1
	m1["b"] = 2
	m1["c"] = 3

	m2 := map[string]int{}
	m2["c"] = 3
	m2["b"] = 2
	m2["a"] = 1

	first, err := hasher([]any{m1})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	second, err := hasher([]any{m2})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("Map insertion order affected the fingerprint")
	}
}

func TestDefaultArgHasherStructs(t *testing.T) {
	type query struct {
		Table string
		Limit int

		hidden string // unexported fields are ignored
	}

	hasher, err := DefaultArgHasher([]string{"q"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	a, err := hasher([]any{query{Table: "users", Limit: 10, hidden: "x"}})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	b, err := hasher([]any{query{Table: "users", Limit: 10, hidden: "y"}})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("Unexported field affected the fingerprint")
	}

	c, err := hasher([]any{query{Table: "users", Limit: 20}})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatal("Exported field change did not change the fingerprint")
	}
}

func TestDefaultArgHasherTimeValues(t *testing.T) {
	// time.Time keeps its state in unexported fields; it must hash by
	// its marshaled form, not collapse to one fingerprint per type.
	hasher, err := DefaultArgHasher([]string{"at"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	jan := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	aug := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	first, err := hasher([]any{jan})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	second, err := hasher([]any{aug})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("Distinct times produced the same fingerprint")
	}

	again, err := hasher([]any{jan})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if !bytes.Equal(first, again) {
		t.Fatal("Equal times produced different fingerprints")
	}
}

func TestDefaultArgHasherOpaqueStruct(t *testing.T) {
	// A struct exposing nothing and marshaling to nothing encodes to a
	// constant; hashing it must fail rather than collide.
	type opaque struct {
		secret int
	}

	hasher, err := DefaultArgHasher([]string{"v"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	_, err = hasher([]any{opaque{secret: 1}})
	if err == nil {
		t.Fatal("Expected a hashing error for a struct with no exported fields")
	}
	var hashErr *HashingError
	if !errors.As(err, &hashErr) {
		t.Fatalf("Expected *HashingError, got %T", err)
	}
	if hashErr.Arg != "v" {
		t.Fatalf("Expected the error to name argument v, got %q", hashErr.Arg)
	}
}

func TestDefaultArgHasherNilValues(t *testing.T) {
	hasher, err := DefaultArgHasher([]string{"p"})
	if err != nil {
		t.Fatalf("Failed to build hasher: %v", err)
	}

	var p *int
	withNil, err := hasher([]any{p})
	if err != nil {
		t.Fatalf("Unexpected hash error for nil pointer: %v", err)
	}

	v := 42
	withValue, err := hasher([]any{&v})
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(withNil, withValue) {
		t.Fatal("Nil and non-nil pointers produced the same fingerprint")
	}

	untyped, err := hasher([]any{nil})
	if err != nil {
		t.Fatalf("Unexpected hash error for untyped nil: %v", err)
	}
	if len(untyped) != 32 {
		t.Fatalf("Expected a 32-byte digest, got %d bytes", len(untyped))
	}
}

func TestHashArgsOrderSensitive(t *testing.T) {
	ab, err := HashArgs("a", "b")
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	ba, err := HashArgs("b", "a")
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(ab, ba) {
		t.Fatal("HashArgs should be sensitive to argument order")
	}

	again, err := HashArgs("a", "b")
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if !bytes.Equal(ab, again) {
		t.Fatal("HashArgs is not deterministic")
	}
}

func TestHashArgsUnhashable(t *testing.T) {
	_, err := HashArgs(1, make(chan int))
	if err == nil {
		t.Fatal("Expected a hashing error for a channel value")
	}

	var hashErr *HashingError
	if !errors.As(err, &hashErr) {
		t.Fatalf("Expected *HashingError, got %T", err)
	}
	if hashErr.Arg != "arg1" {
		t.Fatalf("Expected the error to name arg1, got %q", hashErr.Arg)
	}
}

func TestHashArgsDistinguishesTypes(t *testing.T) {
	asInt, err := HashArgs(1)
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	asString, err := HashArgs("1")
	if err != nil {
		t.Fatalf("Unexpected hash error: %v", err)
	}
	if bytes.Equal(asInt, asString) {
		t.Fatal("int 1 and string \"1\" produced the same fingerprint")
	}
}
