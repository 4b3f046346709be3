package perscache

import "fmt"

// HashingError reports a call argument the canonical hasher could not
// fingerprint. The fix is to exclude the argument via WithSkipArgs or
// to supply a custom hasher via WithArgHasher.
type HashingError struct {
	// Arg is the name of the offending argument (positional arg0..argN
	// unless WithArgNames supplied real names).
	Arg string
	Err error
}

func (e *HashingError) Error() string {
	return fmt.Sprintf("cannot hash argument %s: %v", e.Arg, e.Err)
}

func (e *HashingError) Unwrap() error {
	return e.Err
}
