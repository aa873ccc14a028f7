package gic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports malformed system or key parameters, points
	// off the curve and elements outside the expected subgroup.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDomainMismatch reports an operand outside the algebraic set a public
	// entry point expects, including values produced by another backend.
	ErrDomainMismatch = errors.New("domain mismatch")

	// ErrMalformedEncoding reports a decoding failure: wrong length, unknown
	// tag, or a value out of its canonical range.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrReconstructionMismatch reports disagreement between a recomputed
	// challenge or reconstructed key and its expected value. It never occurs
	// under correct operation.
	ErrReconstructionMismatch = errors.New("reconstruction mismatch")
)

// Errorf builds an error that matches kind under errors.Is. The format may
// use %w to attach further causes.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("INVALID: %w: "+format, append([]any{kind}, args...)...)
}
