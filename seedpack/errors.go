package seedpack

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("seedpack: malformed container")

	// ErrIntegrity matches every *IntegrityError.
	ErrIntegrity = errors.New("seedpack: integrity check failed")

	ErrOutputLimit     = errors.New("seedpack: regenerated output exceeds limit")
	ErrInputTooLarge   = errors.New("seedpack: input exceeds maximum size")
	ErrUnknownCodec    = errors.New("seedpack: unknown dictionary codec")
	ErrSeedMismatch    = errors.New("seedpack: seed does not belong to generator")
	ErrNoGenerator     = errors.New("seedpack: no generator registered for kind")
	ErrInvalidSeed     = errors.New("seedpack: invalid seed parameters")
	ErrIntegerOverflow = errors.New("seedpack: sequence term overflows int64")
)

// FormatError reports a container that cannot be parsed. Field names the
// part of the container that was rejected.
type FormatError struct {
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", ErrFormat, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrFormat, e.Field, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErrorf(field, format string, args ...any) *FormatError {
	return &FormatError{Field: field, Err: fmt.Errorf(format, args...)}
}

// IntegrityError reports a container whose seed does not reproduce the
// original: either regeneration failed with Err, or the regenerated bytes
// have digest Got instead of Want.
type IntegrityError struct {
	Kind Kind
	Want Digest
	Got  Digest
	Err  error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s regenerate: %v", ErrIntegrity, e.Kind, e.Err)
	}
	return fmt.Sprintf("%v: %s regenerated digest %s, want %s", ErrIntegrity, e.Kind, e.Got, e.Want)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// IsFormatError reports whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// AsFormatError extracts the *FormatError from err, or returns nil.
func AsFormatError(err error) *FormatError {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// IsIntegrityError reports whether err is or wraps an *IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// AsIntegrityError extracts the *IntegrityError from err, or returns nil.
func AsIntegrityError(err error) *IntegrityError {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}
