package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a bad constructor or call parameter. The
	// failing call has no side effects.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned by Pop and PopItem on a missing key.
	ErrNotFound = errors.New("not found")
	// ErrStateCorruption marks on-disk bytes that do not decode.
	ErrStateCorruption = errors.New("state corruption")
	// ErrIOFailure marks filesystem errors.
	ErrIOFailure = errors.New("io failure")
	// ErrDecryption is returned when ciphertext does not open under the
	// salt in use, either because it was sealed with a different salt or
	// because it was modified.
	ErrDecryption = errors.New("decryption failed")
	// ErrTimeout is returned when a lock is not acquired in time.
	ErrTimeout = errors.New("lock timeout")
)

// ArgError names the offending parameter of an invalid call.
type ArgError struct {
	Param  string
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
}

func (e *ArgError) Unwrap() error { return ErrInvalidArgument }

// InvalidArg builds an *ArgError for param.
func InvalidArg(param, format string, args ...any) error {
	return &ArgError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// IOError wraps a filesystem error with the operation and path. It
// matches both ErrIOFailure and the underlying error under errors.Is.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() []error { return []error{ErrIOFailure, e.Err} }

// Corrupt wraps err as state corruption of the file at path.
func Corrupt(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStateCorruption, path, err)
}
