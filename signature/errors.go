package signature

import (
	"errors"
	"fmt"
)

// Signature errors.
var (
	// ErrLayoutCompilation is matched by every *CompilationError.
	ErrLayoutCompilation = errors.New("signature: layout compilation failed")

	// ErrDuplicateArgument is returned when two arguments share a name.
	ErrDuplicateArgument = errors.New("signature: duplicate argument name")

	// ErrEmptyConstants is returned for a constants argument with no values.
	ErrEmptyConstants = errors.New("signature: constants argument declares no values")

	// ErrEmptyRange is returned for a descriptor range with no descriptors.
	ErrEmptyRange = errors.New("signature: descriptor range declares no descriptors")

	// ErrNilDevice is returned when Build is called without a device.
	ErrNilDevice = errors.New("signature: device is nil")

	// ErrUnknownArgument is returned when encoding an argument the layout does not have.
	ErrUnknownArgument = errors.New("signature: unknown argument")

	// ErrArgumentKind is returned when encoding a value of the wrong kind.
	ErrArgumentKind = errors.New("signature: argument kind mismatch")

	// ErrTooManyValues is returned when more constants are written than declared.
	ErrTooManyValues = errors.New("signature: too many constant values")

	// ErrRecordTooSmall is returned when a record cannot hold the argument.
	ErrRecordTooSmall = errors.New("signature: shader record too small")
)

// CompilationError reports a signature rejected by the device.
type CompilationError struct {
	// Label is the debug label of the signature.
	Label string

	// Diagnostic is the driver's message.
	Diagnostic string

	// Err is the device error.
	Err error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("signature: compiling %q: %s", e.Label, e.Diagnostic)
	}
	return fmt.Sprintf("signature: compiling layout: %s", e.Diagnostic)
}

// Unwrap returns the device error.
func (e *CompilationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLayoutCompilation.
func (e *CompilationError) Is(target error) bool { return target == ErrLayoutCompilation }
