package shader

import (
	"errors"
	"slices"
)

// ErrEmptyLibrary is returned for a library without code or exports.
var ErrEmptyLibrary = errors.New("shader: library has no code or no exports")

// Library is a compiled shader blob and the entry points it exports.
type Library struct {
	// Label is an optional debug name.
	Label string

	// Code is the compiled bytecode.
	Code []byte

	// Exports lists the exported entry point names in declaration order.
	Exports []string
}

// NewLibrary wraps precompiled bytecode exporting the named entry points.
func NewLibrary(code []byte, exports ...string) (*Library, error) {
	if len(code) == 0 || len(exports) == 0 {
		return nil, ErrEmptyLibrary
	}
	return &Library{Code: code, Exports: slices.Clone(exports)}, nil
}

// HasExport reports whether the library exports name.
func (l *Library) HasExport(name string) bool {
	return slices.Contains(l.Exports, name)
}
