package signature

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/raytrace/rtcore"
)

// Argument is one named argument of a layout.
type Argument struct {
	Name     string
	Kind     rtcore.ParameterType
	Register uint32
	Space    uint32

	// ValueCount is the number of 32-bit values of a constants argument.
	ValueCount uint32

	// Offset is the byte offset inside a shader record, counted from the
	// start of the record (the identifier occupies the first bytes).
	Offset uint64

	// Size is the number of record bytes the argument occupies.
	Size uint64
}

func (a *Argument) parameter() rtcore.Parameter {
	return rtcore.Parameter{
		Type:           a.Kind,
		ShaderRegister: a.Register,
		RegisterSpace:  a.Space,
		Num32BitValues: a.ValueCount,
	}
}

// Layout is a compiled argument layout. It is immutable and may be shared by
// any number of shader records and pipelines.
type Layout struct {
	label        string
	flags        rtcore.SignatureFlags
	signature    rtcore.Signature
	args         []Argument
	index        map[string]int
	argumentSize uint64
}

// Label returns the debug label.
func (l *Layout) Label() string { return l.label }

// Flags returns the signature flags.
func (l *Layout) Flags() rtcore.SignatureFlags { return l.flags }

// IsLocal reports whether this is a local signature.
func (l *Layout) IsLocal() bool { return l.flags&rtcore.SignatureFlagLocal != 0 }

// Signature returns the device signature object.
func (l *Layout) Signature() rtcore.Signature { return l.signature }

// Arguments returns the arguments in final order.
func (l *Layout) Arguments() []Argument {
	out := make([]Argument, len(l.args))
	copy(out, l.args)
	return out
}

// Lookup returns the argument named name.
func (l *Layout) Lookup(name string) (Argument, bool) {
	i, ok := l.index[name]
	if !ok {
		return Argument{}, false
	}
	return l.args[i], true
}

// Offset returns the record offset of the argument named name.
func (l *Layout) Offset(name string) (uint64, bool) {
	a, ok := l.Lookup(name)
	return a.Offset, ok
}

// Size returns the record size of the argument named name.
func (l *Layout) Size(name string) (uint64, bool) {
	a, ok := l.Lookup(name)
	return a.Size, ok
}

// ArgumentSize returns the number of bytes all arguments occupy, excluding
// the shader identifier.
func (l *Layout) ArgumentSize() uint64 { return l.argumentSize }

// TotalSize returns the extent of a shader record using this layout: the
// identifier followed by every argument. Offset(n)+Size(n) <= TotalSize()
// for every argument n.
func (l *Layout) TotalSize() uint64 {
	return rtcore.ShaderIdentifierSize + l.argumentSize
}

// DescriptorTableOffset returns the record offset of the descriptor table
// argument, if the layout has one.
func (l *Layout) DescriptorTableOffset() (uint64, bool) {
	return l.Offset(DescriptorTableArgument)
}

// DescriptorTableSize returns the size of the descriptor table argument.
func (l *Layout) DescriptorTableSize() uint64 { return rtcore.DescriptorHandleSize }

// Destroy releases the device signature.
func (l *Layout) Destroy() {
	if l.signature != nil {
		l.signature.Destroy()
		l.signature = nil
	}
}

// PutConstants writes values into the constants argument name of record.
// Fewer values than declared leave the remainder untouched.
func (l *Layout) PutConstants(record []byte, name string, values []uint32) error {
	a, err := l.slot(record, name, rtcore.ParameterConstants)
	if err != nil {
		return err
	}
	if len(values) > int(a.ValueCount) {
		return fmt.Errorf("%w: %q takes %d, got %d", ErrTooManyValues, name, a.ValueCount, len(values))
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(record[a.Offset+uint64(i)*4:], v)
	}
	return nil
}

// PutDescriptor writes a GPU virtual address into the SRV, UAV or CBV
// argument name of record.
func (l *Layout) PutDescriptor(record []byte, name string, gpuAddress uint64) error {
	a, ok := l.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownArgument, name)
	}
	switch a.Kind {
	case rtcore.ParameterSRV, rtcore.ParameterUAV, rtcore.ParameterCBV:
	default:
		return fmt.Errorf("%w: %q is %s", ErrArgumentKind, name, a.Kind)
	}
	if uint64(len(record)) < a.Offset+a.Size {
		return fmt.Errorf("%w: %d bytes, %q ends at %d", ErrRecordTooSmall, len(record), name, a.Offset+a.Size)
	}
	binary.LittleEndian.PutUint64(record[a.Offset:], gpuAddress)
	return nil
}

// PutDescriptorTable writes a GPU descriptor handle into the descriptor
// table argument of record.
func (l *Layout) PutDescriptorTable(record []byte, handle uint64) error {
	a, err := l.slot(record, DescriptorTableArgument, rtcore.ParameterDescriptorTable)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(record[a.Offset:], handle)
	return nil
}

func (l *Layout) slot(record []byte, name string, kind rtcore.ParameterType) (Argument, error) {
	a, ok := l.Lookup(name)
	if !ok {
		return a, fmt.Errorf("%w: %q", ErrUnknownArgument, name)
	}
	if a.Kind != kind {
		return a, fmt.Errorf("%w: %q is %s, not %s", ErrArgumentKind, name, a.Kind, kind)
	}
	if uint64(len(record)) < a.Offset+a.Size {
		return a, fmt.Errorf("%w: %d bytes, %q ends at %d", ErrRecordTooSmall, len(record), name, a.Offset+a.Size)
	}
	return a, nil
}
