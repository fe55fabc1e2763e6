package signature

import (
	"fmt"
	"slices"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

// DescriptorTableArgument is the name of the synthetic argument that holds
// the descriptor table when ranges were added.
const DescriptorTableArgument = "descriptor_table"

// Option configures a Builder.
type Option func(*Builder)

// WithLabel sets the debug label of the compiled signature.
func WithLabel(label string) Option {
	return func(b *Builder) {
		b.label = label
	}
}

// Builder accumulates argument declarations for one signature.
//
// Methods return the builder for chaining. The first declaration error is
// kept and reported by Build.
type Builder struct {
	label  string
	flags  rtcore.SignatureFlags
	args   []Argument
	ranges []rtcore.DescriptorRange
	names  map[string]struct{}
	err    error
}

// NewGlobal returns a builder for a global signature, shared by every shader
// of a pipeline and bound by the host before dispatch.
func NewGlobal(opts ...Option) *Builder {
	return newBuilder(rtcore.SignatureFlagNone, opts)
}

// NewLocal returns a builder for a local signature whose arguments are read
// from each shader record.
func NewLocal(opts ...Option) *Builder {
	return newBuilder(rtcore.SignatureFlagLocal, opts)
}

func newBuilder(flags rtcore.SignatureFlags, opts []Option) *Builder {
	b := &Builder{
		flags: flags,
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddConstants declares count inline 32-bit constants bound to register
// b<register> in space.
func (b *Builder) AddConstants(name string, register, space, count uint32) *Builder {
	if count == 0 {
		b.fail(fmt.Errorf("%w: %q", ErrEmptyConstants, name))
		return b
	}
	return b.add(Argument{Name: name, Kind: rtcore.ParameterConstants, Register: register, Space: space, ValueCount: count})
}

// AddSRV declares a shader resource view bound by GPU address.
func (b *Builder) AddSRV(name string, register, space uint32) *Builder {
	return b.add(Argument{Name: name, Kind: rtcore.ParameterSRV, Register: register, Space: space})
}

// AddUAV declares an unordered access view bound by GPU address.
func (b *Builder) AddUAV(name string, register, space uint32) *Builder {
	return b.add(Argument{Name: name, Kind: rtcore.ParameterUAV, Register: register, Space: space})
}

// AddCBV declares a constant buffer view bound by GPU address.
func (b *Builder) AddCBV(name string, register, space uint32) *Builder {
	return b.add(Argument{Name: name, Kind: rtcore.ParameterCBV, Register: register, Space: space})
}

// AddSRVRange adds count SRVs starting at baseRegister to the descriptor table.
func (b *Builder) AddSRVRange(count, baseRegister, space, tableOffset uint32) *Builder {
	return b.addRange(rtcore.RangeSRV, count, baseRegister, space, tableOffset)
}

// AddUAVRange adds count UAVs starting at baseRegister to the descriptor table.
func (b *Builder) AddUAVRange(count, baseRegister, space, tableOffset uint32) *Builder {
	return b.addRange(rtcore.RangeUAV, count, baseRegister, space, tableOffset)
}

// AddCBVRange adds count CBVs starting at baseRegister to the descriptor table.
func (b *Builder) AddCBVRange(count, baseRegister, space, tableOffset uint32) *Builder {
	return b.addRange(rtcore.RangeCBV, count, baseRegister, space, tableOffset)
}

// AddSamplerRange adds count samplers starting at baseRegister to the descriptor table.
func (b *Builder) AddSamplerRange(count, baseRegister, space, tableOffset uint32) *Builder {
	return b.addRange(rtcore.RangeSampler, count, baseRegister, space, tableOffset)
}

func (b *Builder) add(a Argument) *Builder {
	if _, dup := b.names[a.Name]; dup || a.Name == DescriptorTableArgument {
		b.fail(fmt.Errorf("%w: %q", ErrDuplicateArgument, a.Name))
		return b
	}
	b.names[a.Name] = struct{}{}
	b.args = append(b.args, a)
	return b
}

func (b *Builder) addRange(t rtcore.RangeType, count, baseRegister, space, tableOffset uint32) *Builder {
	if count == 0 {
		b.fail(fmt.Errorf("%w: %s range at register %d", ErrEmptyRange, t, baseRegister))
		return b
	}
	b.ranges = append(b.ranges, rtcore.DescriptorRange{
		Type:                t,
		NumDescriptors:      count,
		BaseShaderRegister:  baseRegister,
		RegisterSpace:       space,
		OffsetInDescriptors: tableOffset,
	})
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build orders the declared arguments, compiles the signature on device and
// returns the resulting layout.
//
// Returns an error if a declaration was invalid, or a *CompilationError if
// the device rejected the signature.
func (b *Builder) Build(device rtcore.RaytracingDevice) (*Layout, error) {
	if b.err != nil {
		return nil, b.err
	}
	if device == nil {
		return nil, ErrNilDevice
	}

	args := b.ordered()
	desc := &rtcore.SignatureDesc{
		Label:      b.label,
		Flags:      b.flags,
		Parameters: make([]rtcore.Parameter, len(args)),
	}
	for i, a := range args {
		desc.Parameters[i] = a.parameter()
		if a.Kind == rtcore.ParameterDescriptorTable {
			desc.Parameters[i].Ranges = slices.Clone(b.ranges)
		}
	}

	sig, err := device.CreateSignature(desc)
	if err != nil {
		return nil, &CompilationError{Label: b.label, Diagnostic: err.Error(), Err: err}
	}
	return newLayout(b.label, b.flags, sig, args), nil
}

// ordered returns the arguments in final order: constants first, then
// descriptors, each group in declaration order, then the descriptor table.
func (b *Builder) ordered() []Argument {
	args := make([]Argument, 0, len(b.args)+1)
	for _, a := range b.args {
		if a.Kind == rtcore.ParameterConstants {
			args = append(args, a)
		}
	}
	for _, a := range b.args {
		if a.Kind != rtcore.ParameterConstants {
			args = append(args, a)
		}
	}
	if len(b.ranges) > 0 {
		args = append(args, Argument{Name: DescriptorTableArgument, Kind: rtcore.ParameterDescriptorTable})
	}
	return args
}

func newLayout(label string, flags rtcore.SignatureFlags, sig rtcore.Signature, args []Argument) *Layout {
	l := &Layout{
		label:     label,
		flags:     flags,
		signature: sig,
		args:      args,
		index:     make(map[string]int, len(args)),
	}
	log := raytrace.Logger()
	offset := uint64(rtcore.ShaderIdentifierSize)
	for i := range l.args {
		a := &l.args[i]
		a.Offset = offset
		a.Size = argumentSize(a)
		offset += a.Size
		l.index[a.Name] = i
		log.Debug("signature: argument placed",
			"label", label, "name", a.Name, "kind", a.Kind, "offset", a.Offset, "size", a.Size)
	}
	l.argumentSize = offset - rtcore.ShaderIdentifierSize
	return l
}

// argumentSize is the number of record bytes an argument occupies.
func argumentSize(a *Argument) uint64 {
	if a.Kind == rtcore.ParameterConstants {
		return rtcore.AlignUp(uint64(a.ValueCount)*4, rtcore.DescriptorHandleSize)
	}
	return rtcore.DescriptorHandleSize
}
