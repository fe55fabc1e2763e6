package pipeline

import (
	"fmt"
	"slices"

	"github.com/gogpu/raytrace/rtcore"
	"github.com/gogpu/raytrace/shader"
	"github.com/gogpu/raytrace/signature"
)

// HitGroup names the shaders run when a ray hits geometry.
type HitGroup struct {
	// Name is the export name of the hit group.
	Name string

	// Type selects triangle or procedural geometry.
	Type rtcore.HitGroupType

	// ClosestHit is the closest hit shader export.
	ClosestHit string

	// AnyHit is the optional any hit shader export.
	AnyHit string

	// Intersection is the intersection shader export, required for
	// procedural hit groups.
	Intersection string
}

type payloadConfig struct {
	shaders          []string
	maxPayloadSize   uint32
	maxAttributeSize uint32
}

type layoutAssociation struct {
	shaders []string
	layout  *signature.Layout
}

// options holds the builder configuration set by Option.
type options struct {
	label        string
	legacySizing bool
}

// Option configures a Builder.
type Option func(*options)

// WithLabel sets the debug label of the pipeline and its shader table.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithLegacyRecordSizing sizes every shader record from the ray generation
// shader's layout instead of each record's own layout. Tables built this
// way match content laid out by older tools.
func WithLegacyRecordSizing() Option {
	return func(o *options) {
		o.legacySizing = true
	}
}

// Builder accumulates the configuration of one raytracing pipeline.
//
// Methods return the builder for chaining. The first misuse is kept and
// reported by Build.
type Builder struct {
	opts options

	libraries    []*shader.Library
	rayGen       string
	missShaders  []string
	missSet      bool
	hitGroups    [][]HitGroup
	payloads     []payloadConfig
	locals       []layoutAssociation
	global       *signature.Layout
	maxRecursion uint32

	err error
}

// NewBuilder returns an empty pipeline builder with a recursion depth of 1.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{maxRecursion: 1}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// AddShaderLibrary imports a compiled library.
func (b *Builder) AddShaderLibrary(lib *shader.Library) *Builder {
	if lib == nil {
		b.fail(fmt.Errorf("%w: library", ErrNilArgument))
		return b
	}
	b.libraries = append(b.libraries, lib)
	return b
}

// SetRayGen sets the ray generation shader. A pipeline has exactly one.
func (b *Builder) SetRayGen(name string) *Builder {
	if b.rayGen != "" {
		b.fail(fmt.Errorf("%w: %q, then %q", ErrRayGenAlreadySet, b.rayGen, name))
		return b
	}
	b.rayGen = name
	return b
}

// SetMissShader sets a single miss shader.
func (b *Builder) SetMissShader(name string) *Builder {
	return b.AddMissShaders(name)
}

// AddMissShaders sets the miss shaders, one per ray type in ray type order.
func (b *Builder) AddMissShaders(names ...string) *Builder {
	if b.missSet {
		b.fail(ErrMissShadersAlreadySet)
		return b
	}
	b.missSet = true
	b.missShaders = slices.Clone(names)
	return b
}

// AddHitGroup adds a hit group row holding a single ray type.
func (b *Builder) AddHitGroup(hg HitGroup) *Builder {
	return b.AddHitGroups(hg)
}

// AddHitGroups adds a row of hit groups, one per ray type in ray type order.
func (b *Builder) AddHitGroups(row ...HitGroup) *Builder {
	b.hitGroups = append(b.hitGroups, slices.Clone(row))
	return b
}

// ConfigureShaderPayload sets the maximum payload and intersection
// attribute sizes, in bytes, of the named shaders.
func (b *Builder) ConfigureShaderPayload(shaders []string, maxPayloadSize, maxAttributeSize uint32) *Builder {
	if len(shaders) == 0 {
		b.fail(fmt.Errorf("%w: payload config", ErrEmptyAssociation))
		return b
	}
	b.payloads = append(b.payloads, payloadConfig{
		shaders:          slices.Clone(shaders),
		maxPayloadSize:   maxPayloadSize,
		maxAttributeSize: maxAttributeSize,
	})
	return b
}

// SetMaxRecursion sets the maximum trace recursion depth.
func (b *Builder) SetMaxRecursion(depth uint32) *Builder {
	b.maxRecursion = depth
	return b
}

// SetShaderArgumentLayout binds a local layout to the named shaders.
func (b *Builder) SetShaderArgumentLayout(shaders []string, layout *signature.Layout) *Builder {
	switch {
	case layout == nil:
		b.fail(fmt.Errorf("%w: local layout", ErrNilArgument))
	case !layout.IsLocal():
		b.fail(fmt.Errorf("%w: %q is global", ErrLayoutScope, layout.Label()))
	case len(shaders) == 0:
		b.fail(fmt.Errorf("%w: layout %q", ErrEmptyAssociation, layout.Label()))
	default:
		b.locals = append(b.locals, layoutAssociation{shaders: slices.Clone(shaders), layout: layout})
	}
	return b
}

// SetGlobalArgumentLayout sets the layout shared by every shader.
func (b *Builder) SetGlobalArgumentLayout(layout *signature.Layout) *Builder {
	switch {
	case layout == nil:
		b.fail(fmt.Errorf("%w: global layout", ErrNilArgument))
	case layout.IsLocal():
		b.fail(fmt.Errorf("%w: %q is local", ErrLayoutScope, layout.Label()))
	default:
		b.global = layout
	}
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates the configuration, creates the pipeline state on device
// and lays out its shader record table.
func (b *Builder) Build(device rtcore.Device) (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	if device == nil {
		return nil, fmt.Errorf("%w: device", ErrNilArgument)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	desc, err := b.graph()
	if err != nil {
		return nil, err
	}
	state, err := device.CreatePipelineState(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineCreation, err)
	}

	p, err := newPipeline(device, state, desc, b)
	if err != nil {
		state.Destroy()
		return nil, err
	}
	return p, nil
}

// rayTypes returns the number of hit groups per row.
func (b *Builder) rayTypes() int {
	if len(b.hitGroups) == 0 {
		return 0
	}
	return len(b.hitGroups[0])
}

func (b *Builder) validate() error {
	if b.rayGen == "" {
		return ErrMissingRayGen
	}

	rayTypes := b.rayTypes()
	for i, row := range b.hitGroups {
		if len(row) != rayTypes {
			return fmt.Errorf("%w: row %d has %d hit groups, row 0 has %d",
				ErrInconsistentHitGroups, i, len(row), rayTypes)
		}
	}
	if len(b.missShaders) > 0 && len(b.missShaders) != rayTypes {
		return fmt.Errorf("%w: %d miss shaders, %d ray types",
			ErrMissCountMismatch, len(b.missShaders), rayTypes)
	}
	if rayTypes >= rtcore.MaxRayTypes || len(b.hitGroups) >= rtcore.MaxRayTypes {
		return fmt.Errorf("%w: %d ray types in %d rows", ErrTooManyRayTypes, rayTypes, len(b.hitGroups))
	}

	return b.validateExports()
}

// validateExports checks that every shader name resolves to a library
// export or a declared hit group.
func (b *Builder) validateExports() error {
	exported := func(name string) bool {
		for _, lib := range b.libraries {
			if lib.HasExport(name) {
				return true
			}
		}
		return false
	}

	hitGroups := make(map[string]struct{})
	for _, row := range b.hitGroups {
		for _, hg := range row {
			if _, dup := hitGroups[hg.Name]; dup || exported(hg.Name) {
				return fmt.Errorf("%w: %q", ErrDuplicateHitGroup, hg.Name)
			}
			hitGroups[hg.Name] = struct{}{}

			if hg.Type == rtcore.HitGroupProcedural && hg.Intersection == "" {
				return fmt.Errorf("%w: %q", ErrMissingIntersection, hg.Name)
			}
			for _, imp := range []string{hg.ClosestHit, hg.AnyHit, hg.Intersection} {
				if imp != "" && !exported(imp) {
					return fmt.Errorf("%w: %q imported by hit group %q", ErrUnknownExport, imp, hg.Name)
				}
			}
		}
	}

	known := func(name string) bool {
		_, ok := hitGroups[name]
		return ok || exported(name)
	}
	if !exported(b.rayGen) {
		return fmt.Errorf("%w: ray generation shader %q", ErrUnknownExport, b.rayGen)
	}
	for _, m := range b.missShaders {
		if !known(m) {
			return fmt.Errorf("%w: miss shader %q", ErrUnknownExport, m)
		}
	}
	for _, pc := range b.payloads {
		for _, s := range pc.shaders {
			if !known(s) {
				return fmt.Errorf("%w: %q in payload config", ErrUnknownExport, s)
			}
		}
	}
	for _, la := range b.locals {
		for _, s := range la.shaders {
			if !known(s) {
				return fmt.Errorf("%w: %q bound to layout %q", ErrUnknownExport, s, la.layout.Label())
			}
		}
	}
	return nil
}
