package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
	"github.com/gogpu/raytrace/signature"
)

// Pipeline is a compiled raytracing pipeline and its shader record table.
//
// The table is an upload buffer holding, in order, the ray generation
// record, the miss records and the hit group records. Identifiers are
// written at creation; argument bytes are left zeroed for the caller.
type Pipeline struct {
	label  string
	state  rtcore.PipelineState
	desc   *rtcore.PipelineStateDesc
	global *signature.Layout
	locals []layoutAssociation

	rayGen      string
	missShaders []string
	hitGroups   []string

	stride     uint64
	missOffset uint64
	hitOffset  uint64
	offsets    map[string]uint64
	tableSize  uint64
	table      rtcore.Buffer
	mapping    []byte
}

func newPipeline(alloc rtcore.Allocator, state rtcore.PipelineState, desc *rtcore.PipelineStateDesc, b *Builder) (*Pipeline, error) {
	p := &Pipeline{
		label:       b.opts.label,
		state:       state,
		desc:        desc,
		global:      b.global,
		locals:      b.locals,
		rayGen:      b.rayGen,
		missShaders: b.missShaders,
		offsets:     make(map[string]uint64),
	}
	for _, row := range b.hitGroups {
		for _, hg := range row {
			p.hitGroups = append(p.hitGroups, hg.Name)
		}
	}
	p.stride = p.recordStride(b.opts.legacySizing)

	records := p.records()
	size := p.stride * uint64(len(records))
	table, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        p.label + " shader table",
		Size:         size,
		Usage:        gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
		InitialState: rtcore.ResourceStateGenericRead,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: allocating shader table: %w", err)
	}
	p.table = table
	p.tableSize = size

	p.missOffset = p.stride
	p.hitOffset = p.stride * uint64(1+len(p.missShaders))
	for i, name := range records {
		// A name used by several slots resolves to its first slot.
		if _, seen := p.offsets[name]; !seen {
			p.offsets[name] = p.stride * uint64(i)
		}
	}

	if err := p.writeIdentifiers(records); err != nil {
		table.Destroy()
		return nil, err
	}
	raytrace.Logger().Debug("pipeline: shader table",
		"label", p.label,
		"records", len(records),
		"stride", p.stride,
		"bytes", size)
	return p, nil
}

// records returns the shader names in table order.
func (p *Pipeline) records() []string {
	names := make([]string, 0, 1+len(p.missShaders)+len(p.hitGroups))
	names = append(names, p.rayGen)
	names = append(names, p.missShaders...)
	names = append(names, p.hitGroups...)
	return names
}

// recordStride is the aligned size of the largest record. In legacy mode
// every record is sized from the ray generation shader's layout.
func (p *Pipeline) recordStride(legacy bool) uint64 {
	var stride uint64
	for _, name := range p.records() {
		sized := name
		if legacy {
			sized = p.rayGen
		}
		size := uint64(rtcore.ShaderIdentifierSize)
		if l := p.ShaderSignature(sized); l != nil {
			size = l.TotalSize()
		}
		stride = max(stride, rtcore.AlignUp(size, rtcore.ShaderRecordAlignment))
	}
	return stride
}

func (p *Pipeline) writeIdentifiers(records []string) error {
	data, err := p.table.Map()
	if err != nil {
		return fmt.Errorf("pipeline: mapping shader table: %w", err)
	}
	defer p.table.Unmap()

	for i, name := range records {
		id, err := p.state.ShaderIdentifier(name)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidIdentifier, name, err)
		}
		if len(id) != rtcore.ShaderIdentifierSize {
			return fmt.Errorf("%w: %q is %d bytes", ErrInvalidIdentifier, name, len(id))
		}
		copy(data[p.stride*uint64(i):], id)
	}
	return nil
}

// Label returns the debug label.
func (p *Pipeline) Label() string { return p.label }

// State returns the device pipeline state object.
func (p *Pipeline) State() rtcore.PipelineState { return p.state }

// Graph returns the sub-object graph the pipeline was created from.
func (p *Pipeline) Graph() *rtcore.PipelineStateDesc { return p.desc }

// GlobalSignature returns the global layout, or nil if none was set.
func (p *Pipeline) GlobalSignature() *signature.Layout { return p.global }

// ShaderSignature returns the local layout bound to shader, or nil if the
// shader has none. The first association naming the shader wins.
func (p *Pipeline) ShaderSignature(shader string) *signature.Layout {
	for _, la := range p.locals {
		for _, s := range la.shaders {
			if s == shader {
				return la.layout
			}
		}
	}
	return nil
}

// RecordStride returns the size of every shader record.
func (p *Pipeline) RecordStride() uint64 { return p.stride }

// TableSize returns the size of the shader record table in bytes.
func (p *Pipeline) TableSize() uint64 { return p.tableSize }

// ShaderTable returns the shader record table buffer.
func (p *Pipeline) ShaderTable() rtcore.Buffer { return p.table }

// RecordOffset returns the table offset of the record of shader. A shader
// that fills several slots, such as a miss shader shared by two ray types,
// reports its first slot.
func (p *Pipeline) RecordOffset(shader string) (uint64, bool) {
	off, ok := p.offsets[shader]
	return off, ok
}

// Map maps the shader table for writing records.
func (p *Pipeline) Map() error {
	if p.mapping != nil {
		return ErrTableMapped
	}
	data, err := p.table.Map()
	if err != nil {
		return fmt.Errorf("pipeline: mapping shader table: %w", err)
	}
	p.mapping = data
	return nil
}

// Unmap releases the mapping created by Map.
func (p *Pipeline) Unmap() {
	if p.mapping == nil {
		return
	}
	p.table.Unmap()
	p.mapping = nil
}

// ShaderRecord returns the writable bytes of the record of shader. The
// first ShaderIdentifierSize bytes hold the identifier; arguments follow at
// the offsets reported by the shader's layout. A shader filling several
// slots returns its first slot. The slice is valid until Unmap.
func (p *Pipeline) ShaderRecord(shader string) ([]byte, error) {
	off, ok := p.offsets[shader]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShaderRecord, shader)
	}
	if p.mapping == nil {
		return nil, ErrTableNotMapped
	}
	return p.mapping[off : off+p.stride : off+p.stride], nil
}

// DispatchRays returns the trace-rays parameters for a width x height
// dispatch. Miss and hit group regions span all of their records.
func (p *Pipeline) DispatchRays(width, height uint32) rtcore.DispatchRaysDesc {
	base := p.table.GPUAddress()
	return rtcore.DispatchRaysDesc{
		RayGeneration: rtcore.AddressRange{
			StartAddress: base,
			Size:         p.stride,
		},
		Miss: rtcore.AddressRangeAndStride{
			StartAddress: base + p.missOffset,
			Size:         p.stride * uint64(len(p.missShaders)),
			Stride:       p.stride,
		},
		HitGroup: rtcore.AddressRangeAndStride{
			StartAddress: base + p.hitOffset,
			Size:         p.stride * uint64(len(p.hitGroups)),
			Stride:       p.stride,
		},
		Width:  width,
		Height: height,
		Depth:  1,
	}
}

// Destroy releases the shader table and the pipeline state. Layouts are
// owned by the caller and are not destroyed.
func (p *Pipeline) Destroy() {
	p.Unmap()
	if p.table != nil {
		p.table.Destroy()
		p.table = nil
	}
	if p.state != nil {
		p.state.Destroy()
		p.state = nil
	}
}
