package softdevice

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/gogpu/raytrace/rtcore"
)

// Device errors.
var (
	// ErrInvalidSize is returned when creating an empty buffer.
	ErrInvalidSize = errors.New("softdevice: invalid buffer size")

	// ErrUnknownExport is returned for identifiers of names the pipeline does not export.
	ErrUnknownExport = errors.New("softdevice: export not found in pipeline")
)

// baseAddress is the first synthetic GPU address handed out.
const baseAddress = 0x1_0000_0000

// Device is an in-memory rtcore.Device.
//
// The Fail* fields inject errors into the matching call. The *Func fields
// replace the default sizing model.
type Device struct {
	// FailAlloc, if set, is returned by CreateBuffer.
	FailAlloc error
	// FailSignature, if set, is returned by CreateSignature.
	FailSignature error
	// FailPipeline, if set, is returned by CreatePipelineState.
	FailPipeline error
	// FailPrebuild, if set, is returned by AccelerationStructurePrebuildInfo.
	FailPrebuild error

	// PrebuildFunc overrides the default prebuild sizing.
	PrebuildFunc func(inputs *rtcore.BuildInputs) rtcore.PrebuildInfo
	// CompactFunc maps a built structure's allocated size to its compacted size.
	CompactFunc func(resultSize uint64) uint64

	nextAddress uint64
	buffers     map[uint64]*Buffer
	built       map[uint64]uint64

	// Signatures records every accepted signature description.
	Signatures []*rtcore.SignatureDesc
	// Pipelines records every accepted pipeline description.
	Pipelines []*rtcore.PipelineStateDesc
}

// New returns an empty device.
func New() *Device {
	return &Device{
		nextAddress: baseAddress,
		buffers:     make(map[uint64]*Buffer),
		built:       make(map[uint64]uint64),
	}
}

// CreateBuffer allocates a zeroed buffer with a fresh GPU address.
func (d *Device) CreateBuffer(desc *rtcore.BufferDescriptor) (rtcore.Buffer, error) {
	if d.FailAlloc != nil {
		return nil, d.FailAlloc
	}
	if desc == nil || desc.Size == 0 {
		return nil, ErrInvalidSize
	}
	b := &Buffer{
		device:  d,
		desc:    *desc,
		address: d.nextAddress,
		data:    make([]byte, desc.Size),
		state:   desc.InitialState,
	}
	d.nextAddress = rtcore.AlignUp(d.nextAddress+desc.Size, rtcore.AccelerationStructureAlignment)
	d.buffers[b.address] = b
	return b, nil
}

func (d *Device) release(b *Buffer) {
	delete(d.buffers, b.address)
	delete(d.built, b.address)
}

// LiveBuffers returns the number of buffers not yet destroyed.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// BufferAt returns the live buffer whose memory contains address.
func (d *Device) BufferAt(address uint64) (*Buffer, bool) {
	for start, b := range d.buffers {
		if address >= start && address < start+b.desc.Size {
			return b, true
		}
	}
	return nil, false
}

// BuiltSize returns the size of the acceleration structure built at address.
func (d *Device) BuiltSize(address uint64) (uint64, bool) {
	s, ok := d.built[address]
	return s, ok
}

type signature struct {
	desc      *rtcore.SignatureDesc
	destroyed bool
}

func (s *signature) Destroy() { s.destroyed = true }

// CreateSignature validates desc and returns a signature handle.
func (d *Device) CreateSignature(desc *rtcore.SignatureDesc) (rtcore.Signature, error) {
	if d.FailSignature != nil {
		return nil, d.FailSignature
	}
	if err := validateSignature(desc); err != nil {
		return nil, err
	}
	d.Signatures = append(d.Signatures, desc)
	return &signature{desc: desc}, nil
}

// PipelineState is a compiled soft pipeline.
type PipelineState struct {
	label     string
	exports   map[string]struct{}
	destroyed bool
}

// ShaderIdentifier returns a deterministic 32-byte identifier for export.
func (p *PipelineState) ShaderIdentifier(export string) ([]byte, error) {
	if _, ok := p.exports[export]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExport, export)
	}
	return Identifier(p.label, export), nil
}

// Destroy releases the pipeline.
func (p *PipelineState) Destroy() { p.destroyed = true }

// Identifier is the identifier a soft pipeline labeled label assigns to export.
func Identifier(label, export string) []byte {
	sum := sha256.Sum256([]byte(label + "\x00" + export))
	return sum[:rtcore.ShaderIdentifierSize]
}

// CreatePipelineState validates the sub-object graph and returns a pipeline.
func (d *Device) CreatePipelineState(desc *rtcore.PipelineStateDesc) (rtcore.PipelineState, error) {
	if d.FailPipeline != nil {
		return nil, d.FailPipeline
	}
	exports, err := validatePipeline(desc)
	if err != nil {
		return nil, err
	}
	d.Pipelines = append(d.Pipelines, desc)
	return &PipelineState{label: desc.Label, exports: exports}, nil
}

// AccelerationStructurePrebuildInfo reports sizes proportional to the
// primitive count. Empty inputs report zero sizes.
func (d *Device) AccelerationStructurePrebuildInfo(inputs *rtcore.BuildInputs) (rtcore.PrebuildInfo, error) {
	if d.FailPrebuild != nil {
		return rtcore.PrebuildInfo{}, d.FailPrebuild
	}
	if d.PrebuildFunc != nil {
		return d.PrebuildFunc(inputs), nil
	}
	var prims uint64
	switch inputs.Type {
	case rtcore.BottomLevel:
		for _, g := range inputs.Geometries {
			if g.Triangles.IndexFormat != rtcore.IndexFormatNone {
				prims += uint64(g.Triangles.IndexCount) / 3
			} else {
				prims += uint64(g.Triangles.VertexCount) / 3
			}
		}
	case rtcore.TopLevel:
		prims = uint64(inputs.NumInstances)
	}
	if prims == 0 {
		return rtcore.PrebuildInfo{}, nil
	}
	return rtcore.PrebuildInfo{
		ResultDataMaxSize: 72*prims + 100,
		ScratchDataSize:   40*prims + 12,
		UpdateScratchSize: 8 * prims,
	}, nil
}

func (d *Device) compactedSize(resultSize uint64) uint64 {
	if d.CompactFunc != nil {
		return d.CompactFunc(resultSize)
	}
	return rtcore.AlignUp(resultSize/2, rtcore.AccelerationStructureAlignment)
}
