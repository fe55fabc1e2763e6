package accel

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

// postBuildInfoSize is the size of a compacted-size query result.
const postBuildInfoSize = 8

// Triangles describes an indexed triangle mesh of float32x3 positions and
// uint32 indices. A nil index buffer describes an unindexed triangle list.
// A nil vertex buffer yields an empty geometry that NewBottomLevel rejects.
func Triangles(vertices, indices rtcore.Buffer, flags rtcore.GeometryFlags) rtcore.GeometryDesc {
	const vertexStride = 3 * 4
	g := rtcore.GeometryDesc{
		Type:  rtcore.GeometryTriangles,
		Flags: flags,
		Triangles: rtcore.TrianglesDesc{
			VertexStride: vertexStride,
			VertexFormat: rtcore.VertexFormatFloat32x3,
		},
	}
	if vertices == nil {
		return g
	}
	g.Triangles.VertexBuffer = vertices.GPUAddress()
	g.Triangles.VertexCount = uint32(vertices.Size() / vertexStride)
	if indices != nil {
		g.Triangles.IndexBuffer = indices.GPUAddress()
		g.Triangles.IndexCount = uint32(indices.Size() / 4)
		g.Triangles.IndexFormat = rtcore.IndexFormatUint32
	}
	return g
}

// BottomLevel is a bottom-level acceleration structure over triangle
// geometry.
type BottomLevel struct {
	opts       options
	geometries []rtcore.GeometryDesc
	state      State

	buffers
	info      rtcore.Buffer // compacted-size query destination
	readback  rtcore.Buffer // host-readable copy of info
	compacted rtcore.Buffer
}

// NewBottomLevel returns an unbuilt bottom-level structure over geometries.
func NewBottomLevel(geometries []rtcore.GeometryDesc, opts ...Option) (*BottomLevel, error) {
	if len(geometries) == 0 {
		return nil, ErrNoGeometry
	}
	for i, g := range geometries {
		if g.Type == rtcore.GeometryTriangles && (g.Triangles.VertexBuffer == 0 || g.Triangles.VertexCount == 0) {
			return nil, fmt.Errorf("%w: geometry %d has no vertices", ErrNoGeometry, i)
		}
	}
	o := newOptions(rtcore.BuildFlagNone, opts)
	if o.label == "" {
		o.label = "blas"
	}
	return &BottomLevel{opts: o, geometries: slices.Clone(geometries)}, nil
}

// State returns the lifecycle state.
func (b *BottomLevel) State() State { return b.state }

// Flags returns the build flags.
func (b *BottomLevel) Flags() rtcore.BuildFlags { return b.opts.flags }

// TriangleCount returns the number of triangles over all geometries.
func (b *BottomLevel) TriangleCount() uint64 {
	var n uint64
	for _, g := range b.geometries {
		if g.Type != rtcore.GeometryTriangles {
			continue
		}
		if g.Triangles.IndexFormat != rtcore.IndexFormatNone {
			n += uint64(g.Triangles.IndexCount) / 3
		} else {
			n += uint64(g.Triangles.VertexCount) / 3
		}
	}
	return n
}

func (b *BottomLevel) inputs() rtcore.BuildInputs {
	return rtcore.BuildInputs{
		Type:       rtcore.BottomLevel,
		Flags:      b.opts.flags,
		Geometries: b.geometries,
	}
}

// EnqueueBuild allocates the build memory and records the build, the
// compacted-size query and its copy to host-readable memory.
func (b *BottomLevel) EnqueueBuild(device rtcore.Device, rec rtcore.Recorder) error {
	if b.state != StateUnbuilt {
		return invalidState("EnqueueBuild", b.state)
	}
	inputs := b.inputs()
	bufs, err := allocate(device, &inputs, b.opts.label)
	if err != nil {
		return err
	}

	info, err := device.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        b.opts.label + " post-build info",
		Size:         postBuildInfoSize,
		Usage:        gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
		InitialState: rtcore.ResourceStateUnorderedAccess,
	})
	if err != nil {
		bufs.release()
		return fmt.Errorf("accel: allocating post-build info: %w", err)
	}
	readback, err := device.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        b.opts.label + " post-build readback",
		Size:         postBuildInfoSize,
		Usage:        gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		InitialState: rtcore.ResourceStateCopyDest,
	})
	if err != nil {
		info.Destroy()
		bufs.release()
		return fmt.Errorf("accel: allocating post-build readback: %w", err)
	}

	b.buffers, b.info, b.readback = bufs, info, readback
	rec.BuildAccelerationStructure(&rtcore.BuildDesc{
		Inputs:      inputs,
		DestData:    b.result.GPUAddress(),
		ScratchData: b.scratch.GPUAddress(),
	}, []rtcore.PostBuildInfoDesc{{
		Type: rtcore.PostBuildInfoCompactedSize,
		Dest: info.GPUAddress(),
	}})
	rec.Barrier(
		rtcore.UAVBarrier(b.result),
		rtcore.TransitionBarrier(info, rtcore.ResourceStateUnorderedAccess, rtcore.ResourceStateCopySource),
	)
	rec.CopyBuffer(readback, info)

	b.state = StateBuilding
	return nil
}

// EnqueueCompaction reads back the compacted size and records a compacting
// copy into a buffer of that size. The build's GPU work must have completed.
// Without BuildFlagAllowCompaction it does nothing.
func (b *BottomLevel) EnqueueCompaction(device rtcore.Device, rec rtcore.Recorder) error {
	if b.state != StateBuilding {
		return invalidState("EnqueueCompaction", b.state)
	}
	log := raytrace.Logger()
	if !b.opts.flags.Has(rtcore.BuildFlagAllowCompaction) {
		log.Warn("accel: compaction requested for a build without the compaction flag", "label", b.opts.label)
		return nil
	}

	size, err := b.readCompactedSize()
	if err != nil {
		return err
	}
	log.Debug("accel: compacted size", "label", b.opts.label, "bytes", size, "was", b.result.Size())

	compacted, err := device.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        b.opts.label + " compacted",
		Size:         size,
		Usage:        gputypes.BufferUsageStorage,
		InitialState: rtcore.ResourceStateAccelerationStructure,
	})
	if err != nil {
		return fmt.Errorf("accel: allocating compacted result: %w", err)
	}
	b.compacted = compacted
	rec.CopyAccelerationStructure(compacted.GPUAddress(), b.result.GPUAddress(), rtcore.CopyModeCompact)
	rec.Barrier(rtcore.UAVBarrier(compacted))

	b.state = StateCompacting
	return nil
}

func (b *BottomLevel) readCompactedSize() (uint64, error) {
	data, err := b.readback.Map()
	if err != nil {
		return 0, fmt.Errorf("accel: mapping post-build readback: %w", err)
	}
	defer b.readback.Unmap()
	if len(data) < postBuildInfoSize {
		return 0, fmt.Errorf("%w: readback holds %d bytes", ErrCompactedSize, len(data))
	}
	size := rtcore.AlignUp(binary.LittleEndian.Uint64(data), rtcore.AccelerationStructureAlignment)
	if size == 0 || size > b.result.Size() {
		return 0, fmt.Errorf("%w: %d bytes for a %d byte structure", ErrCompactedSize, size, b.result.Size())
	}
	return size, nil
}

// Finalize releases the scratch and post-build buffers. If a compaction was
// recorded, the compacted buffer replaces the original result. The recorded
// work must have completed.
func (b *BottomLevel) Finalize() error {
	if b.state != StateBuilding && b.state != StateCompacting {
		return invalidState("Finalize", b.state)
	}
	if b.compacted != nil {
		b.result.Destroy()
		b.result, b.compacted = b.compacted, nil
	}
	destroy(&b.scratch)
	destroy(&b.info)
	destroy(&b.readback)
	b.state = StateReady
	return nil
}

// Result returns the result buffer, nil before EnqueueBuild.
func (b *BottomLevel) Result() rtcore.Buffer { return b.result }

// GPUAddress returns the address of the result, or 0 before EnqueueBuild.
func (b *BottomLevel) GPUAddress() uint64 {
	if b.result == nil {
		return 0
	}
	return b.result.GPUAddress()
}

// ResultSize returns the size of the result buffer.
func (b *BottomLevel) ResultSize() uint64 {
	if b.result == nil {
		return 0
	}
	return b.result.Size()
}

// ScratchSize returns the size of the scratch buffer, 0 once finalized.
func (b *BottomLevel) ScratchSize() uint64 {
	if b.scratch == nil {
		return 0
	}
	return b.scratch.Size()
}

// Destroy releases every buffer the build owns. Geometry buffers belong to
// the caller.
func (b *BottomLevel) Destroy() {
	b.release()
	destroy(&b.info)
	destroy(&b.readback)
	destroy(&b.compacted)
}
