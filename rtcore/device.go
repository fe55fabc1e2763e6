package rtcore

import (
	"github.com/gogpu/gputypes"
)

// Buffer is a linear GPU allocation.
//
// Host-visible buffers (created with MapWrite or MapRead usage) can be
// mapped. The slice returned by Map is valid until Unmap or Destroy.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// GPUAddress returns the GPU virtual address of the first byte.
	GPUAddress() uint64

	// Map maps the whole buffer into host memory.
	Map() ([]byte, error)

	// Unmap releases a mapping created by Map. Writes made through the
	// mapped slice become visible to the GPU.
	Unmap()

	// Destroy releases the allocation.
	Destroy()
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used. MapWrite selects an
	// upload (host-writable) heap, MapRead a readback heap, anything else
	// device-local memory. Storage usage allows unordered access.
	Usage gputypes.BufferUsage

	// InitialState is the state the buffer is created in.
	InitialState ResourceState
}

// HostWritable reports whether buffers with this usage are CPU-writable.
func (d *BufferDescriptor) HostWritable() bool {
	return d.Usage.Contains(gputypes.BufferUsageMapWrite)
}

// HostReadable reports whether buffers with this usage are CPU-readable.
func (d *BufferDescriptor) HostReadable() bool {
	return d.Usage.Contains(gputypes.BufferUsageMapRead)
}

// Allocator creates GPU buffers.
type Allocator interface {
	// CreateBuffer allocates a buffer. Contents are zero-initialized.
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
}

// Signature is a compiled root or local signature.
type Signature interface {
	// Destroy releases the signature.
	Destroy()
}

// PipelineState is a compiled raytracing pipeline state object.
type PipelineState interface {
	// ShaderIdentifier returns the opaque identifier of an exported shader or
	// hit group. The identifier is ShaderIdentifierSize bytes long.
	ShaderIdentifier(export string) ([]byte, error)

	// Destroy releases the pipeline state.
	Destroy()
}

// RaytracingDevice is the raytracing-specific part of a device.
type RaytracingDevice interface {
	// CreateSignature validates and compiles a signature description.
	// Rejections carry the driver diagnostic in the error text.
	CreateSignature(desc *SignatureDesc) (Signature, error)

	// CreatePipelineState compiles a sub-object graph into a pipeline state.
	CreatePipelineState(desc *PipelineStateDesc) (PipelineState, error)

	// AccelerationStructurePrebuildInfo reports the memory an acceleration
	// structure build over inputs may need.
	AccelerationStructurePrebuildInfo(inputs *BuildInputs) (PrebuildInfo, error)
}

// Device is everything the builders need from a GPU device.
type Device interface {
	Allocator
	RaytracingDevice
}

// Recorder enqueues GPU work. Recorded commands execute asynchronously after
// submission, in recording order, separated only by explicit barriers.
type Recorder interface {
	// BuildAccelerationStructure records an acceleration structure build.
	// Each post-build info description receives data once the build completes.
	BuildAccelerationStructure(desc *BuildDesc, postBuild []PostBuildInfoDesc)

	// CopyAccelerationStructure records a copy between acceleration structures.
	CopyAccelerationStructure(dst, src uint64, mode CopyMode)

	// Barrier records resource barriers.
	Barrier(barriers ...Barrier)

	// CopyBuffer records a full copy of src into dst.
	CopyBuffer(dst, src Buffer)
}

// composedDevice joins an allocator with a raytracing device.
type composedDevice struct {
	Allocator
	RaytracingDevice
}

// Compose returns a Device that allocates buffers with alloc and forwards
// raytracing calls to rt. Use it when buffers come from a generic backend
// (for example backend/halalloc) and raytracing from a native one.
func Compose(alloc Allocator, rt RaytracingDevice) Device {
	return composedDevice{Allocator: alloc, RaytracingDevice: rt}
}
