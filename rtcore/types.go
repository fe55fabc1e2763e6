package rtcore

import "fmt"

// Alignment and size requirements of the DXR execution model.
const (
	// ShaderIdentifierSize is the size of the opaque identifier the device
	// assigns to every exported shader or hit group.
	ShaderIdentifierSize = 32

	// ShaderRecordAlignment is the required alignment of a shader record stride.
	ShaderRecordAlignment = 32

	// ShaderTableAlignment is the required alignment of a shader table start address.
	ShaderTableAlignment = 64

	// AccelerationStructureAlignment is the required alignment of acceleration
	// structure result and scratch buffers.
	AccelerationStructureAlignment = 256

	// DescriptorHandleSize is the size of a GPU descriptor handle or a GPU
	// virtual address stored in a shader record.
	DescriptorHandleSize = 8

	// InstanceDescSize is the size of one top-level instance description.
	InstanceDescSize = 64

	// MaxRayTypes is the exclusive upper bound on ray types per pipeline.
	MaxRayTypes = 256

	// MaxRootArgumentDWords is the maximum number of 32-bit values a
	// signature may occupy.
	MaxRootArgumentDWords = 64
)

// AlignUp rounds v up to the next multiple of align, which must be a power of two.
func AlignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// ResourceState is the usage state a buffer is in on the GPU timeline.
type ResourceState uint32

// Resource states.
const (
	// ResourceStateCommon is the default state of a device-local buffer.
	ResourceStateCommon ResourceState = iota

	// ResourceStateGenericRead is the state of upload-heap buffers.
	ResourceStateGenericRead

	// ResourceStateUnorderedAccess allows shader and builder writes.
	ResourceStateUnorderedAccess

	// ResourceStateCopySource marks a buffer read by a copy.
	ResourceStateCopySource

	// ResourceStateCopyDest marks a buffer written by a copy.
	ResourceStateCopyDest

	// ResourceStateAccelerationStructure is the permanent state of
	// acceleration structure storage.
	ResourceStateAccelerationStructure
)

// String returns the string representation of ResourceState.
func (s ResourceState) String() string {
	switch s {
	case ResourceStateCommon:
		return "Common"
	case ResourceStateGenericRead:
		return "GenericRead"
	case ResourceStateUnorderedAccess:
		return "UnorderedAccess"
	case ResourceStateCopySource:
		return "CopySource"
	case ResourceStateCopyDest:
		return "CopyDest"
	case ResourceStateAccelerationStructure:
		return "AccelerationStructure"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
