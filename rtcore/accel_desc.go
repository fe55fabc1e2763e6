package rtcore

import "fmt"

// AccelerationStructureType selects bottom-level (geometry) or top-level
// (instances) structures.
type AccelerationStructureType uint32

// Acceleration structure types.
const (
	BottomLevel AccelerationStructureType = iota
	TopLevel
)

// String returns the string representation of AccelerationStructureType.
func (t AccelerationStructureType) String() string {
	switch t {
	case BottomLevel:
		return "BottomLevel"
	case TopLevel:
		return "TopLevel"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// BuildFlags tune an acceleration structure build.
type BuildFlags uint32

// Build flags.
const (
	BuildFlagNone            BuildFlags = 0
	BuildFlagAllowUpdate     BuildFlags = 1 << 0
	BuildFlagAllowCompaction BuildFlags = 1 << 1
	BuildFlagPreferFastTrace BuildFlags = 1 << 2
	BuildFlagPreferFastBuild BuildFlags = 1 << 3
	BuildFlagMinimizeMemory  BuildFlags = 1 << 4
)

// Has reports whether all bits of other are set.
func (f BuildFlags) Has(other BuildFlags) bool {
	return f&other == other
}

// GeometryFlags tune how rays interact with a geometry.
type GeometryFlags uint32

// Geometry flags.
const (
	GeometryFlagNone                        GeometryFlags = 0
	GeometryFlagOpaque                      GeometryFlags = 1 << 0
	GeometryFlagNoDuplicateAnyHitInvocation GeometryFlags = 1 << 1
)

// GeometryType selects triangle or procedural (AABB) geometry.
type GeometryType uint32

// Geometry types.
const (
	GeometryTriangles GeometryType = iota
	GeometryProcedural
)

// VertexFormat is the format of vertex positions.
type VertexFormat uint32

// Vertex formats.
const (
	VertexFormatFloat32x3 VertexFormat = iota
	VertexFormatFloat32x2
)

// IndexFormat is the format of triangle indices.
type IndexFormat uint32

// Index formats.
const (
	IndexFormatNone IndexFormat = iota
	IndexFormatUint16
	IndexFormatUint32
)

// TrianglesDesc describes indexed triangle geometry by GPU address.
type TrianglesDesc struct {
	VertexBuffer uint64
	VertexStride uint64
	VertexCount  uint32
	VertexFormat VertexFormat

	IndexBuffer uint64
	IndexCount  uint32
	IndexFormat IndexFormat

	// Transform is the GPU address of an optional 3x4 row-major transform.
	Transform uint64
}

// GeometryDesc is one geometry of a bottom-level build.
type GeometryDesc struct {
	Type      GeometryType
	Flags     GeometryFlags
	Triangles TrianglesDesc
}

// BuildInputs describe what an acceleration structure is built over.
type BuildInputs struct {
	Type  AccelerationStructureType
	Flags BuildFlags

	// Geometries are the inputs of a bottom-level build.
	Geometries []GeometryDesc

	// InstanceDescs is the GPU address of NumInstances instance
	// descriptions for a top-level build.
	InstanceDescs uint64
	NumInstances  uint32
}

// PrebuildInfo is the device-reported upper bound on build memory.
type PrebuildInfo struct {
	ResultDataMaxSize uint64
	ScratchDataSize   uint64
	UpdateScratchSize uint64
}

// BuildDesc is a recorded acceleration structure build.
type BuildDesc struct {
	Inputs      BuildInputs
	DestData    uint64
	ScratchData uint64
}

// PostBuildInfoType selects what a post-build query writes.
type PostBuildInfoType uint32

// Post-build info types.
const (
	// PostBuildInfoCompactedSize writes the compacted size as a little-endian uint64.
	PostBuildInfoCompactedSize PostBuildInfoType = iota
)

// PostBuildInfoDesc directs a post-build query result to a buffer.
type PostBuildInfoDesc struct {
	Type PostBuildInfoType
	Dest uint64
}

// CopyMode selects how CopyAccelerationStructure copies.
type CopyMode uint32

// Copy modes.
const (
	CopyModeClone CopyMode = iota
	CopyModeCompact
)

// String returns the string representation of CopyMode.
func (m CopyMode) String() string {
	switch m {
	case CopyModeClone:
		return "Clone"
	case CopyModeCompact:
		return "Compact"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// BarrierType selects the kind of a resource barrier.
type BarrierType uint32

// Barrier types.
const (
	// BarrierUAV orders unordered-access writes before later accesses.
	BarrierUAV BarrierType = iota

	// BarrierTransition moves a buffer from its current state to After.
	BarrierTransition
)

// Barrier is one resource barrier.
type Barrier struct {
	Type   BarrierType
	Buffer Buffer
	Before ResourceState
	After  ResourceState
}

// UAVBarrier returns a barrier ordering writes to buf.
func UAVBarrier(buf Buffer) Barrier {
	return Barrier{Type: BarrierUAV, Buffer: buf}
}

// TransitionBarrier returns a barrier moving buf between states.
func TransitionBarrier(buf Buffer, before, after ResourceState) Barrier {
	return Barrier{Type: BarrierTransition, Buffer: buf, Before: before, After: after}
}
