package rtcore

// AddressRange is a region of GPU memory.
type AddressRange struct {
	StartAddress uint64
	Size         uint64
}

// AddressRangeAndStride is a region of GPU memory split into equal records.
type AddressRangeAndStride struct {
	StartAddress uint64
	Size         uint64
	Stride       uint64
}

// DispatchRaysDesc is the argument of a trace-rays command.
type DispatchRaysDesc struct {
	RayGeneration AddressRange
	Miss          AddressRangeAndStride
	HitGroup      AddressRangeAndStride

	Width  uint32
	Height uint32
	Depth  uint32
}
