package rtcore

import "fmt"

// ParameterType identifies the kind of a signature parameter.
type ParameterType uint32

// Signature parameter types.
const (
	// ParameterConstants is a block of inline 32-bit constants.
	ParameterConstants ParameterType = iota

	// ParameterSRV is a shader resource view bound by GPU address.
	ParameterSRV

	// ParameterUAV is an unordered access view bound by GPU address.
	ParameterUAV

	// ParameterCBV is a constant buffer view bound by GPU address.
	ParameterCBV

	// ParameterDescriptorTable references a range set in a descriptor heap.
	ParameterDescriptorTable
)

// String returns the string representation of ParameterType.
func (t ParameterType) String() string {
	switch t {
	case ParameterConstants:
		return "Constants"
	case ParameterSRV:
		return "SRV"
	case ParameterUAV:
		return "UAV"
	case ParameterCBV:
		return "CBV"
	case ParameterDescriptorTable:
		return "DescriptorTable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// RangeType identifies the kind of descriptors in a descriptor range.
type RangeType uint32

// Descriptor range types.
const (
	RangeSRV RangeType = iota
	RangeUAV
	RangeCBV
	RangeSampler
)

// String returns the string representation of RangeType.
func (t RangeType) String() string {
	switch t {
	case RangeSRV:
		return "SRV"
	case RangeUAV:
		return "UAV"
	case RangeCBV:
		return "CBV"
	case RangeSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// SignatureFlags modifies how a signature is interpreted.
type SignatureFlags uint32

// Signature flags.
const (
	// SignatureFlagNone marks a global signature.
	SignatureFlagNone SignatureFlags = 0

	// SignatureFlagLocal marks a local signature whose arguments live in
	// shader records.
	SignatureFlagLocal SignatureFlags = 1 << 0
)

// DescriptorRange describes a contiguous run of descriptors in a table.
type DescriptorRange struct {
	Type               RangeType
	NumDescriptors     uint32
	BaseShaderRegister uint32
	RegisterSpace      uint32
	// OffsetInDescriptors is the offset from the table start, in descriptors.
	OffsetInDescriptors uint32
}

// Parameter is one entry of a SignatureDesc.
type Parameter struct {
	Type           ParameterType
	ShaderRegister uint32
	RegisterSpace  uint32

	// Num32BitValues is the number of constants for ParameterConstants.
	Num32BitValues uint32

	// Ranges are the ranges of a ParameterDescriptorTable.
	Ranges []DescriptorRange
}

// SignatureDesc is the native description submitted to CreateSignature.
type SignatureDesc struct {
	Label      string
	Flags      SignatureFlags
	Parameters []Parameter
}
