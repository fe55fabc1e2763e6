package accel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/raytrace/rtcore"
)

// InstanceFlags tune how rays interact with one instance.
type InstanceFlags uint8

// Instance flags.
const (
	InstanceFlagNone                          InstanceFlags = 0
	InstanceFlagTriangleCullDisable           InstanceFlags = 1 << 0
	InstanceFlagTriangleFrontCounterClockwise InstanceFlags = 1 << 1
	InstanceFlagForceOpaque                   InstanceFlags = 1 << 2
	InstanceFlagForceNonOpaque                InstanceFlags = 1 << 3
)

// maxInstanceField is the largest value of the 24-bit instance fields.
const maxInstanceField = 1<<24 - 1

// Instance places a bottom-level structure in a top-level one.
type Instance struct {
	// Transform is a row-major 3x4 object-to-world matrix.
	Transform [3][4]float32

	// ID is the 24-bit value returned by InstanceID() in shaders.
	ID uint32

	// Mask is ANDed with the ray's mask; zero makes the instance invisible.
	Mask uint8

	// HitGroupOffset is the 24-bit offset into the hit group table.
	HitGroupOffset uint32

	Flags InstanceFlags

	// BottomLevel is the GPU address of the bottom-level structure.
	BottomLevel uint64
}

// Identity is the identity transform.
var Identity = [3][4]float32{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
}

// EncodeInstances returns the device layout of instances, InstanceDescSize
// bytes each.
func EncodeInstances(instances []Instance) ([]byte, error) {
	out := make([]byte, len(instances)*rtcore.InstanceDescSize)
	for i := range instances {
		if err := encodeInstance(out[i*rtcore.InstanceDescSize:], &instances[i]); err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
	}
	return out, nil
}

func encodeInstance(dst []byte, in *Instance) error {
	if in.ID > maxInstanceField {
		return fmt.Errorf("%w: id %d exceeds 24 bits", ErrInstanceField, in.ID)
	}
	if in.HitGroupOffset > maxInstanceField {
		return fmt.Errorf("%w: hit group offset %d exceeds 24 bits", ErrInstanceField, in.HitGroupOffset)
	}
	le := binary.LittleEndian
	for r := range 3 {
		for c := range 4 {
			le.PutUint32(dst[(r*4+c)*4:], math.Float32bits(in.Transform[r][c]))
		}
	}
	le.PutUint32(dst[48:], in.ID|uint32(in.Mask)<<24)
	le.PutUint32(dst[52:], in.HitGroupOffset|uint32(in.Flags)<<24)
	le.PutUint64(dst[56:], in.BottomLevel)
	return nil
}

// WriteInstances encodes instances into the host-writable buffer buf.
func WriteInstances(buf rtcore.Buffer, instances []Instance) error {
	data, err := EncodeInstances(instances)
	if err != nil {
		return err
	}
	if uint64(len(data)) > buf.Size() {
		return fmt.Errorf("%w: %d bytes for %d instances", ErrInstanceBufferSize, buf.Size(), len(instances))
	}
	mapped, err := buf.Map()
	if err != nil {
		return fmt.Errorf("accel: mapping instance buffer: %w", err)
	}
	copy(mapped, data)
	buf.Unmap()
	return nil
}

// UploadInstances creates an upload buffer holding instances.
func UploadInstances(alloc rtcore.Allocator, label string, instances []Instance) (rtcore.Buffer, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        label,
		Size:         uint64(len(instances)) * rtcore.InstanceDescSize,
		Usage:        gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
		InitialState: rtcore.ResourceStateGenericRead,
	})
	if err != nil {
		return nil, fmt.Errorf("accel: allocating instance buffer: %w", err)
	}
	if err := WriteInstances(buf, instances); err != nil {
		buf.Destroy()
		return nil, err
	}
	return buf, nil
}
