package accel

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

// buffers holds the memory of one build.
type buffers struct {
	result  rtcore.Buffer
	scratch rtcore.Buffer
}

func (b *buffers) release() {
	destroy(&b.result)
	destroy(&b.scratch)
}

// destroy releases *buf, if any, and clears it.
func destroy(buf *rtcore.Buffer) {
	if *buf != nil {
		(*buf).Destroy()
		*buf = nil
	}
}

// allocate queries the build bounds of inputs and creates result and
// scratch buffers of the aligned sizes.
func allocate(device rtcore.Device, inputs *rtcore.BuildInputs, label string) (buffers, error) {
	info, err := device.AccelerationStructurePrebuildInfo(inputs)
	if err != nil {
		return buffers{}, fmt.Errorf("%w: %w", ErrPrebuildQuery, err)
	}
	if info.ResultDataMaxSize == 0 || info.ScratchDataSize == 0 {
		return buffers{}, fmt.Errorf("%w: device reported result %d bytes, scratch %d bytes",
			ErrPrebuildQuery, info.ResultDataMaxSize, info.ScratchDataSize)
	}
	resultSize := rtcore.AlignUp(info.ResultDataMaxSize, rtcore.AccelerationStructureAlignment)
	scratchSize := rtcore.AlignUp(info.ScratchDataSize, rtcore.AccelerationStructureAlignment)
	raytrace.Logger().Debug("accel: build bounds",
		"label", label,
		"type", inputs.Type,
		"result_max", resultSize,
		"scratch", scratchSize)

	var b buffers
	b.result, err = device.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        label + " result",
		Size:         resultSize,
		Usage:        gputypes.BufferUsageStorage,
		InitialState: rtcore.ResourceStateAccelerationStructure,
	})
	if err != nil {
		return buffers{}, fmt.Errorf("accel: allocating result: %w", err)
	}
	b.scratch, err = device.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        label + " scratch",
		Size:         scratchSize,
		Usage:        gputypes.BufferUsageStorage,
		InitialState: rtcore.ResourceStateUnorderedAccess,
	})
	if err != nil {
		b.release()
		return buffers{}, fmt.Errorf("accel: allocating scratch: %w", err)
	}
	return b, nil
}

func invalidState(op string, s State) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidState, op, s)
}
