package accel

import (
	"fmt"

	"github.com/gogpu/raytrace/rtcore"
)

// TopLevel is a top-level acceleration structure over an array of
// instances. Top-level builds are not compacted.
type TopLevel struct {
	opts      options
	instances rtcore.Buffer
	count     uint32
	state     State

	buffers
}

// NewTopLevel returns an unbuilt top-level structure over count instance
// descriptions stored in instances, typically written with WriteInstances.
func NewTopLevel(instances rtcore.Buffer, count uint32, opts ...Option) (*TopLevel, error) {
	if instances == nil || count == 0 {
		return nil, ErrNoInstances
	}
	if need := uint64(count) * rtcore.InstanceDescSize; instances.Size() < need {
		return nil, fmt.Errorf("%w: %d bytes for %d instances", ErrInstanceBufferSize, instances.Size(), count)
	}
	o := newOptions(rtcore.BuildFlagPreferFastTrace, opts)
	if o.label == "" {
		o.label = "tlas"
	}
	return &TopLevel{opts: o, instances: instances, count: count}, nil
}

// State returns the lifecycle state.
func (t *TopLevel) State() State { return t.state }

// Flags returns the build flags.
func (t *TopLevel) Flags() rtcore.BuildFlags { return t.opts.flags }

// InstanceCount returns the number of instances.
func (t *TopLevel) InstanceCount() uint32 { return t.count }

// EnqueueBuild allocates the build memory and records the build followed
// by a barrier on the result.
func (t *TopLevel) EnqueueBuild(device rtcore.Device, rec rtcore.Recorder) error {
	if t.state != StateUnbuilt {
		return invalidState("EnqueueBuild", t.state)
	}
	inputs := rtcore.BuildInputs{
		Type:          rtcore.TopLevel,
		Flags:         t.opts.flags,
		InstanceDescs: t.instances.GPUAddress(),
		NumInstances:  t.count,
	}
	bufs, err := allocate(device, &inputs, t.opts.label)
	if err != nil {
		return err
	}
	t.buffers = bufs

	rec.BuildAccelerationStructure(&rtcore.BuildDesc{
		Inputs:      inputs,
		DestData:    t.result.GPUAddress(),
		ScratchData: t.scratch.GPUAddress(),
	}, nil)
	rec.Barrier(rtcore.UAVBarrier(t.result))

	t.state = StateBuilding
	return nil
}

// Finalize releases the scratch buffer. The recorded build must have
// completed.
func (t *TopLevel) Finalize() error {
	if t.state != StateBuilding {
		return invalidState("Finalize", t.state)
	}
	destroy(&t.scratch)
	t.state = StateReady
	return nil
}

// Result returns the result buffer, nil before EnqueueBuild.
func (t *TopLevel) Result() rtcore.Buffer { return t.result }

// GPUAddress returns the address of the result, or 0 before EnqueueBuild.
func (t *TopLevel) GPUAddress() uint64 {
	if t.result == nil {
		return 0
	}
	return t.result.GPUAddress()
}

// ResultSize returns the size of the result buffer.
func (t *TopLevel) ResultSize() uint64 {
	if t.result == nil {
		return 0
	}
	return t.result.Size()
}

// Destroy releases the result and scratch buffers. The instance buffer
// belongs to the caller.
func (t *TopLevel) Destroy() { t.release() }
