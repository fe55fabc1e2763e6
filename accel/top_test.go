package accel

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/raytrace/internal/softdevice"
	"github.com/gogpu/raytrace/rtcore"
)

func TestTopLevelBuild(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		flags rtcore.BuildFlags
	}{
		{"default flags", nil, rtcore.BuildFlagPreferFastTrace},
		{"caller flags", []Option{WithBuildFlags(rtcore.BuildFlagPreferFastBuild | rtcore.BuildFlagAllowUpdate)},
			rtcore.BuildFlagPreferFastBuild | rtcore.BuildFlagAllowUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := softdevice.New()
			instances := []Instance{
				{Transform: Identity, ID: 0, Mask: 0xff, BottomLevel: 0x1000},
				{Transform: Identity, ID: 1, Mask: 0xff, HitGroupOffset: 2, BottomLevel: 0x2000},
				{Transform: Identity, ID: 2, Mask: 0x01, HitGroupOffset: 4, BottomLevel: 0x1000},
			}
			buf, err := UploadInstances(dev, "instances", instances)
			if err != nil {
				t.Fatalf("UploadInstances() = %v", err)
			}

			tlas, err := NewTopLevel(buf, uint32(len(instances)), tt.opts...)
			if err != nil {
				t.Fatalf("NewTopLevel() = %v", err)
			}
			if tlas.InstanceCount() != 3 {
				t.Errorf("InstanceCount() = %d", tlas.InstanceCount())
			}
			cl := dev.NewCommandList()
			if err := tlas.EnqueueBuild(dev, cl); err != nil {
				t.Fatalf("EnqueueBuild() = %v", err)
			}

			cmds := cl.Commands()
			if len(cmds) != 2 || cmds[0].Op != softdevice.OpBuild || cmds[1].Op != softdevice.OpBarrier {
				t.Fatalf("commands = %+v", cmds)
			}
			in := cmds[0].Build.Inputs
			if in.Type != rtcore.TopLevel || in.Flags != tt.flags || in.NumInstances != 3 || in.InstanceDescs != buf.GPUAddress() {
				t.Errorf("build inputs = %+v", in)
			}
			if len(cmds[0].PostBuild) != 0 {
				t.Error("top-level build should not query post-build info")
			}
			// 72*3+100 = 316 -> 512.
			if tlas.ResultSize() != 512 {
				t.Errorf("ResultSize() = %d, want 512", tlas.ResultSize())
			}

			if err := cl.Submit(); err != nil {
				t.Fatalf("Submit() = %v", err)
			}
			if err := tlas.Finalize(); err != nil {
				t.Fatalf("Finalize() = %v", err)
			}
			if _, ok := dev.BuiltSize(tlas.GPUAddress()); !ok {
				t.Error("no structure built at the result address")
			}
			if dev.LiveBuffers() != 2 {
				t.Errorf("LiveBuffers() = %d, want instances + result", dev.LiveBuffers())
			}
			if err := tlas.Finalize(); !errors.Is(err, ErrInvalidState) {
				t.Errorf("second Finalize() = %v", err)
			}
		})
	}
}

func TestNewTopLevelErrors(t *testing.T) {
	dev := softdevice.New()
	small, err := dev.CreateBuffer(&rtcore.BufferDescriptor{
		Size:  rtcore.InstanceDescSize,
		Usage: gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}

	if _, err := NewTopLevel(nil, 1); !errors.Is(err, ErrNoInstances) {
		t.Errorf("nil buffer: %v", err)
	}
	if _, err := NewTopLevel(small, 0); !errors.Is(err, ErrNoInstances) {
		t.Errorf("zero count: %v", err)
	}
	if _, err := NewTopLevel(small, 2); !errors.Is(err, ErrInstanceBufferSize) {
		t.Errorf("short buffer: %v", err)
	}
}

func TestTopLevelPrebuildFailure(t *testing.T) {
	dev := softdevice.New()
	buf, err := UploadInstances(dev, "instances", []Instance{{Transform: Identity, Mask: 0xff}})
	if err != nil {
		t.Fatalf("UploadInstances() = %v", err)
	}
	dev.FailPrebuild = errors.New("unsupported")
	tlas, _ := NewTopLevel(buf, 1)
	if err := tlas.EnqueueBuild(dev, dev.NewCommandList()); !errors.Is(err, ErrPrebuildQuery) {
		t.Errorf("EnqueueBuild() = %v, want ErrPrebuildQuery", err)
	}
	if tlas.State() != StateUnbuilt {
		t.Errorf("State() = %s", tlas.State())
	}
}
