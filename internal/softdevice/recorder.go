package softdevice

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/raytrace/rtcore"
)

// Op identifies a recorded command.
type Op int

// Recorded operations.
const (
	OpBuild Op = iota
	OpCopyAccelerationStructure
	OpBarrier
	OpCopyBuffer
)

// String returns the string representation of Op.
func (o Op) String() string {
	switch o {
	case OpBuild:
		return "Build"
	case OpCopyAccelerationStructure:
		return "CopyAccelerationStructure"
	case OpBarrier:
		return "Barrier"
	case OpCopyBuffer:
		return "CopyBuffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// Command is one recorded operation.
type Command struct {
	Op Op

	// OpBuild
	Build     rtcore.BuildDesc
	PostBuild []rtcore.PostBuildInfoDesc

	// OpCopyAccelerationStructure
	Dst, Src uint64
	Mode     rtcore.CopyMode

	// OpBarrier
	Barriers []rtcore.Barrier

	// OpCopyBuffer
	DstBuffer, SrcBuffer rtcore.Buffer
}

// CommandList is an rtcore.Recorder that executes on Submit.
type CommandList struct {
	device   *Device
	commands []Command
}

// NewCommandList returns an empty command list for d.
func (d *Device) NewCommandList() *CommandList {
	return &CommandList{device: d}
}

// Commands returns the commands recorded since the last Submit.
func (c *CommandList) Commands() []Command { return c.commands }

// BuildAccelerationStructure records a build.
func (c *CommandList) BuildAccelerationStructure(desc *rtcore.BuildDesc, postBuild []rtcore.PostBuildInfoDesc) {
	cmd := Command{Op: OpBuild, Build: *desc}
	cmd.PostBuild = append(cmd.PostBuild, postBuild...)
	c.commands = append(c.commands, cmd)
}

// CopyAccelerationStructure records a structure copy.
func (c *CommandList) CopyAccelerationStructure(dst, src uint64, mode rtcore.CopyMode) {
	c.commands = append(c.commands, Command{Op: OpCopyAccelerationStructure, Dst: dst, Src: src, Mode: mode})
}

// Barrier records barriers.
func (c *CommandList) Barrier(barriers ...rtcore.Barrier) {
	c.commands = append(c.commands, Command{Op: OpBarrier, Barriers: append([]rtcore.Barrier(nil), barriers...)})
}

// CopyBuffer records a buffer copy.
func (c *CommandList) CopyBuffer(dst, src rtcore.Buffer) {
	c.commands = append(c.commands, Command{Op: OpCopyBuffer, DstBuffer: dst, SrcBuffer: src})
}

// Submit executes the recorded commands in order and clears the list.
// It stops at the first command that references destroyed or unknown memory.
func (c *CommandList) Submit() error {
	cmds := c.commands
	c.commands = nil
	for i, cmd := range cmds {
		if err := c.execute(&cmd); err != nil {
			return fmt.Errorf("softdevice: command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

func (c *CommandList) execute(cmd *Command) error {
	d := c.device
	switch cmd.Op {
	case OpBuild:
		dst, ok := d.BufferAt(cmd.Build.DestData)
		if !ok {
			return fmt.Errorf("destination %#x is not allocated", cmd.Build.DestData)
		}
		if _, ok := d.BufferAt(cmd.Build.ScratchData); !ok {
			return fmt.Errorf("scratch %#x is not allocated", cmd.Build.ScratchData)
		}
		d.built[dst.address] = dst.desc.Size
		for _, pb := range cmd.PostBuild {
			out, ok := d.BufferAt(pb.Dest)
			if !ok {
				return fmt.Errorf("post-build destination %#x is not allocated", pb.Dest)
			}
			off := pb.Dest - out.address
			if off+8 > out.desc.Size {
				return fmt.Errorf("post-build destination %#x is too small", pb.Dest)
			}
			binary.LittleEndian.PutUint64(out.data[off:], d.compactedSize(dst.desc.Size))
		}
	case OpCopyAccelerationStructure:
		size, ok := d.built[cmd.Src]
		if !ok {
			return fmt.Errorf("source %#x holds no acceleration structure", cmd.Src)
		}
		dst, ok := d.BufferAt(cmd.Dst)
		if !ok {
			return fmt.Errorf("destination %#x is not allocated", cmd.Dst)
		}
		if cmd.Mode == rtcore.CopyModeCompact {
			size = d.compactedSize(size)
		}
		if size > dst.desc.Size {
			return fmt.Errorf("destination holds %d bytes, copy needs %d", dst.desc.Size, size)
		}
		d.built[dst.address] = size
	case OpBarrier:
		for _, b := range cmd.Barriers {
			buf, ok := b.Buffer.(*Buffer)
			if !ok || buf.destroyed {
				return fmt.Errorf("barrier on unknown or destroyed buffer")
			}
			if b.Type == rtcore.BarrierTransition {
				buf.state = b.After
			}
		}
	case OpCopyBuffer:
		dst, ok1 := cmd.DstBuffer.(*Buffer)
		src, ok2 := cmd.SrcBuffer.(*Buffer)
		if !ok1 || !ok2 || dst.destroyed || src.destroyed {
			return fmt.Errorf("copy between unknown or destroyed buffers")
		}
		copy(dst.data, src.data)
	}
	return nil
}
