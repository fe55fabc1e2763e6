package softdevice

import (
	"errors"
	"fmt"

	"github.com/gogpu/raytrace/rtcore"
)

// Buffer errors.
var (
	// ErrNotMappable is returned when mapping a device-local buffer.
	ErrNotMappable = errors.New("softdevice: buffer is not host visible")

	// ErrAlreadyMapped is returned when mapping a mapped buffer.
	ErrAlreadyMapped = errors.New("softdevice: buffer is already mapped")

	// ErrDestroyed is returned when using a destroyed buffer.
	ErrDestroyed = errors.New("softdevice: buffer has been destroyed")
)

// Buffer is a host-memory rtcore.Buffer.
type Buffer struct {
	device    *Device
	desc      rtcore.BufferDescriptor
	address   uint64
	data      []byte
	state     rtcore.ResourceState
	mapped    bool
	destroyed bool
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.desc.Size }

// GPUAddress returns the synthetic GPU address.
func (b *Buffer) GPUAddress() uint64 { return b.address }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.desc.Label }

// State returns the last state the buffer was transitioned to.
func (b *Buffer) State() rtcore.ResourceState { return b.state }

// Destroyed reports whether Destroy was called.
func (b *Buffer) Destroyed() bool { return b.destroyed }

// Bytes returns the backing memory regardless of heap type.
func (b *Buffer) Bytes() []byte { return b.data }

// Map maps the buffer. Only upload and readback buffers can be mapped.
func (b *Buffer) Map() ([]byte, error) {
	if b.destroyed {
		return nil, ErrDestroyed
	}
	if !b.desc.HostWritable() && !b.desc.HostReadable() {
		return nil, fmt.Errorf("%w: %q", ErrNotMappable, b.desc.Label)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyMapped, b.desc.Label)
	}
	b.mapped = true
	return b.data, nil
}

// Unmap releases the mapping.
func (b *Buffer) Unmap() { b.mapped = false }

// Destroy releases the buffer.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.mapped = false
	b.device.release(b)
}
