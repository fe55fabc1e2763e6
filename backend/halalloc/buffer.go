package halalloc

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

// Buffer is an rtcore.Buffer backed by a hal.Buffer.
type Buffer struct {
	alloc     *Allocator
	raw       hal.Buffer
	desc      rtcore.BufferDescriptor
	host      []byte // host copy of MapWrite and MapRead buffers
	mapped    bool
	destroyed bool
	uploadErr error
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.desc.Size }

// GPUAddress returns the backend handle of the buffer.
func (b *Buffer) GPUAddress() uint64 { return uint64(b.raw.NativeHandle()) }

// Raw returns the underlying HAL buffer.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Map returns the host copy of the buffer. MapRead buffers are refreshed
// from the GPU first.
func (b *Buffer) Map() ([]byte, error) {
	switch {
	case b.destroyed:
		return nil, ErrDestroyed
	case b.host == nil:
		return nil, fmt.Errorf("%w: %q", ErrNotMappable, b.desc.Label)
	case b.mapped:
		return nil, fmt.Errorf("%w: %q", ErrAlreadyMapped, b.desc.Label)
	}
	if b.desc.HostReadable() {
		if err := b.readBack(); err != nil {
			return nil, fmt.Errorf("halalloc: reading back %q: %w", b.desc.Label, err)
		}
	}
	b.mapped = true
	return b.host, nil
}

// readBack refreshes the host copy through a device mapping.
func (b *Buffer) readBack() error {
	device := b.alloc.device
	m, err := device.MapBuffer(b.raw, 0, b.desc.Size)
	if err != nil {
		return err
	}
	copy(b.host, unsafe.Slice((*byte)(m.Ptr), b.desc.Size))
	return device.UnmapBuffer(b.raw)
}

// Unmap ends the mapping. MapWrite buffers are uploaded to the GPU.
func (b *Buffer) Unmap() {
	if !b.mapped || b.destroyed {
		return
	}
	b.mapped = false
	if !b.desc.HostWritable() {
		return
	}
	b.uploadErr = b.alloc.queue.WriteBuffer(b.raw, 0, b.host)
	if b.uploadErr != nil {
		raytrace.Logger().Warn("halalloc: upload failed",
			"label", b.desc.Label, "size", b.desc.Size, "err", b.uploadErr)
	}
}

// UploadErr returns the error of the last upload made by Unmap, or nil.
func (b *Buffer) UploadErr() error { return b.uploadErr }

// Destroy releases the HAL buffer.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.mapped = false
	b.host = nil
	b.alloc.release(b)
}
