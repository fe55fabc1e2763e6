package halalloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

var (
	// ErrNoHAL is returned when a provider does not expose HAL objects.
	ErrNoHAL = errors.New("halalloc: provider does not expose HAL device and queue")

	// ErrInvalidSize is returned when creating an empty buffer.
	ErrInvalidSize = errors.New("halalloc: buffer size must be positive")

	// ErrNotMappable is returned when mapping a device-local buffer.
	ErrNotMappable = errors.New("halalloc: buffer is not host visible")

	// ErrAlreadyMapped is returned when mapping a mapped buffer.
	ErrAlreadyMapped = errors.New("halalloc: buffer is already mapped")

	// ErrDestroyed is returned when using a destroyed buffer.
	ErrDestroyed = errors.New("halalloc: buffer has been destroyed")
)

// Allocator creates rtcore buffers on a HAL device.
//
// Allocator is safe for concurrent use. Individual buffers are not.
type Allocator struct {
	device hal.Device
	queue  hal.Queue

	mu        sync.Mutex
	live      int
	liveBytes uint64
}

// New returns an allocator on device. queue uploads and reads back
// host-visible buffers.
func New(device hal.Device, queue hal.Queue) *Allocator {
	return &Allocator{device: device, queue: queue}
}

// FromProvider returns an allocator on the device shared by provider. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider) (*Allocator, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue), nil
}

// halUsage maps rtcore usage to HAL usage. Upload buffers are written
// through the queue, so they need CopyDst instead of MapWrite.
func halUsage(u gputypes.BufferUsage) gputypes.BufferUsage {
	if u.Contains(gputypes.BufferUsageMapWrite) {
		return u&^gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopyDst
	}
	return u
}

// CreateBuffer allocates a HAL buffer described by desc.
func (a *Allocator) CreateBuffer(desc *rtcore.BufferDescriptor) (rtcore.Buffer, error) {
	if desc == nil || desc.Size == 0 {
		return nil, ErrInvalidSize
	}
	raw, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: halUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("halalloc: creating %q: %w", desc.Label, err)
	}

	b := &Buffer{alloc: a, raw: raw, desc: *desc}
	if desc.HostWritable() || desc.HostReadable() {
		b.host = make([]byte, desc.Size)
	}

	a.mu.Lock()
	a.live++
	a.liveBytes += desc.Size
	a.mu.Unlock()

	raytrace.Logger().Debug("halalloc: buffer created",
		"label", desc.Label, "size", desc.Size, "usage", desc.Usage)
	return b, nil
}

// Stats returns the number and total size of live buffers.
func (a *Allocator) Stats() (buffers int, bytes uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live, a.liveBytes
}

func (a *Allocator) release(b *Buffer) {
	a.device.DestroyBuffer(b.raw)
	a.mu.Lock()
	a.live--
	a.liveBytes -= b.desc.Size
	a.mu.Unlock()
}
