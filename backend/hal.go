package backend

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/raytrace/backend/halalloc"
	"github.com/gogpu/raytrace/rtcore"
)

// HALBackend allocates buffers through gogpu/wgpu HAL and forwards
// raytracing calls to a native device.
type HALBackend struct {
	provider  gpucontext.DeviceProvider
	native    rtcore.RaytracingDevice
	recorders func() Recorder

	alloc  *halalloc.Allocator
	device rtcore.Device
}

// NewHALBackend creates a HAL backend. recorders creates command recorders
// on the native device.
func NewHALBackend(provider gpucontext.DeviceProvider, native rtcore.RaytracingDevice, recorders func() Recorder) *HALBackend {
	return &HALBackend{provider: provider, native: native, recorders: recorders}
}

// RegisterHAL registers a HAL backend under BackendHAL.
func RegisterHAL(provider gpucontext.DeviceProvider, native rtcore.RaytracingDevice, recorders func() Recorder) {
	Register(BackendHAL, func() Backend {
		return NewHALBackend(provider, native, recorders)
	})
}

// Name returns the backend identifier.
func (b *HALBackend) Name() string {
	return BackendHAL
}

// Init resolves the HAL device and queue from the provider.
func (b *HALBackend) Init() error {
	if b.device != nil {
		return nil
	}
	if b.native == nil {
		return ErrBackendNotAvailable
	}
	alloc, err := halalloc.FromProvider(b.provider)
	if err != nil {
		return err
	}
	b.alloc = alloc
	b.device = rtcore.Compose(alloc, b.native)
	return nil
}

// Close drops the device. Buffers created through it stay valid until
// destroyed.
func (b *HALBackend) Close() {
	b.alloc = nil
	b.device = nil
}

// Device returns the composed device, or nil before Init.
func (b *HALBackend) Device() rtcore.Device {
	return b.device
}

// Allocator returns the HAL buffer allocator, or nil before Init.
func (b *HALBackend) Allocator() *halalloc.Allocator {
	return b.alloc
}

// NewRecorder creates a recorder on the native device.
func (b *HALBackend) NewRecorder() (Recorder, error) {
	if b.device == nil {
		return nil, ErrNotInitialized
	}
	if b.recorders == nil {
		return nil, ErrBackendNotAvailable
	}
	return b.recorders(), nil
}
