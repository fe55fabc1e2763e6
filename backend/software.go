package backend

import (
	"github.com/gogpu/raytrace/internal/softdevice"
	"github.com/gogpu/raytrace/rtcore"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the in-memory backend.
	BackendSoftware = "software"
	// BackendHAL is the name of the gogpu/wgpu HAL backend.
	BackendHAL = "hal"
)

// SoftwareBackend runs on an in-memory device that models driver sizing,
// validation and command execution on the host.
type SoftwareBackend struct {
	device *softdevice.Device
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() Backend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init creates the device. Calling Init again keeps the existing device.
func (b *SoftwareBackend) Init() error {
	if b.device == nil {
		b.device = softdevice.New()
	}
	return nil
}

// Close drops the device.
func (b *SoftwareBackend) Close() {
	b.device = nil
}

// Device returns the device, or nil before Init.
func (b *SoftwareBackend) Device() rtcore.Device {
	if b.device == nil {
		return nil
	}
	return b.device
}

// NewRecorder creates an empty command list.
func (b *SoftwareBackend) NewRecorder() (Recorder, error) {
	if b.device == nil {
		return nil, ErrNotInitialized
	}
	return b.device.NewCommandList(), nil
}

// LiveBuffers returns the number of buffers not yet destroyed.
func (b *SoftwareBackend) LiveBuffers() int {
	if b.device == nil {
		return 0
	}
	return b.device.LiveBuffers()
}
