package backend

import (
	"errors"

	"github.com/gogpu/raytrace/rtcore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Recorder is a command recorder that can be submitted for execution.
type Recorder interface {
	rtcore.Recorder

	// Submit executes the recorded commands and resets the recorder.
	Submit() error
}

// Backend supplies a device and command recorders.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "hal").
	Name() string

	// Init initializes the backend.
	// This should be called before Device or NewRecorder.
	Init() error

	// Close releases all backend resources.
	Close()

	// Device returns the device, or nil before Init.
	Device() rtcore.Device

	// NewRecorder creates an empty command recorder.
	NewRecorder() (Recorder, error)
}
