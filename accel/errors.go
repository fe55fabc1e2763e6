package accel

import "errors"

var (
	// ErrPrebuildQuery is returned when the device cannot report valid
	// memory bounds for a build.
	ErrPrebuildQuery = errors.New("accel: prebuild info query failed")

	// ErrInvalidState is returned when a lifecycle method is called out of order.
	ErrInvalidState = errors.New("accel: invalid build state")

	// ErrNoGeometry is returned for a bottom-level build without geometry.
	ErrNoGeometry = errors.New("accel: bottom-level build has no geometry")

	// ErrNoInstances is returned for a top-level build without instances.
	ErrNoInstances = errors.New("accel: top-level build has no instances")

	// ErrInstanceBufferSize is returned when an instance buffer cannot hold
	// the declared instances.
	ErrInstanceBufferSize = errors.New("accel: instance buffer too small")

	// ErrInstanceField is returned when an instance field exceeds its bit width.
	ErrInstanceField = errors.New("accel: instance field out of range")

	// ErrCompactedSize is returned when the read back compacted size is zero
	// or larger than the original result.
	ErrCompactedSize = errors.New("accel: invalid compacted size")
)
