package pipeline

import "errors"

// Configuration errors returned by Builder.Build.
var (
	// ErrMissingRayGen is returned when no ray generation shader was set.
	ErrMissingRayGen = errors.New("pipeline: no ray generation shader set")

	// ErrInconsistentHitGroups is returned when hit group rows do not all
	// provide a hit group for every ray type.
	ErrInconsistentHitGroups = errors.New("pipeline: hit group rows do not cover every ray type")

	// ErrMissCountMismatch is returned when miss shaders are declared but
	// their count differs from the number of ray types.
	ErrMissCountMismatch = errors.New("pipeline: miss shader count does not match ray type count")

	// ErrTooManyRayTypes is returned for 256 or more ray types or hit group rows.
	ErrTooManyRayTypes = errors.New("pipeline: too many ray types, max is 255")

	// ErrRayGenAlreadySet is returned when SetRayGen is called twice.
	ErrRayGenAlreadySet = errors.New("pipeline: ray generation shader already set")

	// ErrMissShadersAlreadySet is returned when miss shaders are set twice.
	ErrMissShadersAlreadySet = errors.New("pipeline: miss shaders already set")

	// ErrUnknownExport is returned when a shader name is not exported by
	// any library or declared as a hit group.
	ErrUnknownExport = errors.New("pipeline: unknown export")

	// ErrMissingIntersection is returned for a procedural hit group without
	// an intersection shader.
	ErrMissingIntersection = errors.New("pipeline: procedural hit group has no intersection shader")

	// ErrDuplicateHitGroup is returned when two hit groups share a name.
	ErrDuplicateHitGroup = errors.New("pipeline: duplicate hit group name")

	// ErrEmptyAssociation is returned for a payload config or layout bound
	// to no shaders.
	ErrEmptyAssociation = errors.New("pipeline: association names no shaders")

	// ErrNilArgument is returned when a nil library or layout is passed.
	ErrNilArgument = errors.New("pipeline: nil library or layout")

	// ErrLayoutScope is returned when a global layout is bound locally or a
	// local layout globally.
	ErrLayoutScope = errors.New("pipeline: layout scope does not match its use")
)

// Device and table errors.
var (
	// ErrPipelineCreation wraps a device failure to create the pipeline state.
	ErrPipelineCreation = errors.New("pipeline: device failed to create pipeline state")

	// ErrInvalidIdentifier is returned when the device reports an
	// identifier of the wrong size.
	ErrInvalidIdentifier = errors.New("pipeline: invalid shader identifier")

	// ErrUnknownShaderRecord is returned for a record lookup of a shader
	// that is not part of the table.
	ErrUnknownShaderRecord = errors.New("pipeline: shader record not in table")

	// ErrTableNotMapped is returned by ShaderRecord while the table is unmapped.
	ErrTableNotMapped = errors.New("pipeline: shader table is not mapped")

	// ErrTableMapped is returned by Map while the table is already mapped.
	ErrTableMapped = errors.New("pipeline: shader table is already mapped")
)
