// Package accel builds bottom-level and top-level acceleration structures.
//
// A build goes through four states:
//
//	Unbuilt -> Building -> Compacting -> Ready
//
// EnqueueBuild queries the device for memory bounds, allocates the result
// and scratch buffers and records the build. Bottom-level builds also record
// a compacted-size query and copy its result to a readback buffer. After the
// recorded work has executed, EnqueueCompaction (bottom-level structures
// built with BuildFlagAllowCompaction only) reads that size back and records
// a compacting copy into a right-sized buffer. Finalize releases everything
// but the final result.
//
// The host reads the readback buffer directly in EnqueueCompaction. The
// caller must make sure the GPU has finished the build first; this package
// provides no fence.
package accel
