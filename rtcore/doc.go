// Package rtcore defines the contract between the raytracing builders and a
// GPU backend.
//
// The builders in signature/, pipeline/ and accel/ never talk to a graphics
// API directly. They describe what they need with the descriptor types in
// this package and hand them to a [Device] or record them into a [Recorder].
// A backend translates the descriptors into native calls.
//
// # Interfaces
//
//   - [Buffer]: a linear GPU allocation with a GPU virtual address and
//     optional host mapping.
//   - [Allocator]: creates buffers.
//   - [RaytracingDevice]: compiles signatures, creates pipeline state objects
//     and reports acceleration structure memory requirements.
//   - [Device]: an [Allocator] and a [RaytracingDevice] together. Use
//     [Compose] to pair a buffer allocator with a separate raytracing device.
//   - [Recorder]: enqueues acceleration structure builds, copies and
//     barriers for later submission on the graphics queue.
//
// # Resource Ownership
//
// Every Buffer has exactly one owner. Destroying a buffer that is still
// referenced by recorded GPU work is undefined behavior; the caller is
// responsible for waiting on the queue before releasing resources.
package rtcore
