// Package halalloc implements rtcore.Allocator on a gogpu/wgpu HAL device.
//
// Raytracing entry points are not part of the portable HAL, so an Allocator
// only provides buffers. Combine it with a native raytracing device through
// rtcore.Compose:
//
//	alloc, err := halalloc.FromProvider(provider)
//	if err != nil { ... }
//	device := rtcore.Compose(alloc, rtDevice)
//
// Host-visible buffers keep a host copy. Unmap of a MapWrite buffer uploads
// the copy with Queue.WriteBuffer, logging a warning if the upload fails;
// Map of a MapRead buffer refreshes it through Device.MapBuffer.
package halalloc
