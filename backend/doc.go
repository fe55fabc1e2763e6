// Package backend selects the device the raytracing builders run on.
//
// Backends are registered by name and selected at runtime. The software
// backend is always registered on import:
//
//	b := backend.Default()
//	if err := b.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	layout, err := signature.NewLocal().AddSRV("vertices", 0, 0).Build(b.Device())
//
// # HAL Backend
//
// RegisterHAL installs a backend that allocates buffers through a
// gpucontext.DeviceProvider exposing gogpu/wgpu HAL objects, and forwards
// raytracing calls to a native device supplied by the caller. Once registered
// it takes priority over the software backend.
//
// # Available Backends
//
//   - "software": in-memory device (always available)
//   - "hal": gogpu/wgpu buffers plus a native raytracing device
package backend
