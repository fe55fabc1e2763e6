// Package raytrace builds the host-side data structures a DXR-style GPU
// raytracing pipeline needs before rays can be dispatched.
//
// # Overview
//
// The module is split by concern:
//
//   - [github.com/gogpu/raytrace/signature]: argument layouts (root and local
//     signatures) and the byte offset of every argument inside a shader record.
//   - [github.com/gogpu/raytrace/shader]: compiled shader libraries and the
//     entry points they export, including WGSL compilation through naga.
//   - [github.com/gogpu/raytrace/pipeline]: the sub-object graph that describes
//     a raytracing pipeline state object, and the shader record table built
//     from it.
//   - [github.com/gogpu/raytrace/accel]: two-phase build and compaction of
//     bottom-level and top-level acceleration structures.
//   - [github.com/gogpu/raytrace/rtcore]: the contract every GPU backend
//     implements (buffers, signatures, pipeline states, command recording).
//   - [github.com/gogpu/raytrace/backend]: backend registry; the software
//     backend and the gogpu/wgpu HAL buffer backend.
//
// # Quick Start
//
//	hit, _ := signature.NewLocal().
//	    AddSRV("vertices", 0, 0).
//	    AddConstants("material", 0, 1, 4).
//	    Build(device)
//
//	p, err := pipeline.NewBuilder().
//	    AddShaderLibrary(lib).
//	    SetRayGen("raygen").
//	    AddMissShaders("miss", "shadow_miss").
//	    AddHitGroups(primary, shadow).
//	    ConfigureShaderPayload([]string{"raygen", "miss", "closest_hit"}, 32, 8).
//	    SetShaderArgumentLayout([]string{"HitGroup"}, hit).
//	    SetMaxRecursion(2).
//	    Build(device)
//
//	desc := p.DispatchRays(1920, 1080)
//
// # Threading
//
// All builders are single-threaded host-side logic without internal locking.
// GPU work recorded through an [rtcore.Recorder] is asynchronous; it is
// ordered only by the barriers the builders insert and by submission order.
//
// # Logging
//
// raytrace is silent by default. Call [SetLogger] to receive sizing
// diagnostics through log/slog.
package raytrace
