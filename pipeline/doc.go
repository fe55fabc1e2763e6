// Package pipeline assembles raytracing pipeline state objects and their
// shader record tables.
//
// A Builder collects shader libraries, the ray generation shader, miss
// shaders, hit groups, payload configurations and argument layout
// associations, then compiles them into an ordered sub-object graph:
//
//	libraries
//	hit groups (row by row, one per ray type)
//	payload configs, each followed by its association
//	local layouts, each followed by its association
//	pipeline config (recursion depth)
//	global layout, if set
//
// Build submits the graph to the device and lays out the shader record
// table: the ray generation record, then one record per miss shader, then
// one record per hit group. Every record has the same stride.
//
//	p, err := pipeline.NewBuilder(pipeline.WithLabel("scene")).
//		AddShaderLibrary(lib).
//		SetRayGen("RayGen").
//		SetMissShader("Miss").
//		AddHitGroup(pipeline.HitGroup{Name: "Hit", ClosestHit: "ClosestHit"}).
//		ConfigureShaderPayload([]string{"RayGen", "Miss", "Hit"}, 16, 8).
//		SetShaderArgumentLayout([]string{"Hit"}, hitLayout).
//		Build(device)
//
// Arguments are written into the table through ShaderRecord while the table
// is mapped:
//
//	if err := p.Map(); err != nil { ... }
//	rec, _ := p.ShaderRecord("Hit")
//	hitLayout.PutDescriptor(rec, "vertices", vb.GPUAddress())
//	p.Unmap()
package pipeline
