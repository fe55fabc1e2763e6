// Command rtdemo assembles a small raytracing scene on a registered backend
// and prints the pipeline sub-object graph, the shader table layout and the
// acceleration structure sizes.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/accel"
	"github.com/gogpu/raytrace/backend"
	"github.com/gogpu/raytrace/pipeline"
	"github.com/gogpu/raytrace/rtcore"
	"github.com/gogpu/raytrace/shader"
	"github.com/gogpu/raytrace/signature"
)

// librarySource stands in for a DXIL library: one compute entry point per
// raytracing shader.
const librarySource = `
@compute @workgroup_size(1)
fn RayGen() {}

@compute @workgroup_size(1)
fn Miss() {}

@compute @workgroup_size(1)
fn ShadowMiss() {}

@compute @workgroup_size(1)
fn ClosestHit() {}

@compute @workgroup_size(1)
fn ShadowHit() {}
`

func main() {
	var (
		width     = flag.Uint("width", 1280, "dispatch width")
		height    = flag.Uint("height", 720, "dispatch height")
		triangles = flag.Int("triangles", 1024, "triangles per mesh")
		meshes    = flag.Int("meshes", 3, "number of meshes and instances")
		compact   = flag.Bool("compact", true, "compact bottom-level structures")
		legacy    = flag.Bool("legacy-sizing", false, "size records from the ray generation layout")
		device    = flag.String("backend", "", "backend name (default: best available)")
		list      = flag.Bool("list", false, "list registered backends and exit")
		verbose   = flag.Bool("v", false, "log sizing diagnostics")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	raytrace.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *list {
		for _, name := range backend.Available() {
			fmt.Println(name)
		}
		return
	}

	b, err := backend.Open(*device)
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	defer b.Close()
	dev := b.Device()
	rec, err := b.NewRecorder()
	if err != nil {
		log.Fatalf("backend %s: %v", b.Name(), err)
	}

	s, err := buildScene(dev, rec, *meshes, *triangles, *compact)
	if err != nil {
		log.Fatalf("scene: %v", err)
	}
	defer s.destroy()

	p, err := buildPipeline(dev, *meshes, *legacy)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	defer p.Destroy()

	if err := writeRecords(p, s); err != nil {
		log.Fatalf("shader records: %v", err)
	}

	fmt.Println("Sub-object graph:")
	fmt.Print(p.Graph())
	printTable(p)
	printScene(s)

	d := p.DispatchRays(uint32(*width), uint32(*height))
	fmt.Printf("\nDispatch %dx%dx%d\n", d.Width, d.Height, d.Depth)
	fmt.Printf("  ray gen   %#x +%d\n", d.RayGeneration.StartAddress, d.RayGeneration.Size)
	fmt.Printf("  miss      %#x +%d stride %d\n", d.Miss.StartAddress, d.Miss.Size, d.Miss.Stride)
	fmt.Printf("  hit group %#x +%d stride %d\n", d.HitGroup.StartAddress, d.HitGroup.Size, d.HitGroup.Stride)
	if sw, ok := b.(*backend.SoftwareBackend); ok {
		fmt.Printf("\nLive buffers: %d\n", sw.LiveBuffers())
	}
}

type mesh struct {
	vertices, indices rtcore.Buffer
	blas              *accel.BottomLevel
}

type scene struct {
	meshes    []mesh
	instances rtcore.Buffer
	tlas      *accel.TopLevel
}

func (s *scene) destroy() {
	if s.tlas != nil {
		s.tlas.Destroy()
	}
	if s.instances != nil {
		s.instances.Destroy()
	}
	for _, m := range s.meshes {
		m.blas.Destroy()
		m.vertices.Destroy()
		m.indices.Destroy()
	}
}

// buildScene builds one bottom-level structure per mesh, compacts them and
// builds a top-level structure instancing each mesh once.
func buildScene(dev rtcore.Device, cl backend.Recorder, meshes, triangles int, compact bool) (*scene, error) {
	flags := rtcore.BuildFlagPreferFastTrace
	if compact {
		flags |= rtcore.BuildFlagAllowCompaction
	}
	s := &scene{}
	for i := range meshes {
		vb, err := dev.CreateBuffer(&rtcore.BufferDescriptor{
			Label: fmt.Sprintf("mesh%d vertices", i),
			Size:  uint64(triangles) * 3 * 12,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageStorage,
		})
		if err != nil {
			return nil, err
		}
		ib, err := dev.CreateBuffer(&rtcore.BufferDescriptor{
			Label: fmt.Sprintf("mesh%d indices", i),
			Size:  uint64(triangles) * 3 * 4,
			Usage: gputypes.BufferUsageStorage,
		})
		if err != nil {
			vb.Destroy()
			return nil, err
		}
		blas, err := accel.NewBottomLevel(
			[]rtcore.GeometryDesc{accel.Triangles(vb, ib, rtcore.GeometryFlagOpaque)},
			accel.WithLabel(fmt.Sprintf("mesh%d", i)),
			accel.WithBuildFlags(flags),
		)
		if err != nil {
			return nil, err
		}
		s.meshes = append(s.meshes, mesh{vertices: vb, indices: ib, blas: blas})
		if err := blas.EnqueueBuild(dev, cl); err != nil {
			return nil, err
		}
	}
	if err := cl.Submit(); err != nil {
		return nil, err
	}

	for _, m := range s.meshes {
		if err := m.blas.EnqueueCompaction(dev, cl); err != nil {
			return nil, err
		}
	}
	if err := cl.Submit(); err != nil {
		return nil, err
	}

	instances := make([]accel.Instance, len(s.meshes))
	for i, m := range s.meshes {
		if err := m.blas.Finalize(); err != nil {
			return nil, err
		}
		instances[i] = accel.Instance{
			Transform:      accel.Identity,
			ID:             uint32(i),
			Mask:           0xff,
			HitGroupOffset: uint32(i * 2),
			BottomLevel:    m.blas.GPUAddress(),
		}
		instances[i].Transform[0][3] = float32(i) * 2.5
	}

	var err error
	s.instances, err = accel.UploadInstances(dev, "instances", instances)
	if err != nil {
		return nil, err
	}
	s.tlas, err = accel.NewTopLevel(s.instances, uint32(len(instances)), accel.WithLabel("scene"))
	if err != nil {
		return nil, err
	}
	if err := s.tlas.EnqueueBuild(dev, cl); err != nil {
		return nil, err
	}
	if err := cl.Submit(); err != nil {
		return nil, err
	}
	return s, s.tlas.Finalize()
}

// buildPipeline creates a two ray type pipeline (primary and shadow) with
// one hit group row per mesh.
func buildPipeline(dev rtcore.Device, meshes int, legacy bool) (*pipeline.Pipeline, error) {
	lib, err := shader.CompileWGSL("library", librarySource)
	if err != nil {
		return nil, err
	}

	global, err := signature.NewGlobal(signature.WithLabel("global")).
		AddUAVRange(1, 0, 0, 0).
		AddSRV("scene", 0, 0).
		Build(dev)
	if err != nil {
		return nil, err
	}
	hit, err := signature.NewLocal(signature.WithLabel("hit")).
		AddSRV("vertices", 1, 0).
		AddSRV("indices", 2, 0).
		AddConstants("material", 0, 0, 4).
		Build(dev)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLabel("demo")}
	if legacy {
		opts = append(opts, pipeline.WithLegacyRecordSizing())
	}
	b := pipeline.NewBuilder(opts...).
		AddShaderLibrary(lib).
		SetRayGen("RayGen").
		AddMissShaders("Miss", "ShadowMiss").
		SetGlobalArgumentLayout(global).
		SetMaxRecursion(2)

	payloadShaders := []string{"RayGen", "Miss", "ShadowMiss"}
	var hitGroups []string
	for i := range meshes {
		primary := fmt.Sprintf("Hit%d", i)
		shadow := fmt.Sprintf("Shadow%d", i)
		b.AddHitGroups(
			pipeline.HitGroup{Name: primary, ClosestHit: "ClosestHit"},
			pipeline.HitGroup{Name: shadow, ClosestHit: "ShadowHit"},
		)
		hitGroups = append(hitGroups, primary)
		payloadShaders = append(payloadShaders, primary, shadow)
	}
	return b.ConfigureShaderPayload(payloadShaders, 32, 8).
		SetShaderArgumentLayout(hitGroups, hit).
		Build(dev)
}

// writeRecords binds each primary hit group to its mesh.
func writeRecords(p *pipeline.Pipeline, s *scene) error {
	if err := p.Map(); err != nil {
		return err
	}
	defer p.Unmap()

	for i, m := range s.meshes {
		name := fmt.Sprintf("Hit%d", i)
		rec, err := p.ShaderRecord(name)
		if err != nil {
			return err
		}
		layout := p.ShaderSignature(name)
		if err := layout.PutDescriptor(rec, "vertices", m.vertices.GPUAddress()); err != nil {
			return err
		}
		if err := layout.PutDescriptor(rec, "indices", m.indices.GPUAddress()); err != nil {
			return err
		}
		if err := layout.PutConstants(rec, "material", []uint32{uint32(i), 0, 0, 1}); err != nil {
			return err
		}
	}
	return nil
}

func printTable(p *pipeline.Pipeline) {
	fmt.Printf("\nShader table: %d bytes, stride %d\n", p.TableSize(), p.RecordStride())
	for _, sub := range p.Graph().Subobjects {
		var names []string
		switch o := sub.(type) {
		case rtcore.LibrarySubobject:
			names = o.Exports
		case rtcore.HitGroupSubobject:
			names = []string{o.Name}
		}
		for _, name := range names {
			off, ok := p.RecordOffset(name)
			if !ok {
				continue
			}
			layout := "-"
			if l := p.ShaderSignature(name); l != nil {
				layout = fmt.Sprintf("%s (%d bytes)", l.Label(), l.TotalSize())
			}
			fmt.Printf("  %6d  %-12s %s\n", off, name, layout)
		}
	}
}

func printScene(s *scene) {
	fmt.Println("\nAcceleration structures:")
	for i, m := range s.meshes {
		fmt.Printf("  mesh%d  %6d triangles  %8d bytes at %#x\n",
			i, m.blas.TriangleCount(), m.blas.ResultSize(), m.blas.GPUAddress())
	}
	fmt.Printf("  scene  %6d instances  %8d bytes at %#x\n",
		s.tlas.InstanceCount(), s.tlas.ResultSize(), s.tlas.GPUAddress())
}
