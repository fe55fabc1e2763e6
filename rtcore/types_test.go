package rtcore

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		v, align, want uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{40, 32, 64},
		{32, 32, 32},
		{12, 8, 16},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.v, tt.align); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.v, tt.align, got, tt.want)
		}
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ResourceStateAccelerationStructure.String(), "AccelerationStructure"},
		{ResourceState(99).String(), "Unknown(99)"},
		{ParameterDescriptorTable.String(), "DescriptorTable"},
		{RangeSampler.String(), "Sampler"},
		{SubobjectExportsAssociation.String(), "ExportsAssociation"},
		{HitGroupProcedural.String(), "Procedural"},
		{TopLevel.String(), "TopLevel"},
		{CopyModeCompact.String(), "Compact"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestBuildFlagsHas(t *testing.T) {
	f := BuildFlagAllowCompaction | BuildFlagPreferFastTrace
	if !f.Has(BuildFlagAllowCompaction) {
		t.Error("expected AllowCompaction")
	}
	if f.Has(BuildFlagAllowUpdate) {
		t.Error("unexpected AllowUpdate")
	}
}

func TestBufferDescriptorHeap(t *testing.T) {
	upload := BufferDescriptor{Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc}
	readback := BufferDescriptor{Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst}
	local := BufferDescriptor{Usage: gputypes.BufferUsageStorage}

	if !upload.HostWritable() || upload.HostReadable() {
		t.Error("upload descriptor misclassified")
	}
	if readback.HostWritable() || !readback.HostReadable() {
		t.Error("readback descriptor misclassified")
	}
	if local.HostWritable() || local.HostReadable() {
		t.Error("device-local descriptor misclassified")
	}
}

func TestPipelineStateDescValidate(t *testing.T) {
	valid := &PipelineStateDesc{Subobjects: []Subobject{
		LibrarySubobject{Exports: []string{"rg"}},
		ShaderConfigSubobject{MaxPayloadSize: 16, MaxAttributeSize: 8},
		ExportsAssociation{Subobject: 1, Exports: []string{"rg"}},
		PipelineConfigSubobject{MaxTraceRecursionDepth: 1},
	}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	tests := []struct {
		name string
		desc *PipelineStateDesc
	}{
		{"forward reference", &PipelineStateDesc{Subobjects: []Subobject{
			ExportsAssociation{Subobject: 1, Exports: []string{"rg"}},
			ShaderConfigSubobject{},
		}}},
		{"association of association", &PipelineStateDesc{Subobjects: []Subobject{
			ShaderConfigSubobject{},
			ExportsAssociation{Subobject: 0, Exports: []string{"rg"}},
			ExportsAssociation{Subobject: 1, Exports: []string{"rg"}},
		}}},
		{"no exports", &PipelineStateDesc{Subobjects: []Subobject{
			ShaderConfigSubobject{},
			ExportsAssociation{Subobject: 0},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.desc.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestPipelineStateDescString(t *testing.T) {
	desc := &PipelineStateDesc{Subobjects: []Subobject{
		LibrarySubobject{Code: make([]byte, 4), Exports: []string{"rg", "miss"}},
		HitGroupSubobject{Name: "hg", ClosestHit: "ch", AnyHit: "ah"},
		PipelineConfigSubobject{MaxTraceRecursionDepth: 2},
	}}
	s := desc.String()
	for _, want := range []string{"Library", "rg,miss", "closest=ch any=ah", "max recursion=2"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
	kinds := desc.Kinds()
	if len(kinds) != 3 || kinds[1] != SubobjectHitGroup {
		t.Errorf("Kinds() = %v", kinds)
	}
}
