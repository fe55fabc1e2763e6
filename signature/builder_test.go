package signature

import (
	"errors"
	"testing"

	"github.com/gogpu/raytrace/internal/softdevice"
	"github.com/gogpu/raytrace/rtcore"
)

func TestBuildOrdersConstantsFirst(t *testing.T) {
	dev := softdevice.New()
	l, err := NewLocal(WithLabel("hit")).
		AddSRV("vertices", 0, 0).
		AddConstants("material", 0, 0, 3).
		AddUAV("output", 0, 0).
		AddConstants("flags", 1, 0, 1).
		AddCBV("camera", 2, 0).
		Build(dev)
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	want := []string{"material", "flags", "vertices", "output", "camera"}
	args := l.Arguments()
	if len(args) != len(want) {
		t.Fatalf("got %d arguments, want %d", len(args), len(want))
	}
	for i, name := range want {
		if args[i].Name != name {
			t.Errorf("argument %d = %q, want %q", i, args[i].Name, name)
		}
	}

	// material: 3 values -> 12 bytes padded to 16; flags: 4 -> 8.
	wantOffsets := map[string][2]uint64{
		"material": {32, 16},
		"flags":    {48, 8},
		"vertices": {56, 8},
		"output":   {64, 8},
		"camera":   {72, 8},
	}
	for name, w := range wantOffsets {
		off, ok := l.Offset(name)
		size, _ := l.Size(name)
		if !ok || off != w[0] || size != w[1] {
			t.Errorf("%s: offset=%d size=%d ok=%v, want offset=%d size=%d", name, off, size, ok, w[0], w[1])
		}
	}
	if l.ArgumentSize() != 48 {
		t.Errorf("ArgumentSize() = %d, want 48", l.ArgumentSize())
	}
	if l.TotalSize() != 80 {
		t.Errorf("TotalSize() = %d, want 80", l.TotalSize())
	}
	if !l.IsLocal() || l.Flags() != rtcore.SignatureFlagLocal {
		t.Error("expected local signature flags")
	}

	if len(dev.Signatures) != 1 {
		t.Fatalf("device compiled %d signatures, want 1", len(dev.Signatures))
	}
	params := dev.Signatures[0].Parameters
	if params[0].Type != rtcore.ParameterConstants || params[0].Num32BitValues != 3 {
		t.Errorf("first native parameter = %+v", params[0])
	}
	if dev.Signatures[0].Label != "hit" {
		t.Errorf("label = %q", dev.Signatures[0].Label)
	}
}

func TestStablePartitionProperty(t *testing.T) {
	// Interleave constants and descriptors in many patterns and check the
	// partition and order properties on each.
	for mask := 0; mask < 1<<6; mask++ {
		b := NewGlobal()
		var constants, descriptors []string
		for i := 0; i < 6; i++ {
			name := string(rune('a' + i))
			if mask&(1<<i) != 0 {
				b.AddConstants(name, uint32(i), 0, uint32(i+1))
				constants = append(constants, name)
			} else {
				b.AddSRV(name, uint32(i), 0)
				descriptors = append(descriptors, name)
			}
		}
		l, err := b.Build(softdevice.New())
		if err != nil {
			t.Fatalf("mask %06b: Build() = %v", mask, err)
		}
		got := l.Arguments()
		want := append(append([]string{}, constants...), descriptors...)
		var prevEnd uint64 = rtcore.ShaderIdentifierSize
		for i, a := range got {
			if a.Name != want[i] {
				t.Fatalf("mask %06b: argument %d = %q, want %q", mask, i, a.Name, want[i])
			}
			if a.Offset != prevEnd {
				t.Fatalf("mask %06b: %q offset %d, want %d", mask, a.Name, a.Offset, prevEnd)
			}
			if a.Offset+a.Size > l.TotalSize() {
				t.Fatalf("mask %06b: %q ends past TotalSize", mask, a.Name)
			}
			prevEnd = a.Offset + a.Size
		}
	}
}

func TestConstantsSize(t *testing.T) {
	for k := uint32(1); k <= 16; k++ {
		l, err := NewLocal().AddConstants("c", 0, 0, k).Build(softdevice.New())
		if err != nil {
			t.Fatalf("k=%d: Build() = %v", k, err)
		}
		size, _ := l.Size("c")
		want := rtcore.AlignUp(uint64(4*k), rtcore.DescriptorHandleSize)
		if size != want {
			t.Errorf("k=%d: size = %d, want %d", k, size, want)
		}
	}
}

func TestDescriptorTableAppendedLast(t *testing.T) {
	dev := softdevice.New()
	l, err := NewLocal().
		AddSRVRange(2, 0, 1, 0).
		AddUAVRange(1, 0, 1, 2).
		AddSRV("scene", 0, 0).
		AddConstants("seed", 0, 0, 1).
		Build(dev)
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	args := l.Arguments()
	last := args[len(args)-1]
	if last.Name != DescriptorTableArgument || last.Kind != rtcore.ParameterDescriptorTable {
		t.Fatalf("last argument = %+v, want descriptor table", last)
	}
	off, ok := l.DescriptorTableOffset()
	if !ok || off != 48 {
		t.Errorf("DescriptorTableOffset() = %d, %v, want 48", off, ok)
	}
	if l.DescriptorTableSize() != 8 {
		t.Errorf("DescriptorTableSize() = %d", l.DescriptorTableSize())
	}
	if l.TotalSize() != 56 {
		t.Errorf("TotalSize() = %d, want 56", l.TotalSize())
	}
	table := dev.Signatures[0].Parameters[2]
	if len(table.Ranges) != 2 || table.Ranges[1].Type != rtcore.RangeUAV || table.Ranges[1].OffsetInDescriptors != 2 {
		t.Errorf("table ranges = %+v", table.Ranges)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		dev     rtcore.RaytracingDevice
		want    error
	}{
		{"duplicate name", NewLocal().AddSRV("a", 0, 0).AddUAV("a", 0, 0), softdevice.New(), ErrDuplicateArgument},
		{"reserved name", NewLocal().AddSRV(DescriptorTableArgument, 0, 0), softdevice.New(), ErrDuplicateArgument},
		{"empty constants", NewLocal().AddConstants("c", 0, 0, 0), softdevice.New(), ErrEmptyConstants},
		{"empty range", NewLocal().AddSRVRange(0, 0, 0, 0), softdevice.New(), ErrEmptyRange},
		{"nil device", NewLocal().AddSRV("a", 0, 0), nil, ErrNilDevice},
		{"driver rejection", NewLocal().AddSRV("a", 0, 0).AddSRV("b", 0, 0), softdevice.New(), ErrLayoutCompilation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build(tt.dev)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompilationErrorCarriesDiagnostic(t *testing.T) {
	dev := softdevice.New()
	dev.FailSignature = errors.New("root signature version 1.1 required")
	_, err := NewGlobal(WithLabel("global")).AddSRV("scene", 0, 0).Build(dev)

	var ce *CompilationError
	if !errors.As(err, &ce) {
		t.Fatalf("Build() = %v, want *CompilationError", err)
	}
	if ce.Diagnostic != "root signature version 1.1 required" {
		t.Errorf("Diagnostic = %q", ce.Diagnostic)
	}
	if ce.Label != "global" {
		t.Errorf("Label = %q", ce.Label)
	}
	if !errors.Is(err, dev.FailSignature) {
		t.Error("CompilationError does not unwrap to the device error")
	}
}

func TestBuildTwice(t *testing.T) {
	b := NewLocal().AddSRV("a", 0, 0).AddSRVRange(1, 1, 0, 0)
	l1, err := b.Build(softdevice.New())
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	l2, err := b.Build(softdevice.New())
	if err != nil {
		t.Fatalf("second Build() = %v", err)
	}
	if len(l1.Arguments()) != len(l2.Arguments()) {
		t.Error("second Build produced a different layout")
	}
}
