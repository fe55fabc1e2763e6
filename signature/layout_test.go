package signature

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gogpu/raytrace/internal/softdevice"
)

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLocal().
		AddConstants("color", 0, 0, 3).
		AddSRV("vertices", 0, 0).
		AddSRVRange(1, 1, 0, 0).
		Build(softdevice.New())
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	return l
}

func TestPutArguments(t *testing.T) {
	l := newTestLayout(t)
	record := make([]byte, l.TotalSize())

	if err := l.PutConstants(record, "color", []uint32{1, 2, 3}); err != nil {
		t.Fatalf("PutConstants() = %v", err)
	}
	if err := l.PutDescriptor(record, "vertices", 0xdead_beef_0000); err != nil {
		t.Fatalf("PutDescriptor() = %v", err)
	}
	if err := l.PutDescriptorTable(record, 0x42); err != nil {
		t.Fatalf("PutDescriptorTable() = %v", err)
	}

	if got := binary.LittleEndian.Uint32(record[40:]); got != 3 {
		t.Errorf("third constant = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint64(record[48:]); got != 0xdead_beef_0000 {
		t.Errorf("vertices = %#x", got)
	}
	if got := binary.LittleEndian.Uint64(record[56:]); got != 0x42 {
		t.Errorf("descriptor table = %#x", got)
	}
}

func TestPutArgumentErrors(t *testing.T) {
	l := newTestLayout(t)
	record := make([]byte, l.TotalSize())

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown", l.PutDescriptor(record, "nope", 1), ErrUnknownArgument},
		{"kind", l.PutDescriptor(record, "color", 1), ErrArgumentKind},
		{"constants kind", l.PutConstants(record, "vertices", []uint32{1}), ErrArgumentKind},
		{"too many", l.PutConstants(record, "color", []uint32{1, 2, 3, 4}), ErrTooManyValues},
		{"short record", l.PutDescriptorTable(record[:40], 1), ErrRecordTooSmall},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
}

func TestLookupMissing(t *testing.T) {
	l := newTestLayout(t)
	if _, ok := l.Offset("missing"); ok {
		t.Error("Offset(missing) reported ok")
	}
	if _, ok := l.Size("missing"); ok {
		t.Error("Size(missing) reported ok")
	}
}

func TestLayoutDestroy(t *testing.T) {
	l := newTestLayout(t)
	l.Destroy()
	if l.Signature() != nil {
		t.Error("Signature() not cleared by Destroy")
	}
	l.Destroy()
}
