package shader

import (
	"errors"
	"testing"
)

func TestNewLibrary(t *testing.T) {
	exports := []string{"RayGen", "Miss", "ClosestHit"}
	lib, err := NewLibrary([]byte{0x44, 0x58, 0x42, 0x43}, exports...)
	if err != nil {
		t.Fatalf("NewLibrary() = %v", err)
	}
	exports[0] = "changed"
	if !lib.HasExport("RayGen") {
		t.Error("library aliases the caller's export slice")
	}
	if lib.HasExport("AnyHit") {
		t.Error("HasExport(AnyHit) = true")
	}
}

func TestNewLibraryEmpty(t *testing.T) {
	tests := []struct {
		name    string
		code    []byte
		exports []string
	}{
		{"no code", nil, []string{"RayGen"}},
		{"no exports", []byte{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLibrary(tt.code, tt.exports...); !errors.Is(err, ErrEmptyLibrary) {
				t.Errorf("NewLibrary() = %v, want ErrEmptyLibrary", err)
			}
		})
	}
}
