package rtcore

import (
	"fmt"
	"strings"
)

// SubobjectKind identifies the concrete type of a Subobject.
type SubobjectKind uint32

// Sub-object kinds.
const (
	SubobjectLibrary SubobjectKind = iota
	SubobjectHitGroup
	SubobjectShaderConfig
	SubobjectLocalSignature
	SubobjectGlobalSignature
	SubobjectPipelineConfig
	SubobjectExportsAssociation
)

// String returns the string representation of SubobjectKind.
func (k SubobjectKind) String() string {
	switch k {
	case SubobjectLibrary:
		return "Library"
	case SubobjectHitGroup:
		return "HitGroup"
	case SubobjectShaderConfig:
		return "ShaderConfig"
	case SubobjectLocalSignature:
		return "LocalSignature"
	case SubobjectGlobalSignature:
		return "GlobalSignature"
	case SubobjectPipelineConfig:
		return "PipelineConfig"
	case SubobjectExportsAssociation:
		return "ExportsAssociation"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Subobject is one entry of a pipeline sub-object graph.
//
// The set of implementations is closed: LibrarySubobject, HitGroupSubobject,
// ShaderConfigSubobject, LocalSignatureSubobject, GlobalSignatureSubobject,
// PipelineConfigSubobject and ExportsAssociation.
type Subobject interface {
	Kind() SubobjectKind
	subobject()
}

// HitGroupType selects the geometry a hit group intersects.
type HitGroupType uint32

// Hit group types.
const (
	HitGroupTriangles HitGroupType = iota
	HitGroupProcedural
)

// String returns the string representation of HitGroupType.
func (t HitGroupType) String() string {
	switch t {
	case HitGroupTriangles:
		return "Triangles"
	case HitGroupProcedural:
		return "Procedural"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// LibrarySubobject imports a compiled shader library.
type LibrarySubobject struct {
	Code    []byte
	Exports []string
}

// HitGroupSubobject declares a hit group export.
type HitGroupSubobject struct {
	Name         string
	Type         HitGroupType
	ClosestHit   string
	AnyHit       string // empty if absent
	Intersection string // empty if absent
}

// ShaderConfigSubobject sets payload and attribute sizes.
type ShaderConfigSubobject struct {
	MaxPayloadSize   uint32
	MaxAttributeSize uint32
}

// LocalSignatureSubobject declares a local signature.
type LocalSignatureSubobject struct {
	Signature Signature
}

// GlobalSignatureSubobject declares the global signature.
type GlobalSignatureSubobject struct {
	Signature Signature
}

// PipelineConfigSubobject limits trace recursion.
type PipelineConfigSubobject struct {
	MaxTraceRecursionDepth uint32
}

// ExportsAssociation associates the sub-object at index Subobject of the
// same graph with a list of exports.
type ExportsAssociation struct {
	Subobject int
	Exports   []string
}

func (LibrarySubobject) Kind() SubobjectKind         { return SubobjectLibrary }
func (HitGroupSubobject) Kind() SubobjectKind        { return SubobjectHitGroup }
func (ShaderConfigSubobject) Kind() SubobjectKind    { return SubobjectShaderConfig }
func (LocalSignatureSubobject) Kind() SubobjectKind  { return SubobjectLocalSignature }
func (GlobalSignatureSubobject) Kind() SubobjectKind { return SubobjectGlobalSignature }
func (PipelineConfigSubobject) Kind() SubobjectKind  { return SubobjectPipelineConfig }
func (ExportsAssociation) Kind() SubobjectKind       { return SubobjectExportsAssociation }

func (LibrarySubobject) subobject()         {}
func (HitGroupSubobject) subobject()        {}
func (ShaderConfigSubobject) subobject()    {}
func (LocalSignatureSubobject) subobject()  {}
func (GlobalSignatureSubobject) subobject() {}
func (PipelineConfigSubobject) subobject()  {}
func (ExportsAssociation) subobject()       {}

// PipelineStateDesc is the finalized sub-object graph submitted to
// CreatePipelineState.
type PipelineStateDesc struct {
	Label      string
	Subobjects []Subobject
}

// Kinds returns the kind of every sub-object in order.
func (d *PipelineStateDesc) Kinds() []SubobjectKind {
	kinds := make([]SubobjectKind, len(d.Subobjects))
	for i, s := range d.Subobjects {
		kinds[i] = s.Kind()
	}
	return kinds
}

// Validate checks that every association points at an earlier,
// non-association sub-object.
func (d *PipelineStateDesc) Validate() error {
	for i, s := range d.Subobjects {
		a, ok := s.(ExportsAssociation)
		if !ok {
			continue
		}
		if a.Subobject < 0 || a.Subobject >= i {
			return fmt.Errorf("rtcore: association %d references sub-object %d out of range", i, a.Subobject)
		}
		if d.Subobjects[a.Subobject].Kind() == SubobjectExportsAssociation {
			return fmt.Errorf("rtcore: association %d references another association", i)
		}
		if len(a.Exports) == 0 {
			return fmt.Errorf("rtcore: association %d has no exports", i)
		}
	}
	return nil
}

// String renders the graph one sub-object per line.
func (d *PipelineStateDesc) String() string {
	var sb strings.Builder
	for i, s := range d.Subobjects {
		fmt.Fprintf(&sb, "%3d %-18s", i, s.Kind())
		switch o := s.(type) {
		case LibrarySubobject:
			fmt.Fprintf(&sb, " %d bytes, exports %s", len(o.Code), strings.Join(o.Exports, ","))
		case HitGroupSubobject:
			fmt.Fprintf(&sb, " %s (%s) closest=%s", o.Name, o.Type, o.ClosestHit)
			if o.AnyHit != "" {
				fmt.Fprintf(&sb, " any=%s", o.AnyHit)
			}
			if o.Intersection != "" {
				fmt.Fprintf(&sb, " intersection=%s", o.Intersection)
			}
		case ShaderConfigSubobject:
			fmt.Fprintf(&sb, " payload=%d attributes=%d", o.MaxPayloadSize, o.MaxAttributeSize)
		case PipelineConfigSubobject:
			fmt.Fprintf(&sb, " max recursion=%d", o.MaxTraceRecursionDepth)
		case ExportsAssociation:
			fmt.Fprintf(&sb, " -> %d [%s]", o.Subobject, strings.Join(o.Exports, ","))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
