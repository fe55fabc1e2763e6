package softdevice

import (
	"fmt"

	"github.com/gogpu/raytrace/rtcore"
)

// registerClass groups register kinds that share a binding namespace.
type registerClass byte

const (
	classT registerClass = 't' // SRV
	classU registerClass = 'u' // UAV
	classB registerClass = 'b' // CBV and constants
	classS registerClass = 's' // sampler
)

type binding struct {
	class registerClass
	space uint32
}

type span struct{ lo, hi uint32 }

func validateSignature(desc *rtcore.SignatureDesc) error {
	if desc == nil {
		return fmt.Errorf("E_INVALIDARG: null signature description")
	}
	var dwords uint32
	used := make(map[binding][]span)
	claim := func(class registerClass, space, base, count uint32) error {
		key := binding{class, space}
		s := span{base, base + count - 1}
		for _, o := range used[key] {
			if s.lo <= o.hi && o.lo <= s.hi {
				return fmt.Errorf("E_INVALIDARG: register %c%d in space %d is bound more than once", class, base, space)
			}
		}
		used[key] = append(used[key], s)
		return nil
	}

	for i, p := range desc.Parameters {
		switch p.Type {
		case rtcore.ParameterConstants:
			dwords += p.Num32BitValues
			if err := claim(classB, p.RegisterSpace, p.ShaderRegister, 1); err != nil {
				return err
			}
		case rtcore.ParameterSRV:
			dwords += 2
			if err := claim(classT, p.RegisterSpace, p.ShaderRegister, 1); err != nil {
				return err
			}
		case rtcore.ParameterUAV:
			dwords += 2
			if err := claim(classU, p.RegisterSpace, p.ShaderRegister, 1); err != nil {
				return err
			}
		case rtcore.ParameterCBV:
			dwords += 2
			if err := claim(classB, p.RegisterSpace, p.ShaderRegister, 1); err != nil {
				return err
			}
		case rtcore.ParameterDescriptorTable:
			dwords++
			if len(p.Ranges) == 0 {
				return fmt.Errorf("E_INVALIDARG: parameter %d: descriptor table has no ranges", i)
			}
			samplers := 0
			for _, r := range p.Ranges {
				class := rangeClass(r.Type)
				if class == classS {
					samplers++
				}
				if err := claim(class, r.RegisterSpace, r.BaseShaderRegister, r.NumDescriptors); err != nil {
					return err
				}
			}
			if samplers != 0 && samplers != len(p.Ranges) {
				return fmt.Errorf("E_INVALIDARG: parameter %d: sampler ranges cannot share a descriptor table with CBV/SRV/UAV ranges", i)
			}
		default:
			return fmt.Errorf("E_INVALIDARG: parameter %d: unknown type %s", i, p.Type)
		}
	}
	if dwords > rtcore.MaxRootArgumentDWords {
		return fmt.Errorf("E_INVALIDARG: signature uses %d DWORDs, limit is %d", dwords, rtcore.MaxRootArgumentDWords)
	}
	return nil
}

func rangeClass(t rtcore.RangeType) registerClass {
	switch t {
	case rtcore.RangeSRV:
		return classT
	case rtcore.RangeUAV:
		return classU
	case rtcore.RangeCBV:
		return classB
	default:
		return classS
	}
}

// validatePipeline applies the state-object creation rules and returns the
// set of exported names.
func validatePipeline(desc *rtcore.PipelineStateDesc) (map[string]struct{}, error) {
	if desc == nil {
		return nil, fmt.Errorf("E_INVALIDARG: null pipeline description")
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("E_INVALIDARG: %w", err)
	}

	exports := make(map[string]struct{})
	var hitGroups []rtcore.HitGroupSubobject
	configs := 0
	for _, s := range desc.Subobjects {
		switch o := s.(type) {
		case rtcore.LibrarySubobject:
			for _, e := range o.Exports {
				if _, dup := exports[e]; dup {
					return nil, fmt.Errorf("E_INVALIDARG: export %q is declared more than once", e)
				}
				exports[e] = struct{}{}
			}
		case rtcore.HitGroupSubobject:
			hitGroups = append(hitGroups, o)
		case rtcore.PipelineConfigSubobject:
			configs++
			if o.MaxTraceRecursionDepth > 31 {
				return nil, fmt.Errorf("E_INVALIDARG: max trace recursion depth %d exceeds 31", o.MaxTraceRecursionDepth)
			}
		}
	}
	if configs != 1 {
		return nil, fmt.Errorf("E_INVALIDARG: expected one pipeline config sub-object, found %d", configs)
	}

	for _, hg := range hitGroups {
		for _, imp := range []string{hg.ClosestHit, hg.AnyHit, hg.Intersection} {
			if imp == "" {
				continue
			}
			if _, ok := exports[imp]; !ok {
				return nil, fmt.Errorf("E_INVALIDARG: hit group %q imports unknown shader %q", hg.Name, imp)
			}
		}
	}
	for _, hg := range hitGroups {
		if _, dup := exports[hg.Name]; dup {
			return nil, fmt.Errorf("E_INVALIDARG: export %q is declared more than once", hg.Name)
		}
		exports[hg.Name] = struct{}{}
	}

	for i, s := range desc.Subobjects {
		a, ok := s.(rtcore.ExportsAssociation)
		if !ok {
			continue
		}
		for _, e := range a.Exports {
			if _, ok := exports[e]; !ok {
				return nil, fmt.Errorf("E_INVALIDARG: association %d names unknown export %q", i, e)
			}
		}
	}
	return exports, nil
}
