package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/raytrace"
)

// ErrCompilation is wrapped by every WGSL compilation failure.
var ErrCompilation = errors.New("shader: WGSL compilation failed")

// compileOptions configures CompileWGSL.
type compileOptions struct {
	validate bool
	debug    bool
}

// CompileOption configures CompileWGSL.
type CompileOption func(*compileOptions)

// WithValidation enables or disables IR validation. Enabled by default.
func WithValidation(enabled bool) CompileOption {
	return func(o *compileOptions) {
		o.validate = enabled
	}
}

// WithDebugInfo emits debug names into the generated SPIR-V.
func WithDebugInfo(enabled bool) CompileOption {
	return func(o *compileOptions) {
		o.debug = enabled
	}
}

// CompileWGSL compiles WGSL source to a SPIR-V library whose exports are the
// module's entry points.
func CompileWGSL(label, source string, opts ...CompileOption) (*Library, error) {
	o := compileOptions{validate: true}
	for _, opt := range opts {
		opt(&o)
	}

	module, err := lower(source)
	if err != nil {
		return nil, err
	}
	if o.validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompilation, err)
		}
		if len(verrs) > 0 {
			return nil, fmt.Errorf("%w: %w", ErrCompilation, verrs[0])
		}
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: spirv.Version1_3,
		Debug:   o.debug,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilation, err)
	}

	exports := EntryPoints(module)
	if len(exports) == 0 {
		return nil, fmt.Errorf("%w: %q declares no entry points", ErrCompilation, label)
	}
	raytrace.Logger().Debug("shader: compiled WGSL library",
		"label", label, "bytes", len(code), "exports", exports)
	return &Library{Label: label, Code: code, Exports: exports}, nil
}

// TranslateHLSL translates WGSL source to HLSL for toolchains that produce
// DXIL libraries. It returns the HLSL text and the original to generated
// entry point names.
func TranslateHLSL(source string) (string, map[string]string, error) {
	module, err := lower(source)
	if err != nil {
		return "", nil, err
	}
	code, info, err := hlsl.Compile(module, hlsl.DefaultOptions())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	var names map[string]string
	if info != nil {
		names = info.EntryPointNames
	}
	return code, names, nil
}

// EntryPoints returns the entry point names of module in declaration order.
func EntryPoints(module *ir.Module) []string {
	names := make([]string, 0, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		names = append(names, ep.Name)
	}
	return names
}

func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	return module, nil
}
