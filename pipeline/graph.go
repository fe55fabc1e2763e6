package pipeline

import (
	"fmt"
	"slices"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

// graphCounts is the exact size of the sub-object graph a builder emits.
type graphCounts struct {
	subobjects   int
	associations int
	exports      int
}

func (b *Builder) counts() graphCounts {
	c := graphCounts{subobjects: len(b.libraries)}
	for _, row := range b.hitGroups {
		c.subobjects += len(row)
	}

	// Each payload config and each local layout is a declaration followed
	// by its association.
	c.subobjects += 2 * len(b.payloads)
	c.associations += len(b.payloads)
	for _, pc := range b.payloads {
		c.exports += len(pc.shaders)
	}
	c.subobjects += 2 * len(b.locals)
	c.associations += len(b.locals)
	for _, la := range b.locals {
		c.exports += len(la.shaders)
	}

	c.subobjects++ // pipeline config
	if b.global != nil {
		c.subobjects++
	}
	return c
}

// graph emits the sub-object graph in its fixed order. Associations refer
// to the sub-object they associate by index.
func (b *Builder) graph() (*rtcore.PipelineStateDesc, error) {
	c := b.counts()
	raytrace.Logger().Debug("pipeline: sub-object graph",
		"label", b.opts.label,
		"subobjects", c.subobjects,
		"associations", c.associations,
		"associated_exports", c.exports)

	subobjects := make([]rtcore.Subobject, 0, c.subobjects)
	associate := func(decl rtcore.Subobject, shaders []string) {
		subobjects = append(subobjects, decl)
		subobjects = append(subobjects, rtcore.ExportsAssociation{
			Subobject: len(subobjects) - 1,
			Exports:   slices.Clone(shaders),
		})
	}

	for _, lib := range b.libraries {
		subobjects = append(subobjects, rtcore.LibrarySubobject{
			Code:    lib.Code,
			Exports: slices.Clone(lib.Exports),
		})
	}
	for _, row := range b.hitGroups {
		for _, hg := range row {
			subobjects = append(subobjects, rtcore.HitGroupSubobject{
				Name:         hg.Name,
				Type:         hg.Type,
				ClosestHit:   hg.ClosestHit,
				AnyHit:       hg.AnyHit,
				Intersection: hg.Intersection,
			})
		}
	}
	for _, pc := range b.payloads {
		associate(rtcore.ShaderConfigSubobject{
			MaxPayloadSize:   pc.maxPayloadSize,
			MaxAttributeSize: pc.maxAttributeSize,
		}, pc.shaders)
	}
	for _, la := range b.locals {
		associate(rtcore.LocalSignatureSubobject{Signature: la.layout.Signature()}, la.shaders)
	}
	subobjects = append(subobjects, rtcore.PipelineConfigSubobject{MaxTraceRecursionDepth: b.maxRecursion})
	if b.global != nil {
		subobjects = append(subobjects, rtcore.GlobalSignatureSubobject{Signature: b.global.Signature()})
	}

	if len(subobjects) != c.subobjects {
		return nil, fmt.Errorf("pipeline: emitted %d sub-objects, expected %d", len(subobjects), c.subobjects)
	}
	return &rtcore.PipelineStateDesc{Label: b.opts.label, Subobjects: subobjects}, nil
}
