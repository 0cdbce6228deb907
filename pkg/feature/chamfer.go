package feature

import (
	"fmt"

	"github.com/chazu/adze/pkg/kernel"
	"github.com/chazu/adze/pkg/kernel/sdfxtool"
)

func init() {
	defaultRegistry.Register("chamfer", func(id string) Feature {
		return &chamferFeature{Base: NewBase(id, chamferSchema)}
	})
}

var chamferSchema = Schema{
	{Name: "edge", Type: TypeReference, Kinds: []Kind{KindEdge}, Hint: "circular rim edge to bevel"},
	{Name: "size", Type: TypeNumber, Default: 0.5, Min: minPtr(1e-6), Hint: "leg length of the 45-degree bevel"},
	{Name: "cells", Type: TypeNumber, Default: float64(sdfxtool.DefaultMeshCells), Min: minPtr(16)},
}

// chamferFeature bevels a horizontal circular rim edge by subtracting a
// revolved triangular ring tool.
type chamferFeature struct {
	Base
}

func (f *chamferFeature) Type() string   { return "chamfer" }
func (f *chamferFeature) Schema() Schema { return chamferSchema }

func (f *chamferFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	ref, err := resolveRimEdge(ctx, f.ID(), p.Strings("edge"))
	if err != nil {
		return Result{}, err
	}

	tool, err := sdfxtool.ChamferRing(f.ID(), ref.ringRadius, p.Number("size", 0.5), ref.rimZ,
		int(p.Number("cells", 0)))
	if err != nil {
		return Result{}, fmt.Errorf("chamfer %s: %w", f.ID(), err)
	}
	tool.BakeTransform(kernel.Translate(kernel.Vec3{X: ref.axis.X, Y: ref.axis.Y}))

	req := BooleanRequest{Targets: []string{ref.solid.Name()}, Operation: OpSubtract}
	return Apply(ctx, tool, req, ApplyOptions{AutoFallback: true})
}
