package feature

import (
	"github.com/chazu/adze/pkg/kernel"
)

func init() {
	defaultRegistry.Register("hole", func(id string) Feature {
		return &holeFeature{Base: NewBase(id, holeSchema)}
	})
	defaultRegistry.RegisterAlias("drill", "hole")
}

var holeSchema = Schema{
	{Name: "target", Type: TypeReference, Kinds: []Kind{KindSolid}, Hint: "solid to drill into"},
	{Name: "radius", Type: TypeNumber, Default: 0.5, Min: minPtr(1e-6)},
	{Name: "depth", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6)},
	{Name: "segments", Type: TypeNumber, Default: 32.0, Min: minPtr(3)},
	{Name: "transform", Type: TypeTransform, Hint: "placement of the drill, base circle at the origin, axis +Z"},
	{Name: "capOffset", Type: TypeNumber, Default: 0.0, Min: minPtr(0),
		Hint: "outward tool offset against cut caps coplanar with existing faces"},
}

// holeFeature subtracts a placed cylinder from a target solid. The cap
// offset knob handles the flush-bottom case, where the drill's bottom cap
// would be exactly coplanar with a target face.
type holeFeature struct {
	Base
}

func (f *holeFeature) Type() string   { return "hole" }
func (f *holeFeature) Schema() Schema { return holeSchema }

func (f *holeFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	tool := kernel.NewCylinder(f.ID()+"_drill",
		p.Number("radius", 0.5), p.Number("depth", 1), int(p.Number("segments", 32)))

	tr := p.Transform("transform").Normalized()
	tool.BakeTRS(tr.Position, tr.Rotation, tr.Scale)

	req := BooleanRequest{Targets: p.Strings("target"), Operation: OpSubtract}
	return Apply(ctx, tool, req, ApplyOptions{CapOffset: p.Number("capOffset", 0)})
}
