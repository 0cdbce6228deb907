package feature

import (
	"github.com/chazu/adze/pkg/kernel"
)

func init() {
	defaultRegistry.Register("cylinder", func(id string) Feature {
		return &cylinderFeature{Base: NewBase(id, cylinderSchema)}
	})
}

var cylinderSchema = Schema{
	{Name: "name", Type: TypeString, Default: "", Hint: "solid name, defaults to the feature id"},
	{Name: "radius", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6)},
	{Name: "height", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6)},
	{Name: "segments", Type: TypeNumber, Default: 32.0, Min: minPtr(3), Hint: "faceting of the side wall"},
	{Name: "transform", Type: TypeTransform},
	{Name: "boolean", Type: TypeBooleanOp},
}

// cylinderFeature emits a cylinder with its base circle centered at the
// origin and its axis along +Z before the placement transform.
type cylinderFeature struct {
	Base
}

func (f *cylinderFeature) Type() string   { return "cylinder" }
func (f *cylinderFeature) Schema() Schema { return cylinderSchema }

func (f *cylinderFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	name := p.String("name", f.ID())
	solid := kernel.NewCylinder(name,
		p.Number("radius", 1), p.Number("height", 1), int(p.Number("segments", 32)))

	tr := p.Transform("transform").Normalized()
	solid.BakeTRS(tr.Position, tr.Rotation, tr.Scale)

	return Apply(ctx, solid, p.Boolean("boolean"), ApplyOptions{})
}
