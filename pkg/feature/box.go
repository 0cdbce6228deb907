package feature

import (
	"github.com/chazu/adze/pkg/kernel"
)

func init() {
	defaultRegistry.Register("box", func(id string) Feature {
		return &boxFeature{Base: NewBase(id, boxSchema)}
	})
	defaultRegistry.RegisterAlias("cube", "box")
}

var boxSchema = Schema{
	{Name: "name", Type: TypeString, Default: "", Hint: "solid name, defaults to the feature id"},
	{Name: "width", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6), Hint: "extent along X"},
	{Name: "depth", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6), Hint: "extent along Y"},
	{Name: "height", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6), Hint: "extent along Z"},
	{Name: "transform", Type: TypeTransform, Hint: "placement baked into the vertices"},
	{Name: "boolean", Type: TypeBooleanOp, Hint: "targets to combine the box against"},
}

// boxFeature emits an axis-aligned box with its minimum corner at the
// origin before the placement transform.
type boxFeature struct {
	Base
}

func (f *boxFeature) Type() string   { return "box" }
func (f *boxFeature) Schema() Schema { return boxSchema }

func (f *boxFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	name := p.String("name", f.ID())
	solid := kernel.NewBox(name, p.Number("width", 1), p.Number("depth", 1), p.Number("height", 1))

	tr := p.Transform("transform").Normalized()
	solid.BakeTRS(tr.Position, tr.Rotation, tr.Scale)

	return Apply(ctx, solid, p.Boolean("boolean"), ApplyOptions{})
}
