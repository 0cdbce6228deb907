package feature

import (
	"fmt"
)

func init() {
	defaultRegistry.Register("boolean", func(id string) Feature {
		return &combineFeature{Base: NewBase(id, combineSchema)}
	})
	defaultRegistry.RegisterAlias("combine", "boolean")
}

var combineSchema = Schema{
	{Name: "tool", Type: TypeReference, Kinds: []Kind{KindSolid}, Hint: "existing solid used as the tool"},
	{Name: "boolean", Type: TypeBooleanOp, Hint: "targets and operation"},
	{Name: "capOffset", Type: TypeNumber, Default: 0.0, Min: minPtr(0)},
}

// combineFeature applies an existing scene solid as a boolean tool
// against other scene solids. The tool artifact is consumed along with
// the targets; the original tool solid is never mutated.
type combineFeature struct {
	Base
}

func (f *combineFeature) Type() string   { return "boolean" }
func (f *combineFeature) Schema() Schema { return combineSchema }

func (f *combineFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	names := p.Strings("tool")
	if len(names) == 0 {
		return Result{}, fmt.Errorf("%s: no tool selected", f.ID())
	}
	art, ok := ctx.Scene.Resolve(names[0])
	if !ok {
		return Result{}, fmt.Errorf("%s: tool %q not in scene", f.ID(), names[0])
	}
	toolSrc, ok := art.AsSolid()
	if !ok {
		return Result{}, fmt.Errorf("%s: tool %q is a %s, not a solid", f.ID(), names[0], art.Kind())
	}

	req := p.Boolean("boolean")
	if req.Operation == OpNone {
		ctx.Logger().Warn("boolean feature with NONE operation is a no-op", "feature", f.ID())
		return Result{}, nil
	}
	result, err := Apply(ctx, toolSrc.Clone(), req, ApplyOptions{CapOffset: p.Number("capOffset", 0)})
	if err != nil {
		return Result{}, err
	}
	if len(result.Removed) > 0 {
		result.Removed = append(result.Removed, toolSrc.Name())
	}
	return result, nil
}
