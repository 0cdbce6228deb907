package feature

import (
	"fmt"

	"github.com/chazu/adze/pkg/kernel"
)

func init() {
	defaultRegistry.Register("remesh", func(id string) Feature {
		return &remeshFeature{Base: NewBase(id, remeshSchema)}
	})
}

var remeshSchema = Schema{
	{Name: "target", Type: TypeReference, Kinds: []Kind{KindSolid}, Hint: "solid to refine"},
	{Name: "maxEdgeLength", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6)},
	{Name: "maxIterations", Type: TypeNumber, Default: float64(kernel.DefaultRemeshIterations), Min: minPtr(1)},
}

// remeshFeature refines a target solid in place of itself: the refined
// copy keeps the target's name and face names, so downstream references
// keep resolving while edge handles are re-derived from the new mesh.
type remeshFeature struct {
	Base
}

func (f *remeshFeature) Type() string   { return "remesh" }
func (f *remeshFeature) Schema() Schema { return remeshSchema }

func (f *remeshFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	names := p.Strings("target")
	if len(names) == 0 {
		return Result{}, fmt.Errorf("%s: no target selected", f.ID())
	}
	art, ok := ctx.Scene.Resolve(names[0])
	if !ok {
		return Result{}, fmt.Errorf("%s: target %q not in scene", f.ID(), names[0])
	}
	target, ok := art.AsSolid()
	if !ok {
		return Result{}, fmt.Errorf("%s: target %q is a %s, not a solid", f.ID(), names[0], art.Kind())
	}

	refined := target.Clone()
	err := refined.Remesh(kernel.RemeshOptions{
		MaxEdgeLength: p.Number("maxEdgeLength", 1),
		MaxIterations: int(p.Number("maxIterations", kernel.DefaultRemeshIterations)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", f.ID(), err)
	}

	return Result{
		Added:   []Artifact{SolidArtifact(f.ID(), refined)},
		Removed: []string{target.Name()},
	}, nil
}
