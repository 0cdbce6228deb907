package feature

import (
	"fmt"
	"math"

	"github.com/chazu/adze/pkg/kernel"
	"github.com/chazu/adze/pkg/kernel/sdfxtool"
)

func init() {
	defaultRegistry.Register("fillet", func(id string) Feature {
		return &filletFeature{Base: NewBase(id, filletSchema)}
	})
}

var filletSchema = Schema{
	{Name: "edge", Type: TypeReference, Kinds: []Kind{KindEdge}, Hint: "circular rim edge to round"},
	{Name: "radius", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6)},
	{Name: "direction", Type: TypeOptions, Default: "INSET", Options: []string{"INSET"}},
	{Name: "cells", Type: TypeNumber, Default: float64(sdfxtool.DefaultMeshCells), Min: minPtr(16)},
}

// filletFeature rounds a horizontal circular rim edge by subtracting a
// revolved quarter-round tool. When the subtraction fails it falls back
// to union, keeping the model buildable rather than propagating the
// geometric failure.
type filletFeature struct {
	Base
}

func (f *filletFeature) Type() string   { return "fillet" }
func (f *filletFeature) Schema() Schema { return filletSchema }

func (f *filletFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	ref, err := resolveRimEdge(ctx, f.ID(), p.Strings("edge"))
	if err != nil {
		return Result{}, err
	}

	radius := p.Number("radius", 1)
	tool, err := sdfxtool.FilletRing(f.ID(), ref.ringRadius, radius, ref.rimZ, int(p.Number("cells", 0)))
	if err != nil {
		return Result{}, fmt.Errorf("fillet %s: %w", f.ID(), err)
	}
	tool.BakeTransform(kernel.Translate(kernel.Vec3{X: ref.axis.X, Y: ref.axis.Y}))

	req := BooleanRequest{Targets: []string{ref.solid.Name()}, Operation: OpSubtract}
	return Apply(ctx, tool, req, ApplyOptions{AutoFallback: true})
}

// rimEdge describes a circular rim located from an edge view: the axis
// position in the XY plane, the rim height, and the ring radius.
type rimEdge struct {
	solid      *kernel.Solid
	axis       kernel.Vec3
	rimZ       float64
	ringRadius float64
}

// resolveRimEdge resolves an edge reference and checks it is a circle in
// a horizontal plane, which is what the revolved ring tools cut.
func resolveRimEdge(ctx *Context, owner string, names []string) (rimEdge, error) {
	if len(names) == 0 {
		return rimEdge{}, fmt.Errorf("%s: no edge selected", owner)
	}
	art, ok := ctx.Scene.Resolve(names[0])
	if !ok {
		return rimEdge{}, fmt.Errorf("%s: edge %q not in scene", owner, names[0])
	}
	ref, ok := art.AsEdge()
	if !ok {
		return rimEdge{}, fmt.Errorf("%s: %q is a %s, not an edge", owner, names[0], art.Kind())
	}

	views := ref.Solid.Materialize()
	edge, ok := views.Edges[ref.Edge]
	if !ok {
		return rimEdge{}, fmt.Errorf("%s: edge %q no longer derivable on %s",
			owner, ref.Edge, ref.Solid.Name())
	}

	ringRadius := edge.Length / (2 * math.Pi)
	for _, seg := range edge.Segments {
		for _, vi := range seg {
			pt := ref.Solid.Vertex(vi)
			if math.Abs(pt.Z-edge.Centroid.Z) > 1e-6*math.Max(1, math.Abs(edge.Centroid.Z)) {
				return rimEdge{}, fmt.Errorf("%s: edge %q is not in a horizontal plane", owner, ref.Edge)
			}
			d := math.Hypot(pt.X-edge.Centroid.X, pt.Y-edge.Centroid.Y)
			if math.Abs(d-ringRadius) > 0.1*ringRadius {
				return rimEdge{}, fmt.Errorf("%s: edge %q is not circular", owner, ref.Edge)
			}
		}
	}
	return rimEdge{
		solid:      ref.Solid,
		axis:       kernel.Vec3{X: edge.Centroid.X, Y: edge.Centroid.Y},
		rimZ:       edge.Centroid.Z,
		ringRadius: ringRadius,
	}, nil
}
