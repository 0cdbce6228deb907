package feature

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/chazu/adze/pkg/kernel"
)

func init() {
	defaultRegistry.Register("extrude", func(id string) Feature {
		return &extrudeFeature{Base: NewBase(id, extrudeSchema)}
	})
}

var extrudeSchema = Schema{
	{Name: "name", Type: TypeString, Default: "", Hint: "solid name, defaults to the feature id"},
	{Name: "sketch", Type: TypeFile, Default: "", Hint: "path to a sketch JSON file with a points array"},
	{Name: "height", Type: TypeNumber, Default: 1.0, Min: minPtr(1e-6)},
	{Name: "transform", Type: TypeTransform},
	{Name: "boolean", Type: TypeBooleanOp},
}

// extrudeFeature extrudes a closed 2D profile along +Z. The profile comes
// from a sketch file ({"points": [[x, y], ...]}, counter-clockwise) and
// is cached in persistentData so a recompute still runs after the file is
// gone.
type extrudeFeature struct {
	Base
}

func (f *extrudeFeature) Type() string   { return "extrude" }
func (f *extrudeFeature) Schema() Schema { return extrudeSchema }

func (f *extrudeFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	profile, err := f.loadProfile(ctx)
	if err != nil {
		return Result{}, err
	}

	name := p.String("name", f.ID())
	solid, err := kernel.NewExtrusion(name, profile, p.Number("height", 1))
	if err != nil {
		return Result{}, fmt.Errorf("extrude %s: %w", f.ID(), err)
	}

	tr := p.Transform("transform").Normalized()
	solid.BakeTRS(tr.Position, tr.Rotation, tr.Scale)

	return Apply(ctx, solid, p.Boolean("boolean"), ApplyOptions{})
}

// loadProfile reads the sketch file when present, refreshing the cached
// copy in persistentData; otherwise it falls back to the cache.
func (f *extrudeFeature) loadProfile(ctx *Context) ([]kernel.Vec2, error) {
	path := f.Params().String("sketch", "")
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			profile, perr := parseSketch(data)
			if perr != nil {
				return nil, fmt.Errorf("extrude %s: sketch %s: %w", f.ID(), path, perr)
			}
			f.Persistent()["profile"] = encodeProfile(profile)
			return profile, nil
		}
		ctx.Logger().Warn("sketch file unreadable, using cached profile",
			"feature", f.ID(), "path", path, "err", err)
	}

	profile, ok := decodeProfile(f.Persistent()["profile"])
	if !ok || len(profile) < 3 {
		return nil, fmt.Errorf("extrude %s: no sketch profile available", f.ID())
	}
	return profile, nil
}

func parseSketch(data []byte) ([]kernel.Vec2, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	points := gjson.GetBytes(data, "points")
	if !points.IsArray() {
		return nil, fmt.Errorf("missing points array")
	}
	var out []kernel.Vec2
	for _, pt := range points.Array() {
		pair := pt.Array()
		if len(pair) != 2 {
			return nil, fmt.Errorf("point %d: expected [x, y]", len(out))
		}
		out = append(out, kernel.Vec2{X: pair[0].Float(), Y: pair[1].Float()})
	}
	if len(out) < 3 {
		return nil, fmt.Errorf("profile needs at least 3 points, got %d", len(out))
	}
	return out, nil
}

// encodeProfile stores the profile as generic JSON shapes so the
// persistentData map serializes cleanly.
func encodeProfile(profile []kernel.Vec2) []any {
	out := make([]any, len(profile))
	for i, pt := range profile {
		out[i] = []any{pt.X, pt.Y}
	}
	return out
}

func decodeProfile(v any) ([]kernel.Vec2, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]kernel.Vec2, 0, len(list))
	for _, e := range list {
		pair, ok := e.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		x, okx := asFloat(pair[0])
		y, oky := asFloat(pair[1])
		if !okx || !oky {
			return nil, false
		}
		out = append(out, kernel.Vec2{X: x, Y: y})
	}
	return out, true
}
