package feature

import (
	"fmt"

	"github.com/chazu/adze/pkg/kernel"
)

func init() {
	defaultRegistry.Register("linear_pattern", func(id string) Feature {
		return &patternFeature{Base: NewBase(id, patternSchema)}
	})
	defaultRegistry.RegisterAlias("pattern", "linear_pattern")
}

var patternSchema = Schema{
	{Name: "source", Type: TypeReference, Kinds: []Kind{KindSolid}, Hint: "solid to repeat"},
	{Name: "count", Type: TypeNumber, Default: 2.0, Min: minPtr(1), Hint: "total instances including the source"},
	{Name: "offset", Type: TypeTransform, Hint: "per-instance translation"},
	{Name: "booleanMode", Type: TypeOptions, Default: "UNION", Options: []string{"NONE", "UNION"}},
}

// patternFeature repeats a source solid along a linear offset. Instance 1
// keeps the source's face names; every later instance is retagged
// "<face>::<featureID>_<i>" before baking its offset, so unioning the
// instances can never collide names.
type patternFeature struct {
	Base
}

func (f *patternFeature) Type() string   { return "linear_pattern" }
func (f *patternFeature) Schema() Schema { return patternSchema }

func (f *patternFeature) Run(ctx *Context) (Result, error) {
	p := f.Params()
	names := p.Strings("source")
	if len(names) == 0 {
		return Result{}, fmt.Errorf("%s: no source selected", f.ID())
	}
	art, ok := ctx.Scene.Resolve(names[0])
	if !ok {
		return Result{}, fmt.Errorf("%s: source %q not in scene", f.ID(), names[0])
	}
	source, ok := art.AsSolid()
	if !ok {
		return Result{}, fmt.Errorf("%s: source %q is a %s, not a solid", f.ID(), names[0], art.Kind())
	}

	count := int(p.Number("count", 2))
	offset := p.Transform("offset").Position
	identityRot := kernel.Vec3{}
	identityScale := kernel.Vec3{X: 1, Y: 1, Z: 1}

	instances := make([]*kernel.Solid, 0, count)
	for i := 1; i <= count; i++ {
		inst := source.Clone()
		if i > 1 {
			inst.RetagFaces(fmt.Sprintf("%s_%d", f.ID(), i))
			inst.BakeTRS(offset.Scale(float64(i-1)), identityRot, identityScale)
		}
		inst.SetName(fmt.Sprintf("%s:%d", f.ID(), i))
		instances = append(instances, inst)
	}

	result := Result{Removed: []string{source.Name()}}
	if p.String("booleanMode", "UNION") == "NONE" {
		for _, inst := range instances {
			result.Added = append(result.Added, SolidArtifact(f.ID(), inst))
		}
		return result, nil
	}

	merged := instances[0]
	for _, inst := range instances[1:] {
		var err error
		merged, err = merged.Union(inst, nil)
		if err != nil {
			return Result{}, fmt.Errorf("%s: union of instance %s: %w", f.ID(), inst.Name(), err)
		}
	}
	merged.SetName(f.ID() + ":result")
	result.Added = []Artifact{SolidArtifact(f.ID(), merged)}
	return result, nil
}
