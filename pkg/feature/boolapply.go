package feature

import (
	"fmt"

	"github.com/chazu/adze/pkg/kernel"
)

// ApplyOptions tunes the boolean-application orchestrator.
type ApplyOptions struct {
	// CapOffset nudges the tool outward along its face normals before
	// each combine, avoiding exact-coplanar degeneracies between a cut
	// cap and a pre-existing target face.
	CapOffset float64
	// AutoFallback retries a failed SUBTRACT step as UNION before giving
	// up on the step.
	AutoFallback bool
}

// Apply combines a tool solid against the request's targets in declared
// order. OpNone adds the tool verbatim and removes nothing. For OpUnion
// the running result folds into each next target, merging everything into
// one body. For OpSubtract and OpIntersect every target is combined with
// the original tool and the per-target results are unioned, so a cut
// through several bodies cuts each body independently. Each successful
// step retires its consumed target; the final output is one artifact
// named "<owner>:result" plus the set of retired targets.
//
// Unresolved target names are dropped with a warning, not an error. A
// failing step retires nothing; when every step fails, the last failure
// is returned and the scene is untouched.
func Apply(ctx *Context, tool *kernel.Solid, req BooleanRequest, opts ApplyOptions) (Result, error) {
	owner := ctx.Owner
	if req.Operation == OpNone {
		return Result{Added: []Artifact{SolidArtifact(owner, tool)}}, nil
	}

	var targets []*kernel.Solid
	var retired []string
	for _, name := range req.Targets {
		art, ok := ctx.Scene.Resolve(name)
		if !ok {
			ctx.Logger().Warn("boolean target not in scene, dropping",
				"feature", owner, "target", name)
			continue
		}
		solid, ok := art.AsSolid()
		if !ok {
			ctx.Logger().Warn("boolean target is not a solid, dropping",
				"feature", owner, "target", name, "kind", art.Kind().String())
			continue
		}
		targets = append(targets, solid)
		retired = append(retired, name)
	}
	if len(targets) == 0 {
		ctx.Logger().Warn("no boolean targets resolved, adding tool verbatim",
			"feature", owner, "operation", string(req.Operation))
		return Result{Added: []Artifact{SolidArtifact(owner, tool)}}, nil
	}

	var result *kernel.Solid
	var removed []string
	var lastErr error
	for i, target := range targets {
		step := tool
		if req.Operation == OpUnion && result != nil {
			step = result
		}
		combined, err := Combine(target, step, req.Operation, opts)
		if err != nil {
			ctx.Logger().Warn("boolean step failed, target kept",
				"feature", owner, "target", retired[i], "err", err)
			lastErr = err
			continue
		}
		if result != nil && req.Operation != OpUnion {
			combined, err = result.Union(combined, nil)
			if err != nil {
				ctx.Logger().Warn("boolean step failed, target kept",
					"feature", owner, "target", retired[i], "err", err)
				lastErr = err
				continue
			}
		}
		result = combined
		removed = append(removed, retired[i])
	}
	if len(removed) == 0 {
		return Result{}, fmt.Errorf("boolean %s for %s: every step failed: %w",
			req.Operation, owner, lastErr)
	}

	result.SetName(owner + ":result")
	return Result{
		Added:   []Artifact{SolidArtifact(owner, result)},
		Removed: removed,
	}, nil
}

// Combine runs one boolean step of target against tool, honoring the
// cap-offset and fallback policies.
func Combine(target, tool *kernel.Solid, op BoolOp, opts ApplyOptions) (*kernel.Solid, error) {
	csgOpts := &kernel.CSGOptions{CapOffset: opts.CapOffset}
	switch op {
	case OpUnion:
		return target.Union(tool, csgOpts)
	case OpSubtract:
		result, err := target.Subtract(tool, csgOpts)
		if err != nil && opts.AutoFallback {
			return target.Union(tool, csgOpts)
		}
		return result, err
	case OpIntersect:
		return target.Intersect(tool, csgOpts)
	}
	return nil, fmt.Errorf("unsupported boolean operation %q", op)
}
