// Package feature defines the feature contract of the modeling history:
// a declarative parameter schema plus a Run procedure that reads resolved
// upstream artifacts from the scene and returns artifacts to add and
// remove. It also carries the feature registry and the boolean-application
// orchestrator shared by every solid-emitting feature.
package feature

import (
	"log/slog"

	"github.com/chazu/adze/pkg/kernel"
)

// BoolOp selects how a tool solid combines with its targets.
type BoolOp string

const (
	OpNone      BoolOp = "NONE"
	OpUnion     BoolOp = "UNION"
	OpSubtract  BoolOp = "SUBTRACT"
	OpIntersect BoolOp = "INTERSECT"
)

// Transform is the position/rotation/scale parameter payload. Rotation is
// Euler angles in degrees, applied Z then Y then X after scaling.
type Transform struct {
	Position kernel.Vec3 `json:"position"`
	Rotation kernel.Vec3 `json:"rotation"`
	Scale    kernel.Vec3 `json:"scale"`
}

// IdentityTransform returns the no-op transform.
func IdentityTransform() Transform {
	return Transform{Scale: kernel.Vec3{X: 1, Y: 1, Z: 1}}
}

// Normalized replaces an unset zero scale with the identity scale, so a
// caller constructing a Transform literal for position only does not
// collapse the solid.
func (t Transform) Normalized() Transform {
	if t.Scale == (kernel.Vec3{}) {
		t.Scale = kernel.Vec3{X: 1, Y: 1, Z: 1}
	}
	return t
}

// BooleanRequest is the boolean_operation parameter payload: the targets
// the emitted tool solid combines against, in declared order.
type BooleanRequest struct {
	Targets   []string `json:"targets"`
	Operation BoolOp   `json:"operation"`
}

// Scene is the read-only artifact index a running feature sees. It is
// implemented by the history engine; features communicate mutation intent
// only through their returned Result.
type Scene interface {
	// Resolve looks up an artifact by its exact stored name.
	Resolve(name string) (Artifact, bool)
	// Artifacts returns every live artifact, ordered by name.
	Artifacts() []Artifact
}

// Context carries everything a feature may read while running.
type Context struct {
	Scene Scene
	Log   *slog.Logger
	Owner string // id of the running feature
}

// Logger returns the context logger, or a discard-equivalent default.
func (c *Context) Logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Result is what a feature's Run returns: artifacts to index into the
// scene and names of artifacts to retire. Removal cascades to named
// descendants of the removed artifact.
type Result struct {
	Added   []Artifact
	Removed []string
}

// Feature is one step in the modeling history.
//
// Run must not return an error for expected, recoverable conditions such
// as a dropped boolean target; it logs those and degrades its output.
// Errors are reserved for conditions that leave the feature without a
// usable result, such as a geometry operation failure.
type Feature interface {
	ID() string
	Type() string
	Schema() Schema
	Params() Params
	Persistent() map[string]any
	Run(ctx *Context) (Result, error)
}

// Base supplies the parameter and persistent-data plumbing shared by the
// built-in features. Embedders implement Type, Schema, and Run.
type Base struct {
	id         string
	params     Params
	persistent map[string]any
}

// NewBase creates feature plumbing seeded with the schema's defaults.
func NewBase(id string, schema Schema) Base {
	return Base{
		id:         id,
		params:     schema.Defaults(),
		persistent: make(map[string]any),
	}
}

// ID returns the feature's stable identifier.
func (b *Base) ID() string { return b.id }

// Params returns the mutable parameter map.
func (b *Base) Params() Params { return b.params }

// SetParam overwrites one parameter value.
func (b *Base) SetParam(name string, value any) { b.params[name] = value }

// SetParams overwrites parameter values in bulk, keeping defaults for
// names the input omits.
func (b *Base) SetParams(values map[string]any) {
	for k, v := range values {
		b.params[k] = v
	}
}

// Persistent returns the feature-local cache that survives recompute.
func (b *Base) Persistent() map[string]any { return b.persistent }

// SetPersistent replaces the persistent cache, used when loading a saved
// project.
func (b *Base) SetPersistent(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	b.persistent = data
}
