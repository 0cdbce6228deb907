// Package history implements the feature execution engine: the ordered
// feature list, the named-artifact scene, reference resolution, and the
// strictly sequential recompute with per-feature error containment.
//
// The central correctness property is idempotence: a feature run twice
// with unchanged parameters and an unchanged upstream scene emits
// artifacts with identical names, which is what keeps downstream stored
// name references resolving after an unrelated upstream edit forces a
// full recompute.
package history

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chazu/adze/pkg/feature"
)

// Status is a history entry's state within the current recompute.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCommitted
	StatusFailed
)

// String returns the status name used in logs.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCommitted:
		return "committed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Entry pairs a feature with its execution state and its last-committed
// result. The cached result lets a recompute that stops at an earlier
// cursor keep later features' artifacts untouched.
type Entry struct {
	Feature feature.Feature
	Status  Status
	Err     error

	committed feature.Result
	hasResult bool
}

// Engine owns the ordered feature history and the scene. Execution is
// single-threaded and strictly ordered: no feature ever observes
// artifacts from a later-listed feature, and the scene is written only by
// the commit step between runs.
type Engine struct {
	log     *slog.Logger
	reg     *feature.Registry
	entries []*Entry
	scene   *Scene
	cursor  string // id of the last feature a recompute must reach; empty means all
}

// New returns an engine dispatching through the given registry.
func New(reg *feature.Registry, log *slog.Logger) *Engine {
	if reg == nil {
		reg = feature.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log, reg: reg, scene: NewScene()}
}

// Scene returns the live artifact index.
func (e *Engine) Scene() *Scene { return e.scene }

// Entries returns the history in list order.
func (e *Engine) Entries() []*Entry { return e.entries }

// Entry finds a history entry by feature id.
func (e *Engine) Entry(id string) (*Entry, bool) {
	for _, entry := range e.entries {
		if entry.Feature.ID() == id {
			return entry, true
		}
	}
	return nil, false
}

// Cursor returns the id of the recompute cursor, empty when the whole
// history runs.
func (e *Engine) Cursor() string { return e.cursor }

// SetCursor moves the recompute cursor to a feature id, or clears it with
// an empty id.
func (e *Engine) SetCursor(id string) error {
	if id != "" {
		if _, ok := e.Entry(id); !ok {
			return &FatalError{Feature: id, Reason: "cursor references a feature not in the history"}
		}
	}
	e.cursor = id
	return nil
}

// Append constructs a feature of the given type, applies params over the
// schema defaults, and adds it to the end of the history. An empty id is
// replaced with a generated one. Unknown types are fatal.
func (e *Engine) Append(typeName, id string, params map[string]any) (feature.Feature, error) {
	ctor, ok := e.reg.GetSafe(typeName)
	if !ok {
		return nil, &FatalError{Feature: id, Reason: fmt.Sprintf("unknown feature type %q", typeName)}
	}
	if id != "" {
		if _, dup := e.Entry(id); dup {
			return nil, &FatalError{Feature: id, Reason: "duplicate feature id"}
		}
	} else {
		id = uuid.NewString()
	}
	f := ctor(id)
	if setter, ok := f.(interface{ SetParams(map[string]any) }); ok && params != nil {
		setter.SetParams(params)
	}
	e.entries = append(e.entries, &Entry{Feature: f, Status: StatusPending})
	return f, nil
}

// Recompute rebuilds the scene from empty, running every feature from the
// start of the history through cursorID inclusive. Features after the
// cursor do not run; their last-committed artifacts are re-applied
// untouched. An empty cursorID runs the whole history.
//
// Recoverable failures (dangling references, invalid parameters, geometry
// failures) mark their entry Failed, contribute nothing, and let the rest
// of the history proceed; the per-entry error records the cause. Only
// programmer errors abort.
func (e *Engine) Recompute(cursorID string) error {
	stop := len(e.entries) - 1
	if cursorID != "" {
		stop = -1
		for i, entry := range e.entries {
			if entry.Feature.ID() == cursorID {
				stop = i
				break
			}
		}
		if stop < 0 {
			return &FatalError{Feature: cursorID, Reason: "recompute cursor not in the history"}
		}
	}
	e.cursor = cursorID

	e.scene = NewScene()
	for i, entry := range e.entries {
		if i <= stop {
			e.runEntry(entry)
			continue
		}
		// Past the cursor: keep the last committed result as-is.
		if entry.hasResult {
			e.commit(entry.committed)
		}
	}
	return nil
}

// runEntry drives one entry through Pending → Running → Committed|Failed.
func (e *Engine) runEntry(entry *Entry) {
	f := entry.Feature
	entry.Status = StatusRunning
	entry.Err = nil

	if err := f.Schema().Validate(f.Params()); err != nil {
		e.fail(entry, &SchemaValidationError{Feature: f.ID(), Err: err})
		return
	}
	if err := e.resolveReferences(f); err != nil {
		e.fail(entry, err)
		return
	}

	ctx := &feature.Context{Scene: e.scene, Log: e.log, Owner: f.ID()}
	result, err := f.Run(ctx)
	if err != nil {
		e.fail(entry, &GeometryOperationError{Feature: f.ID(), Err: err})
		return
	}

	e.commit(result)
	entry.committed = result
	entry.hasResult = true
	entry.Status = StatusCommitted
	e.log.Debug("feature committed", "feature", f.ID(), "type", f.Type(),
		"added", len(result.Added), "removed", len(result.Removed))
}

// resolveReferences checks every reference-valued parameter against the
// current scene before the feature runs. Boolean-operation targets are
// exempt: the orchestrator drops unresolved targets with a warning.
func (e *Engine) resolveReferences(f feature.Feature) error {
	params := f.Params()
	for _, spec := range f.Schema() {
		if spec.Type != feature.TypeReference {
			continue
		}
		for _, name := range params.Strings(spec.Name) {
			if _, ok := e.scene.Resolve(name); !ok {
				return &InputResolutionError{Feature: f.ID(), Param: spec.Name, Name: name}
			}
		}
	}
	return nil
}

// commit applies a result to the scene: removals first, with descendant
// cascade, then additions.
func (e *Engine) commit(result feature.Result) {
	for _, name := range result.Removed {
		e.scene.remove(name)
	}
	for _, a := range result.Added {
		e.scene.add(a)
	}
}

func (e *Engine) fail(entry *Entry, err error) {
	entry.Status = StatusFailed
	entry.Err = err
	entry.committed = feature.Result{}
	entry.hasResult = false
	e.log.Warn("feature failed, skipping", "feature", entry.Feature.ID(),
		"type", entry.Feature.Type(), "err", err)
}
