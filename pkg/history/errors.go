package history

import (
	"fmt"
)

// InputResolutionError reports a stored reference name that no longer
// resolves against the scene. The offending feature is skipped and the
// rest of the history proceeds.
type InputResolutionError struct {
	Feature string
	Param   string
	Name    string
}

func (e *InputResolutionError) Error() string {
	return fmt.Sprintf("history: feature %s: parameter %q references %q, which is not in the scene",
		e.Feature, e.Param, e.Name)
}

// GeometryOperationError reports a boolean or remesh step that yielded no
// usable solid after any applicable fallback. The feature contributes no
// artifacts for the run.
type GeometryOperationError struct {
	Feature string
	Err     error
}

func (e *GeometryOperationError) Error() string {
	return fmt.Sprintf("history: feature %s: geometry operation failed: %v", e.Feature, e.Err)
}

func (e *GeometryOperationError) Unwrap() error { return e.Err }

// SchemaValidationError reports a parameter violating its declared
// constraint with no safe normalization. The feature is not run.
type SchemaValidationError struct {
	Feature string
	Err     error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("history: feature %s: invalid parameters: %v", e.Feature, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// FatalError reports a programmer-error condition, such as an unknown
// feature type at dispatch. It aborts the whole recompute.
type FatalError struct {
	Feature string
	Reason  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("history: feature %s: %s", e.Feature, e.Reason)
}
