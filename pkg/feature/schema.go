package feature

import (
	"fmt"
	"math"
)

// ParamType enumerates the parameter kinds a feature schema can declare.
type ParamType int

const (
	TypeString ParamType = iota
	TypeNumber
	TypeBoolean
	TypeOptions
	TypeReference // by-name selection of scene artifacts
	TypeTransform
	TypeBooleanOp // {targets, operation} request
	TypeFile
	TypeButton // UI action hook, no persisted value
)

// String returns the wire name of the parameter type.
func (t ParamType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeOptions:
		return "options"
	case TypeReference:
		return "reference_selection"
	case TypeTransform:
		return "transform"
	case TypeBooleanOp:
		return "boolean_operation"
	case TypeFile:
		return "file"
	case TypeButton:
		return "button"
	}
	return "unknown"
}

// ParamSpec declares one parameter: its type, default, and the
// type-specific constraints validation enforces.
type ParamSpec struct {
	Name    string
	Type    ParamType
	Default any
	Hint    string

	// Number constraints. Nil means unbounded on that side.
	Min *float64
	Max *float64

	// Options choices.
	Options []string

	// Reference filtering.
	Kinds    []Kind
	Multiple bool
}

// Schema is an ordered parameter declaration list.
type Schema []ParamSpec

// Spec returns the declaration for a parameter name.
func (s Schema) Spec(name string) (ParamSpec, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Defaults builds a parameter map holding every declared default.
func (s Schema) Defaults() Params {
	out := make(Params, len(s))
	for _, p := range s {
		if p.Type == TypeButton {
			continue
		}
		out[p.Name] = p.Default
	}
	return out
}

// minPtr is a convenience for inline ParamSpec literals.
func minPtr(v float64) *float64 { return &v }

// Validate normalizes params against the schema in place. Out-of-range
// numbers are clamped to their nearest bound and enum values outside the
// declared options fall back to the default; both are safe normalizations.
// A violation with no safe normalization (non-numeric number, NaN, missing
// reference value) is returned as an error and the feature must not run.
func (s Schema) Validate(params Params) error {
	for _, spec := range s {
		if spec.Type == TypeButton {
			continue
		}
		raw, ok := params[spec.Name]
		if !ok || raw == nil {
			params[spec.Name] = spec.Default
			continue
		}
		switch spec.Type {
		case TypeNumber:
			v, ok := asFloat(raw)
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("parameter %q: expected a number, got %T", spec.Name, raw)
			}
			if spec.Min != nil && v < *spec.Min {
				v = *spec.Min
			}
			if spec.Max != nil && v > *spec.Max {
				v = *spec.Max
			}
			params[spec.Name] = v
		case TypeString, TypeFile:
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("parameter %q: expected a string, got %T", spec.Name, raw)
			}
			params[spec.Name] = v
		case TypeBoolean:
			v, ok := raw.(bool)
			if !ok {
				return fmt.Errorf("parameter %q: expected a boolean, got %T", spec.Name, raw)
			}
			params[spec.Name] = v
		case TypeOptions:
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("parameter %q: expected an option string, got %T", spec.Name, raw)
			}
			if !containsString(spec.Options, v) {
				params[spec.Name] = spec.Default
			}
		case TypeReference:
			if _, ok := asStringList(raw); !ok {
				return fmt.Errorf("parameter %q: expected artifact name(s), got %T", spec.Name, raw)
			}
		case TypeTransform:
			if _, ok := AsTransform(raw); !ok {
				return fmt.Errorf("parameter %q: expected a transform, got %T", spec.Name, raw)
			}
		case TypeBooleanOp:
			if _, ok := AsBooleanRequest(raw); !ok {
				return fmt.Errorf("parameter %q: expected a boolean request, got %T", spec.Name, raw)
			}
		}
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
