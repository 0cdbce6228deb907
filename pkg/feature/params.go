package feature

import (
	"strings"

	"github.com/chazu/adze/pkg/kernel"
)

// Params holds a feature's current parameter values keyed by name. Values
// arrive either as typed Go values set by callers or as generic JSON
// shapes (float64, map[string]any, []any) decoded from a saved project,
// so every accessor tolerates both.
type Params map[string]any

// Number returns a numeric parameter, or fallback when absent or
// non-numeric.
func (p Params) Number(name string, fallback float64) float64 {
	if v, ok := asFloat(p[name]); ok {
		return v
	}
	return fallback
}

// String returns a string parameter, or fallback when absent.
func (p Params) String(name, fallback string) string {
	if v, ok := p[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Bool returns a boolean parameter, or fallback when absent.
func (p Params) Bool(name string, fallback bool) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return fallback
}

// Strings returns a reference parameter's name list. A single string
// value is treated as a one-element list.
func (p Params) Strings(name string) []string {
	v, _ := asStringList(p[name])
	return v
}

// Transform returns a transform parameter, or the identity when absent.
func (p Params) Transform(name string) Transform {
	if t, ok := AsTransform(p[name]); ok {
		return t
	}
	return IdentityTransform()
}

// Boolean returns a boolean_operation parameter, or an OpNone request
// when absent.
func (p Params) Boolean(name string) BooleanRequest {
	if r, ok := AsBooleanRequest(p[name]); ok {
		return r
	}
	return BooleanRequest{Operation: OpNone}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case string:
		if t == "" {
			return nil, true
		}
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asVec3(v any, fallback kernel.Vec3) kernel.Vec3 {
	switch t := v.(type) {
	case kernel.Vec3:
		return t
	case []any:
		if len(t) == 3 {
			x, okx := asFloat(t[0])
			y, oky := asFloat(t[1])
			z, okz := asFloat(t[2])
			if okx && oky && okz {
				return kernel.Vec3{X: x, Y: y, Z: z}
			}
		}
	case map[string]any:
		x, okx := asFloat(t["x"])
		y, oky := asFloat(t["y"])
		z, okz := asFloat(t["z"])
		if okx && oky && okz {
			return kernel.Vec3{X: x, Y: y, Z: z}
		}
	}
	return fallback
}

// AsTransform decodes a transform parameter value from either the typed
// struct or its generic JSON shape.
func AsTransform(v any) (Transform, bool) {
	switch t := v.(type) {
	case Transform:
		return t, true
	case *Transform:
		return *t, true
	case map[string]any:
		out := IdentityTransform()
		out.Position = asVec3(t["position"], out.Position)
		out.Rotation = asVec3(t["rotation"], out.Rotation)
		out.Scale = asVec3(t["scale"], out.Scale)
		return out, true
	}
	return Transform{}, false
}

// AsBooleanRequest decodes a boolean_operation parameter value.
func AsBooleanRequest(v any) (BooleanRequest, bool) {
	switch t := v.(type) {
	case BooleanRequest:
		return normalizeRequest(t), true
	case *BooleanRequest:
		return normalizeRequest(*t), true
	case map[string]any:
		targets, ok := asStringList(t["targets"])
		if !ok {
			return BooleanRequest{}, false
		}
		op, _ := t["operation"].(string)
		return normalizeRequest(BooleanRequest{Targets: targets, Operation: BoolOp(op)}), true
	}
	return BooleanRequest{}, false
}

func normalizeRequest(r BooleanRequest) BooleanRequest {
	switch BoolOp(strings.ToUpper(string(r.Operation))) {
	case OpUnion:
		r.Operation = OpUnion
	case OpSubtract:
		r.Operation = OpSubtract
	case OpIntersect:
		r.Operation = OpIntersect
	default:
		r.Operation = OpNone
	}
	return r
}
