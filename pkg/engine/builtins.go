package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/history"
	"github.com/chazu/adze/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Adze Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: remesh-op -> remesh_op
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a kernel.Vec3.
type sexpVec3 struct {
	vec kernel.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpFeatureRef wraps an appended feature's id so later calls can chain
// on it.
type sexpFeatureRef struct {
	id  string
	typ string
}

func (f *sexpFeatureRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(feature %s %q)", f.typ, f.id)
}
func (f *sexpFeatureRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_union) and plain strings ("union").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (kernel.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return kernel.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toStringList extracts a list of strings (or a single string) from a Sexp.
func toStringList(s zygo.Sexp) ([]string, error) {
	if str, ok := s.(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
		return []string{str.S}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		v, err := toString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Keyword -> feature parameter translation
// ---------------------------------------------------------------------------

// numberKW copies a numeric keyword argument into the params map.
func numberKW(pa kwArgs, builtin, kwName, param string, params map[string]any) error {
	v, ok := pa.kw[kwName]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", builtin, kwName, err)
	}
	params[param] = f
	return nil
}

// stringKW copies a string keyword argument into the params map.
func stringKW(pa kwArgs, builtin, kwName, param string, params map[string]any) error {
	v, ok := pa.kw[kwName]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", builtin, kwName, err)
	}
	params[param] = s
	return nil
}

// transformKW assembles a transform parameter from :at, :rotate, and
// :scale keyword arguments.
func transformKW(pa kwArgs, builtin, param string, params map[string]any) error {
	tr := feature.IdentityTransform()
	found := false
	if v, ok := pa.kw["at"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return fmt.Errorf("%s: at: %w", builtin, err)
		}
		tr.Position = vec
		found = true
	}
	if v, ok := pa.kw["rotate"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return fmt.Errorf("%s: rotate: %w", builtin, err)
		}
		tr.Rotation = vec
		found = true
	}
	if v, ok := pa.kw["scale"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return fmt.Errorf("%s: scale: %w", builtin, err)
		}
		tr.Scale = vec
		found = true
	}
	if found {
		params[param] = tr
	}
	return nil
}

// booleanKW assembles a boolean_operation parameter from :targets and :op
// keyword arguments.
func booleanKW(pa kwArgs, builtin, param string, params map[string]any) error {
	req := feature.BooleanRequest{Operation: feature.OpNone}
	found := false
	if v, ok := pa.kw["targets"]; ok {
		targets, err := toStringList(v)
		if err != nil {
			return fmt.Errorf("%s: targets: %w", builtin, err)
		}
		req.Targets = targets
		found = true
	}
	if v, ok := pa.kw["op"]; ok {
		op, err := toKeywordString(v)
		if err != nil {
			return fmt.Errorf("%s: op: %w", builtin, err)
		}
		req.Operation = feature.BoolOp(strings.ToUpper(op))
		found = true
	}
	if found {
		params[param] = req
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// featureSpec maps a builtin's keyword arguments onto a feature type's
// parameters. Keyword names stay kebab-friendly; parameter names follow
// the feature schemas.
type featureSpec struct {
	builtin     string
	featureType string
	numbers     map[string]string // keyword -> param
	strings     map[string]string
	transform   string // param name, empty when the feature takes none
	boolean     string
}

var featureSpecs = []featureSpec{
	{
		builtin: "box", featureType: "box",
		numbers:   map[string]string{"width": "width", "depth": "depth", "height": "height"},
		strings:   map[string]string{"name": "name"},
		transform: "transform", boolean: "boolean",
	},
	{
		builtin: "cylinder", featureType: "cylinder",
		numbers:   map[string]string{"radius": "radius", "height": "height", "segments": "segments"},
		strings:   map[string]string{"name": "name"},
		transform: "transform", boolean: "boolean",
	},
	{
		builtin: "extrude", featureType: "extrude",
		numbers:   map[string]string{"height": "height"},
		strings:   map[string]string{"name": "name", "sketch": "sketch"},
		transform: "transform", boolean: "boolean",
	},
	{
		builtin: "fillet", featureType: "fillet",
		numbers: map[string]string{"radius": "radius", "cells": "cells"},
		strings: map[string]string{"edge": "edge"},
	},
	{
		builtin: "chamfer", featureType: "chamfer",
		numbers: map[string]string{"size": "size", "cells": "cells"},
		strings: map[string]string{"edge": "edge"},
	},
	{
		builtin: "hole", featureType: "hole",
		numbers: map[string]string{
			"radius": "radius", "depth": "depth", "segments": "segments",
			"cap-offset": "capOffset",
		},
		strings:   map[string]string{"target": "target"},
		transform: "transform",
	},
	{
		builtin: "remesh_op", featureType: "remesh",
		numbers: map[string]string{"max-edge": "maxEdgeLength", "iterations": "maxIterations"},
		strings: map[string]string{"target": "target"},
	},
}

// registerBuiltins installs all Adze DSL builtins into a zygomys
// environment. The builtins append features to the provided history;
// (recompute) runs it and returns the scene's artifact names.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable string
// literals.
func registerBuiltins(env *zygo.Zlisp, hist *history.Engine) {
	// Deterministic ids for features declared without :id, scoped to this
	// evaluation. Downstream artifact names derive from feature ids, so
	// these must not vary between evaluations of the same script. Ids are
	// minted from the canonical feature type, so the pattern and combine
	// builtins yield linear_pattern_N and boolean_N.
	counters := make(map[string]int)
	nextID := func(featureType string) string {
		counters[featureType]++
		return fmt.Sprintf("%s_%d", featureType, counters[featureType])
	}

	appendFeature := func(builtin, featureType string, pa kwArgs, params map[string]any) (zygo.Sexp, error) {
		id := ""
		if v, ok := pa.kw["id"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: id: %w", builtin, err)
			}
			id = s
		}
		if id == "" {
			id = nextID(featureType)
		}
		if _, err := hist.Append(featureType, id, params); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", builtin, err)
		}
		return &sexpFeatureRef{id: id, typ: featureType}, nil
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: kernel.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// Schema-driven feature builtins:
	//   (box :name "body" :width 2 :depth 2 :height 2 :at (vec3 10 0 0))
	//   (cylinder :name "cyl" :radius 5 :height 10 :segments 32)
	//   (extrude :name "slab" :sketch "profile.json" :height 2)
	//   (fillet :edge "cyl_side|cyl_top" :radius 1)
	//   (chamfer :edge "cyl_side|cyl_top" :size 0.5)
	//   (hole :target "body" :radius 0.5 :depth 3 :at (vec3 1 1 0))
	//   (remesh-op :target "body" :max-edge 0.5)
	// -----------------------------------------------------------------------
	for _, spec := range featureSpecs {
		spec := spec
		env.AddFunction(spec.builtin, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			params := make(map[string]any)
			for kwName, param := range spec.numbers {
				if err := numberKW(pa, spec.builtin, kwName, param, params); err != nil {
					return zygo.SexpNull, err
				}
			}
			for kwName, param := range spec.strings {
				if err := stringKW(pa, spec.builtin, kwName, param, params); err != nil {
					return zygo.SexpNull, err
				}
			}
			if spec.transform != "" {
				if err := transformKW(pa, spec.builtin, spec.transform, params); err != nil {
					return zygo.SexpNull, err
				}
			}
			if spec.boolean != "" {
				if err := booleanKW(pa, spec.builtin, spec.boolean, params); err != nil {
					return zygo.SexpNull, err
				}
			}
			return appendFeature(spec.builtin, spec.featureType, pa, params)
		})
	}

	// -----------------------------------------------------------------------
	// (pattern :source "body" :count 3 :offset (vec3 10 0 0) :mode :union)
	// -----------------------------------------------------------------------
	env.AddFunction("pattern", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		params := make(map[string]any)
		if err := stringKW(pa, "pattern", "source", "source", params); err != nil {
			return zygo.SexpNull, err
		}
		if err := numberKW(pa, "pattern", "count", "count", params); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["offset"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pattern: offset: %w", err)
			}
			tr := feature.IdentityTransform()
			tr.Position = vec
			params["offset"] = tr
		}
		if v, ok := pa.kw["mode"]; ok {
			mode, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pattern: mode: %w", err)
			}
			params["booleanMode"] = strings.ToUpper(mode)
		}
		return appendFeature("pattern", "linear_pattern", pa, params)
	})

	// -----------------------------------------------------------------------
	// (combine :tool "b" :targets (list "a") :op :subtract)
	// -----------------------------------------------------------------------
	env.AddFunction("combine", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		params := make(map[string]any)
		if err := stringKW(pa, "combine", "tool", "tool", params); err != nil {
			return zygo.SexpNull, err
		}
		if err := numberKW(pa, "combine", "cap-offset", "capOffset", params); err != nil {
			return zygo.SexpNull, err
		}
		if err := booleanKW(pa, "combine", "boolean", params); err != nil {
			return zygo.SexpNull, err
		}
		return appendFeature("combine", "boolean", pa, params)
	})

	// -----------------------------------------------------------------------
	// (recompute)            run the whole history
	// (recompute "featureID") run through the given feature only
	// Returns the scene's artifact names.
	// -----------------------------------------------------------------------
	env.AddFunction("recompute", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		cursor := ""
		if len(args) > 0 {
			s, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("recompute: cursor: %w", err)
			}
			cursor = s
		}
		if err := hist.Recompute(cursor); err != nil {
			return zygo.SexpNull, fmt.Errorf("recompute: %w", err)
		}
		return sceneNamesSexp(hist), nil
	})

	// -----------------------------------------------------------------------
	// (scene) -> array of current artifact names
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return sceneNamesSexp(hist), nil
	})
}

func sceneNamesSexp(hist *history.Engine) zygo.Sexp {
	names := hist.Scene().Names()
	out := make([]zygo.Sexp, 0, len(names))
	for _, n := range names {
		out = append(out, &zygo.SexpStr{S: n})
	}
	return &zygo.SexpArray{Val: out}
}
