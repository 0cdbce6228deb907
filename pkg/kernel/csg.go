package kernel

import (
	"fmt"
	"math"
)

// GeometryError reports a boolean or remesh step that could not produce a
// usable solid. Callers decide on fallback (e.g. attempt subtract, then
// union); the kernel never silently emits a degenerate result.
type GeometryError struct {
	Op     string
	Solid  string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("kernel: %s on %q failed: %s", e.Op, e.Solid, e.Reason)
}

// CSGOptions tunes a boolean operation.
type CSGOptions struct {
	// CapOffset pushes the tool's surface outward by this distance before
	// the operation. A small positive value avoids exact-coplanar
	// degeneracies between a new cut surface and a pre-existing target
	// face, which otherwise yield zero-area or misattributed triangles.
	// This is a declared epsilon policy, not a silent hack.
	CapOffset float64

	// ResultName names the output solid. Empty keeps the target's name.
	ResultName string
}

// Union returns the boolean union of s and other as a new solid. Both
// operands are left untouched. Face naming: any triangle geometrically
// unchanged keeps its operand's face name; on a name collision the
// second operand's face is renamed with an "_S" suffix.
func (s *Solid) Union(other *Solid, opts *CSGOptions) (*Solid, error) {
	return s.combine(other, "union", opts)
}

// Subtract returns s minus other as a new solid. Cut-cap triangles come
// from the tool's clipped surface and therefore inherit the tool's face
// names; this is the fixed tie-break policy for new cut surfaces.
func (s *Solid) Subtract(other *Solid, opts *CSGOptions) (*Solid, error) {
	return s.combine(other, "subtract", opts)
}

// Intersect returns the boolean intersection of s and other as a new solid.
func (s *Solid) Intersect(other *Solid, opts *CSGOptions) (*Solid, error) {
	return s.combine(other, "intersect", opts)
}

func (s *Solid) combine(other *Solid, op string, opts *CSGOptions) (*Solid, error) {
	if opts == nil {
		opts = &CSGOptions{}
	}
	if len(s.tris) == 0 || len(other.tris) == 0 {
		return nil, &GeometryError{Op: op, Solid: s.name, Reason: "empty operand"}
	}

	tool := other
	if opts.CapOffset != 0 {
		tool = other.Clone()
		tool.offsetAlongNormals(opts.CapOffset)
	}

	// Merged face arena: target faces first, then tool faces, renaming on
	// collision. Tool tags are offset by the target's face count.
	merged := make([]faceRecord, 0, len(s.faces)+len(tool.faces))
	mergedByName := make(map[string]FaceID, len(s.faces)+len(tool.faces))
	for _, f := range s.faces {
		mergedByName[f.name] = FaceID(len(merged))
		merged = append(merged, f)
	}
	toolOffset := len(merged)
	for _, f := range tool.faces {
		name := f.name
		for i := 0; ; i++ {
			if _, taken := mergedByName[name]; !taken {
				break
			}
			if i == 0 {
				name = f.name + "_S"
			} else {
				name = fmt.Sprintf("%s_S%d", f.name, i+1)
			}
		}
		mergedByName[name] = FaceID(len(merged))
		merged = append(merged, faceRecord{name: name, meta: f.meta})
	}

	a := newBSPNode(s.csgPolygons(0))
	b := newBSPNode(tool.csgPolygons(toolOffset))

	switch op {
	case "union":
		a.clipTo(b)
		b.clipTo(a)
		b.invert()
		b.clipTo(a)
		b.invert()
		a.build(b.allPolygons())
	case "subtract":
		a.invert()
		a.clipTo(b)
		b.clipTo(a)
		b.invert()
		b.clipTo(a)
		b.invert()
		a.build(b.allPolygons())
		a.invert()
	case "intersect":
		a.invert()
		b.clipTo(a)
		b.invert()
		a.clipTo(b)
		b.clipTo(a)
		a.build(b.allPolygons())
		a.invert()
	default:
		return nil, &GeometryError{Op: op, Solid: s.name, Reason: "unknown operation"}
	}

	name := opts.ResultName
	if name == "" {
		name = s.name
	}
	out, err := solidFromPolygons(name, s.eps, a.allPolygons(), merged)
	if err != nil {
		return nil, &GeometryError{Op: op, Solid: s.name, Reason: err.Error()}
	}
	out.overlays = append(out.overlays, s.overlays...)
	out.overlays = append(out.overlays, tool.overlays...)
	return out, nil
}

// csgPolygons extracts the solid's triangles as tagged polygons, offsetting
// face tags into a merged arena.
func (s *Solid) csgPolygons(faceOffset int) []csgPolygon {
	polys := make([]csgPolygon, 0, len(s.tris))
	for _, t := range s.tris {
		verts := []Vec3{s.verts[t.A], s.verts[t.B], s.verts[t.C]}
		tag := FaceID(int(t.Face) + faceOffset)
		if p, ok := newCSGPolygon(verts, tag); ok {
			polys = append(polys, p)
		}
	}
	return polys
}

// solidFromPolygons triangulates BSP output into a fresh solid, pruning
// face records no surviving triangle references. Face identity is carried
// by the tags on the polygons.
func solidFromPolygons(name string, eps float64, polys []csgPolygon, arena []faceRecord) (*Solid, error) {
	out := NewSolid(name)
	out.eps = eps

	used := make([]bool, len(arena))
	type pending struct {
		a, b, c Vec3
		face    FaceID
	}
	var tris []pending
	for _, p := range polys {
		if p.face < 0 || int(p.face) >= len(arena) {
			return nil, fmt.Errorf("polygon carries unknown face tag %d", p.face)
		}
		for i := 2; i < len(p.verts); i++ {
			a, b, c := p.verts[0], p.verts[i-1], p.verts[i]
			if b.Sub(a).Cross(c.Sub(a)).Length() < 1e-12 {
				continue
			}
			tris = append(tris, pending{a: a, b: b, c: c, face: p.face})
			used[p.face] = true
		}
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("empty result")
	}

	// Rebuild a compact arena holding only surviving faces.
	remap := make([]FaceID, len(arena))
	for i := range remap {
		remap[i] = InvalidFace
	}
	for i, f := range arena {
		if !used[i] {
			continue
		}
		id := FaceID(len(out.faces))
		out.faces = append(out.faces, faceRecord{name: f.name, meta: f.meta})
		out.byName[f.name] = id
		remap[i] = id
	}

	for _, t := range tris {
		for _, v := range [3]Vec3{t.a, t.b, t.c} {
			if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
				return nil, fmt.Errorf("non-finite geometry in result")
			}
		}
		out.AddTriangle(t.a, t.b, t.c, remap[t.face])
	}
	if len(out.tris) == 0 {
		return nil, fmt.Errorf("empty result after welding")
	}
	if orphans := out.OrphanTriangles(); len(orphans) > 0 {
		return nil, fmt.Errorf("%d orphan triangles in result", len(orphans))
	}
	return out, nil
}
