// Package kernel implements the boundary-representation solid kernel.
// A Solid owns a welded triangle mesh plus a per-triangle face identifier
// and a bidirectional name<->identifier index. Face identity survives
// boolean combination, transform baking, and remeshing, which is what lets
// downstream modeling features keep referring to faces and edges by stable
// name across recomputes.
package kernel

import (
	"fmt"
	"math"
	"sort"
)

// DefaultMergeEpsilon is the vertex welding tolerance for new solids.
const DefaultMergeEpsilon = 1e-6

// FaceID indexes the face arena of a Solid. IDs are local to one Solid and
// are never reused after RetagFaces mints fresh ones.
type FaceID int

// InvalidFace marks a triangle with no face assignment. A triangle carrying
// InvalidFace (or an ID outside the arena) is an orphan, a detectable defect.
const InvalidFace FaceID = -1

// Triangle references three vertices in the solid's vertex arena plus the
// face it belongs to. Winding is counter-clockwise seen from outside.
type Triangle struct {
	A, B, C int
	Face    FaceID
}

// faceRecord is one entry of the face arena.
type faceRecord struct {
	name string
	meta map[string]any
}

// Overlay is auxiliary line geometry attached to a solid (axis centerlines,
// sketch traces). Overlays follow the solid through transform baking so that
// later booleans operate in one coordinate frame.
type Overlay struct {
	Name   string
	Points []Vec3
}

// Solid is a named boundary-representation body. Boolean operations produce
// new solids; only transform baking and remeshing mutate in place, and both
// preserve naming.
type Solid struct {
	name string
	eps  float64

	verts []Vec3
	tris  []Triangle

	faces  []faceRecord
	byName map[string]FaceID

	overlays []Overlay

	dirty bool
	views *Views

	weld map[weldKey]int
}

type weldKey struct{ x, y, z int64 }

// NewSolid creates an empty solid with the default merge epsilon.
func NewSolid(name string) *Solid {
	return &Solid{
		name:   name,
		eps:    DefaultMergeEpsilon,
		byName: make(map[string]FaceID),
		weld:   make(map[weldKey]int),
	}
}

// Name returns the solid's unique name.
func (s *Solid) Name() string { return s.name }

// SetName renames the solid. Face names are not rewritten; they keep
// whatever prefix they were created with.
func (s *Solid) SetName(name string) { s.name = name }

// MergeEpsilon returns the vertex welding tolerance.
func (s *Solid) MergeEpsilon() float64 { return s.eps }

func (s *Solid) VertexCount() int   { return len(s.verts) }
func (s *Solid) TriangleCount() int { return len(s.tris) }

// Vertex returns the position of vertex i.
func (s *Solid) Vertex(i int) Vec3 { return s.verts[i] }

// Triangles returns the triangle list. Callers must not mutate it.
func (s *Solid) Triangles() []Triangle { return s.tris }

// AddFace registers a new named face and returns its identifier.
func (s *Solid) AddFace(name string) (FaceID, error) {
	if _, ok := s.byName[name]; ok {
		return InvalidFace, fmt.Errorf("kernel: face %q already exists on solid %q", name, s.name)
	}
	id := FaceID(len(s.faces))
	s.faces = append(s.faces, faceRecord{name: name})
	s.byName[name] = id
	return id, nil
}

// mustFace is AddFace for constructors that generate unique names themselves.
func (s *Solid) mustFace(name string) FaceID {
	id, err := s.AddFace(name)
	if err != nil {
		panic(err)
	}
	return id
}

// FaceName resolves a face identifier to its name.
func (s *Solid) FaceName(id FaceID) (string, bool) {
	if id < 0 || int(id) >= len(s.faces) {
		return "", false
	}
	return s.faces[id].name, true
}

// FaceByName resolves a face name to its identifier.
func (s *Solid) FaceByName(name string) (FaceID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// FaceNames returns all face names in sorted order.
func (s *Solid) FaceNames() []string {
	names := make([]string, 0, len(s.faces))
	for _, f := range s.faces {
		names = append(names, f.name)
	}
	sort.Strings(names)
	return names
}

// FaceCount returns the number of face records in the arena.
func (s *Solid) FaceCount() int { return len(s.faces) }

func (s *Solid) weldVertex(p Vec3) int {
	q := s.eps
	if q <= 0 {
		q = DefaultMergeEpsilon
	}
	key := weldKey{
		x: int64(math.Round(p.X / q)),
		y: int64(math.Round(p.Y / q)),
		z: int64(math.Round(p.Z / q)),
	}
	if i, ok := s.weld[key]; ok {
		return i
	}
	i := len(s.verts)
	s.verts = append(s.verts, p)
	s.weld[key] = i
	return i
}

// AddTriangle appends a triangle with the given face assignment, welding
// its vertices into the vertex arena.
func (s *Solid) AddTriangle(a, b, c Vec3, face FaceID) {
	ia, ib, ic := s.weldVertex(a), s.weldVertex(b), s.weldVertex(c)
	if ia == ib || ib == ic || ia == ic {
		// Degenerate after welding; drop.
		return
	}
	s.tris = append(s.tris, Triangle{A: ia, B: ib, C: ic, Face: face})
	s.dirty = true
}

// AddOverlay attaches named line geometry to the solid.
func (s *Solid) AddOverlay(name string, points []Vec3) {
	pts := make([]Vec3, len(points))
	copy(pts, points)
	s.overlays = append(s.overlays, Overlay{Name: name, Points: pts})
}

// Overlays returns the attached overlay geometry.
func (s *Solid) Overlays() []Overlay { return s.overlays }

// Clone returns a deep copy with identical mesh and naming but independent
// identity. Required before transform-baking a shared source body.
func (s *Solid) Clone() *Solid {
	c := &Solid{
		name:   s.name,
		eps:    s.eps,
		verts:  append([]Vec3(nil), s.verts...),
		tris:   append([]Triangle(nil), s.tris...),
		faces:  make([]faceRecord, len(s.faces)),
		byName: make(map[string]FaceID, len(s.byName)),
		weld:   make(map[weldKey]int, len(s.weld)),
		dirty:  true,
	}
	for i, f := range s.faces {
		c.faces[i] = faceRecord{name: f.name}
		if f.meta != nil {
			m := make(map[string]any, len(f.meta))
			for k, v := range f.meta {
				m[k] = v
			}
			c.faces[i].meta = m
		}
	}
	for name, id := range s.byName {
		c.byName[name] = id
	}
	for k, v := range s.weld {
		c.weld[k] = v
	}
	for _, ov := range s.overlays {
		c.overlays = append(c.overlays, Overlay{Name: ov.Name, Points: append([]Vec3(nil), ov.Points...)})
	}
	return c
}

// BakeTransform applies an affine transform directly to vertex positions
// and overlay geometry. Naming is untouched. Previously materialized views
// are invalidated.
func (s *Solid) BakeTransform(m Mat4) {
	for i := range s.verts {
		s.verts[i] = m.Apply(s.verts[i])
	}
	for oi := range s.overlays {
		for pi := range s.overlays[oi].Points {
			s.overlays[oi].Points[pi] = m.Apply(s.overlays[oi].Points[pi])
		}
	}
	s.rebuildWeld()
	s.dirty = true
}

// BakeTRS bakes a translate/rotate/scale placement. Rotation is Euler
// angles in degrees, applied Z then Y then X, before translation.
func (s *Solid) BakeTRS(pos, rotDeg, scale Vec3) {
	s.BakeTransform(TRS(pos, rotDeg, scale))
}

func (s *Solid) rebuildWeld() {
	s.weld = make(map[weldKey]int, len(s.verts))
	q := s.eps
	if q <= 0 {
		q = DefaultMergeEpsilon
	}
	for i, p := range s.verts {
		key := weldKey{
			x: int64(math.Round(p.X / q)),
			y: int64(math.Round(p.Y / q)),
			z: int64(math.Round(p.Z / q)),
		}
		if _, ok := s.weld[key]; !ok {
			s.weld[key] = i
		}
	}
}

// SetFaceMetadata attaches structured data to a named face, merged
// non-destructively with any prior metadata under that name.
func (s *Solid) SetFaceMetadata(name string, data map[string]any) error {
	id, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("kernel: no face %q on solid %q", name, s.name)
	}
	if s.faces[id].meta == nil {
		s.faces[id].meta = make(map[string]any, len(data))
	}
	for k, v := range data {
		s.faces[id].meta[k] = v
	}
	return nil
}

// FaceMetadata returns the metadata attached to a named face. The second
// return reports whether the face exists and carries metadata.
func (s *Solid) FaceMetadata(name string) (map[string]any, bool) {
	id, ok := s.byName[name]
	if !ok || s.faces[id].meta == nil {
		return nil, false
	}
	return s.faces[id].meta, true
}

// RetagFaces mints fresh face identifiers for every triangle and renames
// each face to "<original>::<suffix>". Metadata follows the rename. This is
// what prevents name collisions when multiple transformed copies of one
// source body are later unioned together.
func (s *Solid) RetagFaces(suffix string) {
	old := s.faces
	remap := make([]FaceID, len(old))
	s.faces = make([]faceRecord, 0, len(old))
	s.byName = make(map[string]FaceID, len(old))
	for i, f := range old {
		id := FaceID(len(s.faces))
		name := f.name + "::" + suffix
		s.faces = append(s.faces, faceRecord{name: name, meta: f.meta})
		s.byName[name] = id
		remap[i] = id
	}
	for i := range s.tris {
		f := s.tris[i].Face
		if f >= 0 && int(f) < len(remap) {
			s.tris[i].Face = remap[f]
		}
	}
	s.dirty = true
}

// OrphanTriangles returns the indices of triangles whose face identifier is
// absent from the arena. A non-empty result is a defect in whatever
// operation produced the mesh.
func (s *Solid) OrphanTriangles() []int {
	var orphans []int
	for i, t := range s.tris {
		if t.Face < 0 || int(t.Face) >= len(s.faces) {
			orphans = append(orphans, i)
		}
	}
	return orphans
}

// Volume returns the signed volume by summing tetrahedra against the
// origin. Correctly oriented closed solids give a positive result.
func (s *Solid) Volume() float64 {
	var v float64
	for _, t := range s.tris {
		a, b, c := s.verts[t.A], s.verts[t.B], s.verts[t.C]
		v += a.Dot(b.Cross(c)) / 6
	}
	return v
}

// BoundingBox returns the axis-aligned bounding box.
func (s *Solid) BoundingBox() (min, max Vec3) {
	if len(s.verts) == 0 {
		return Vec3{}, Vec3{}
	}
	min, max = s.verts[0], s.verts[0]
	for _, p := range s.verts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return min, max
}

// Validate checks structural integrity: no orphan triangles, finite
// coordinates, and two-manifold edge use (every undirected edge shared by
// exactly two triangles, once per direction).
func (s *Solid) Validate() error {
	if orphans := s.OrphanTriangles(); len(orphans) > 0 {
		return fmt.Errorf("kernel: solid %q has %d orphan triangles", s.name, len(orphans))
	}
	for i, p := range s.verts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
			math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
			return fmt.Errorf("kernel: solid %q has non-finite vertex %d", s.name, i)
		}
	}
	type dirEdge struct{ a, b int }
	use := make(map[dirEdge]int)
	for _, t := range s.tris {
		for _, e := range [3]dirEdge{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			use[e]++
		}
	}
	for e, n := range use {
		if n != 1 || use[dirEdge{e.b, e.a}] != 1 {
			return fmt.Errorf("kernel: solid %q is not two-manifold at edge (%d,%d)", s.name, e.a, e.b)
		}
	}
	return nil
}

// offsetAlongNormals pushes every vertex outward along its area-weighted
// vertex normal. Used by the coplanar-cap epsilon policy in boolean ops.
func (s *Solid) offsetAlongNormals(dist float64) {
	if dist == 0 {
		return
	}
	normals := make([]Vec3, len(s.verts))
	for _, t := range s.tris {
		a, b, c := s.verts[t.A], s.verts[t.B], s.verts[t.C]
		n := b.Sub(a).Cross(c.Sub(a)) // area-weighted
		normals[t.A] = normals[t.A].Add(n)
		normals[t.B] = normals[t.B].Add(n)
		normals[t.C] = normals[t.C].Add(n)
	}
	for i := range s.verts {
		s.verts[i] = s.verts[i].Add(normals[i].Normalized().Scale(dist))
	}
	s.rebuildWeld()
	s.dirty = true
}
