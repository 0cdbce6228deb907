package kernel

import (
	"fmt"
	"sort"
	"strings"
)

// Face is a derived view: the group of triangles sharing one face
// identifier. Views never own geometry and never mutate the solid.
type Face struct {
	Name      string
	ID        FaceID
	Triangles []int // indices into the solid's triangle list
	Centroid  Vec3
	Normal    Vec3 // area-weighted average
	Area      float64
}

// Edge is a derived view: the boundary between two differently-named
// faces. Its name is deterministically derived from the two face names
// ("<a>|<b>", faces sorted), plus a "#<i>" disambiguator when more than
// one edge loop shares the same face pair, so callers can re-select the
// "same" edge after a remesh even though triangle indices changed.
type Edge struct {
	Name     string
	FaceA    string
	FaceB    string
	Index    int
	Segments [][2]int // vertex index pairs
	Centroid Vec3
	Length   float64
}

// Vertex is a derived view: a mesh vertex where three or more
// differently-named faces meet.
type Vertex struct {
	Name     string
	Position Vec3
	Faces    []string
}

// Views holds the materialized Face/Edge/Vertex views of one solid.
type Views struct {
	Faces    map[string]*Face
	Edges    map[string]*Edge
	Vertices map[string]*Vertex
}

// Materialize (re)derives the Face/Edge/Vertex views from the current
// mesh and naming state. It is idempotent and never alters naming; the
// result is cached until the solid is next mutated.
func (s *Solid) Materialize() *Views {
	if s.views != nil && !s.dirty {
		return s.views
	}
	v := &Views{
		Faces:    make(map[string]*Face),
		Edges:    make(map[string]*Edge),
		Vertices: make(map[string]*Vertex),
	}
	s.deriveFaces(v)
	s.deriveEdges(v)
	s.deriveVertices(v)
	s.views = v
	s.dirty = false
	return v
}

func (s *Solid) deriveFaces(v *Views) {
	for ti, t := range s.tris {
		name, ok := s.FaceName(t.Face)
		if !ok {
			continue // orphan, reported by OrphanTriangles
		}
		f := v.Faces[name]
		if f == nil {
			f = &Face{Name: name, ID: t.Face}
			v.Faces[name] = f
		}
		a, b, c := s.verts[t.A], s.verts[t.B], s.verts[t.C]
		n := b.Sub(a).Cross(c.Sub(a))
		area := n.Length() / 2
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)

		f.Triangles = append(f.Triangles, ti)
		f.Normal = f.Normal.Add(n)
		f.Centroid = f.Centroid.Add(centroid.Scale(area))
		f.Area += area
	}
	for _, f := range v.Faces {
		if f.Area > 1e-12 {
			f.Centroid = f.Centroid.Scale(1 / f.Area)
		}
		f.Normal = f.Normal.Normalized()
	}
}

func (s *Solid) deriveEdges(v *Views) {
	// Collect the face on each side of every undirected mesh edge.
	type sides struct{ faces [2]FaceID }
	edgeFaces := make(map[meshEdge]*sides)
	for _, t := range s.tris {
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			key := orderedEdge(e[0], e[1])
			sd := edgeFaces[key]
			if sd == nil {
				sd = &sides{faces: [2]FaceID{t.Face, InvalidFace}}
				edgeFaces[key] = sd
			} else if sd.faces[1] == InvalidFace && sd.faces[0] != t.Face {
				sd.faces[1] = t.Face
			}
		}
	}

	// Boundary segments grouped by sorted face-name pair.
	type pairKey struct{ a, b string }
	segments := make(map[pairKey][]meshEdge)
	for e, sd := range edgeFaces {
		if sd.faces[1] == InvalidFace {
			continue // interior to one face, or open boundary
		}
		na, okA := s.FaceName(sd.faces[0])
		nb, okB := s.FaceName(sd.faces[1])
		if !okA || !okB || na == nb {
			continue
		}
		if na > nb {
			na, nb = nb, na
		}
		segments[pairKey{na, nb}] = append(segments[pairKey{na, nb}], e)
	}

	for pk, segs := range segments {
		chains := s.chainSegments(segs)
		// Deterministic order: sort chains by centroid.
		sort.Slice(chains, func(i, j int) bool {
			ci := s.chainCentroid(chains[i])
			cj := s.chainCentroid(chains[j])
			if ci.X != cj.X {
				return ci.X < cj.X
			}
			if ci.Y != cj.Y {
				return ci.Y < cj.Y
			}
			return ci.Z < cj.Z
		})
		for i, chain := range chains {
			e := s.buildEdge(pk.a, pk.b, chain)
			e.Index = i
			if len(chains) > 1 {
				e.Name = fmt.Sprintf("%s|%s#%d", pk.a, pk.b, i)
			}
			v.Edges[e.Name] = e
		}
	}
}

// chainSegments partitions edge segments into connected components by
// shared vertices (union-find).
func (s *Solid) chainSegments(segs []meshEdge) [][]meshEdge {
	parent := make(map[int]int)
	var find func(x int) int
	find = func(x int) int {
		if p, ok := parent[x]; ok && p != x {
			r := find(p)
			parent[x] = r
			return r
		}
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
		return parent[x]
	}
	union := func(a, b int) { parent[find(a)] = find(b) }
	for _, e := range segs {
		union(e.a, e.b)
	}
	groups := make(map[int][]meshEdge)
	for _, e := range segs {
		r := find(e.a)
		groups[r] = append(groups[r], e)
	}
	out := make([][]meshEdge, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}

func (s *Solid) chainCentroid(chain []meshEdge) Vec3 {
	var c Vec3
	var total float64
	for _, e := range chain {
		a, b := s.verts[e.a], s.verts[e.b]
		l := b.Sub(a).Length()
		c = c.Add(a.Add(b).Scale(0.5).Scale(l))
		total += l
	}
	if total > 1e-12 {
		c = c.Scale(1 / total)
	}
	return c
}

func (s *Solid) buildEdge(faceA, faceB string, chain []meshEdge) *Edge {
	e := &Edge{Name: faceA + "|" + faceB, FaceA: faceA, FaceB: faceB}
	for _, seg := range chain {
		e.Segments = append(e.Segments, [2]int{seg.a, seg.b})
		e.Length += s.verts[seg.b].Sub(s.verts[seg.a]).Length()
	}
	e.Centroid = s.chainCentroid(chain)
	return e
}

func (s *Solid) deriveVertices(v *Views) {
	adj := make(map[int]map[string]bool)
	for _, t := range s.tris {
		name, ok := s.FaceName(t.Face)
		if !ok {
			continue
		}
		for _, vi := range [3]int{t.A, t.B, t.C} {
			if adj[vi] == nil {
				adj[vi] = make(map[string]bool)
			}
			adj[vi][name] = true
		}
	}
	byName := make(map[string][]int)
	for vi, faces := range adj {
		if len(faces) < 3 {
			continue
		}
		names := make([]string, 0, len(faces))
		for n := range faces {
			names = append(names, n)
		}
		sort.Strings(names)
		key := strings.Join(names, "+")
		byName[key] = append(byName[key], vi)
	}
	for key, verts := range byName {
		// Deterministic disambiguation when several corners share the
		// same face set.
		sort.Slice(verts, func(i, j int) bool {
			a, b := s.verts[verts[i]], s.verts[verts[j]]
			if a.X != b.X {
				return a.X < b.X
			}
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.Z < b.Z
		})
		names := strings.Split(key, "+")
		for i, vi := range verts {
			name := key
			if len(verts) > 1 {
				name = fmt.Sprintf("%s#%d", key, i)
			}
			v.Vertices[name] = &Vertex{Name: name, Position: s.verts[vi], Faces: names}
		}
	}
}

// EdgesBetween returns all materialized edges separating the two named
// faces, ordered by disambiguation index.
func (v *Views) EdgesBetween(faceA, faceB string) []*Edge {
	if faceA > faceB {
		faceA, faceB = faceB, faceA
	}
	var out []*Edge
	for _, e := range v.Edges {
		if e.FaceA == faceA && e.FaceB == faceB {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// MatchEdge re-derives the view corresponding to a stale edge handle after
// a remesh or boolean: same face pair, nearest centroid, comparable length
// (within a factor of two). Returns nil when no candidate qualifies.
func (v *Views) MatchEdge(old *Edge) *Edge {
	var best *Edge
	bestDist := 0.0
	for _, cand := range v.EdgesBetween(old.FaceA, old.FaceB) {
		if old.Length > 1e-12 {
			ratio := cand.Length / old.Length
			if ratio < 0.5 || ratio > 2.0 {
				continue
			}
		}
		d := cand.Centroid.Sub(old.Centroid).Length()
		if best == nil || d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
