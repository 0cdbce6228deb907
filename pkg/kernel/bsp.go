package kernel

// BSP-tree boolean evaluation over tagged polygons. Every polygon carries
// the face identifier of the face it was cut from; plane splits copy the
// tag to both fragments, so triangles that survive an operation unchanged
// keep their operand's face identity, and cut-surface fragments keep the
// identity of the operand face they lie on.

// planeEpsilon classifies a vertex as on-plane when its signed distance is
// within this bound.
const planeEpsilon = 1e-5

type csgPlane struct {
	n Vec3
	w float64
}

func planeFromPoints(a, b, c Vec3) (csgPlane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < 1e-12 {
		return csgPlane{}, false
	}
	n = n.Normalized()
	return csgPlane{n: n, w: n.Dot(a)}, true
}

func (p csgPlane) flipped() csgPlane {
	return csgPlane{n: p.n.Scale(-1), w: -p.w}
}

type csgPolygon struct {
	verts []Vec3
	plane csgPlane
	face  FaceID
}

func newCSGPolygon(verts []Vec3, face FaceID) (csgPolygon, bool) {
	pl, ok := planeFromPoints(verts[0], verts[1], verts[2])
	if !ok {
		return csgPolygon{}, false
	}
	return csgPolygon{verts: verts, plane: pl, face: face}, true
}

func (p csgPolygon) flipped() csgPolygon {
	rv := make([]Vec3, len(p.verts))
	for i, v := range p.verts {
		rv[len(p.verts)-1-i] = v
	}
	return csgPolygon{verts: rv, plane: p.plane.flipped(), face: p.face}
}

const (
	locCoplanar = 0
	locFront    = 1
	locBack     = 2
	locSpanning = 3
)

// splitPolygon classifies poly against the plane and appends it (or its
// fragments) to the matching output lists. Fragments keep the face tag.
func (pl csgPlane) splitPolygon(poly csgPolygon, coplanarFront, coplanarBack, front, back *[]csgPolygon) {
	polyType := 0
	types := make([]int, len(poly.verts))
	for i, v := range poly.verts {
		t := locCoplanar
		d := pl.n.Dot(v) - pl.w
		if d < -planeEpsilon {
			t = locBack
		} else if d > planeEpsilon {
			t = locFront
		}
		polyType |= t
		types[i] = t
	}

	switch polyType {
	case locCoplanar:
		if pl.n.Dot(poly.plane.n) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case locFront:
		*front = append(*front, poly)
	case locBack:
		*back = append(*back, poly)
	case locSpanning:
		var f, b []Vec3
		for i := range poly.verts {
			j := (i + 1) % len(poly.verts)
			ti, tj := types[i], types[j]
			vi, vj := poly.verts[i], poly.verts[j]
			if ti != locBack {
				f = append(f, vi)
			}
			if ti != locFront {
				b = append(b, vi)
			}
			if (ti | tj) == locSpanning {
				t := (pl.w - pl.n.Dot(vi)) / pl.n.Dot(vj.Sub(vi))
				v := vi.Lerp(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			if np, ok := newCSGPolygon(f, poly.face); ok {
				*front = append(*front, np)
			}
		}
		if len(b) >= 3 {
			if np, ok := newCSGPolygon(b, poly.face); ok {
				*back = append(*back, np)
			}
		}
	}
}

type bspNode struct {
	plane *csgPlane
	front *bspNode
	back  *bspNode
	polys []csgPolygon
}

func newBSPNode(polys []csgPolygon) *bspNode {
	n := &bspNode{}
	if len(polys) > 0 {
		n.build(polys)
	}
	return n
}

// invert swaps solid and empty space.
func (n *bspNode) invert() {
	for i := range n.polys {
		n.polys[i] = n.polys[i].flipped()
	}
	if n.plane != nil {
		p := n.plane.flipped()
		n.plane = &p
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes all parts of the given polygons that lie inside
// this BSP tree's solid.
func (n *bspNode) clipPolygons(polys []csgPolygon) []csgPolygon {
	if n.plane == nil {
		out := make([]csgPolygon, len(polys))
		copy(out, polys)
		return out
	}
	var front, back []csgPolygon
	for _, p := range polys {
		n.plane.splitPolygon(p, &front, &back, &front, &back)
	}
	if n.front != nil {
		front = n.front.clipPolygons(front)
	}
	if n.back != nil {
		back = n.back.clipPolygons(back)
	} else {
		back = nil
	}
	return append(front, back...)
}

// clipTo removes all polygons in this tree that are inside other's solid.
func (n *bspNode) clipTo(other *bspNode) {
	n.polys = other.clipPolygons(n.polys)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *bspNode) allPolygons() []csgPolygon {
	out := append([]csgPolygon(nil), n.polys...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

// build inserts polygons into the tree, splitting as needed. The first
// polygon's plane seeds each node.
func (n *bspNode) build(polys []csgPolygon) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		p := polys[0].plane
		n.plane = &p
	}
	var front, back []csgPolygon
	for _, p := range polys {
		n.plane.splitPolygon(p, &n.polys, &n.polys, &front, &back)
	}
	if len(front) > 0 {
		if n.front == nil {
			n.front = &bspNode{}
		}
		n.front.build(front)
	}
	if len(back) > 0 {
		if n.back == nil {
			n.back = &bspNode{}
		}
		n.back.build(back)
	}
}
