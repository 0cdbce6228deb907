package kernel

// RemeshOptions bounds the iterative subdivision pass.
type RemeshOptions struct {
	MaxEdgeLength float64
	MaxIterations int
}

// DefaultRemeshIterations bounds passes when the caller leaves
// MaxIterations zero.
const DefaultRemeshIterations = 10

type meshEdge struct{ a, b int }

func orderedEdge(a, b int) meshEdge {
	if a > b {
		a, b = b, a
	}
	return meshEdge{a, b}
}

// Remesh iteratively subdivides triangles whose edges exceed
// MaxEdgeLength, up to MaxIterations passes. Every child triangle inherits
// its parent's face identifier, so the set of distinct face names is
// unchanged. Long edges are split at their midpoint for all incident
// triangles in the same pass, keeping the mesh conforming.
//
// Side effect: previously obtained Edge/Vertex view handles are invalidated;
// callers must re-derive them via Views.MatchEdge, since raw triangle
// indices are unstable across a remesh.
func (s *Solid) Remesh(opts RemeshOptions) error {
	if opts.MaxEdgeLength <= 0 {
		return &GeometryError{Op: "remesh", Solid: s.name, Reason: "MaxEdgeLength must be positive"}
	}
	iters := opts.MaxIterations
	if iters <= 0 {
		iters = DefaultRemeshIterations
	}

	for pass := 0; pass < iters; pass++ {
		if !s.remeshPass(opts.MaxEdgeLength) {
			break
		}
	}
	s.views = nil
	s.dirty = true
	return nil
}

// remeshPass performs one split pass. Returns false when no edge exceeded
// the bound.
func (s *Solid) remeshPass(maxLen float64) bool {
	split := make(map[meshEdge]int) // edge -> midpoint vertex index
	for _, t := range s.tris {
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			key := orderedEdge(e[0], e[1])
			if _, done := split[key]; done {
				continue
			}
			if s.verts[e[0]].Sub(s.verts[e[1]]).Length() > maxLen {
				mid := s.verts[e[0]].Lerp(s.verts[e[1]], 0.5)
				split[key] = s.weldVertex(mid)
			}
		}
	}
	if len(split) == 0 {
		return false
	}

	out := make([]Triangle, 0, len(s.tris)*2)
	emit := func(a, b, c int, f FaceID) {
		if a == b || b == c || a == c {
			return
		}
		out = append(out, Triangle{A: a, B: b, C: c, Face: f})
	}

	for _, t := range s.tris {
		mab, abOK := split[orderedEdge(t.A, t.B)]
		mbc, bcOK := split[orderedEdge(t.B, t.C)]
		mca, caOK := split[orderedEdge(t.C, t.A)]

		switch {
		case abOK && bcOK && caOK:
			emit(t.A, mab, mca, t.Face)
			emit(t.B, mbc, mab, t.Face)
			emit(t.C, mca, mbc, t.Face)
			emit(mab, mbc, mca, t.Face)
		case abOK && bcOK:
			emit(t.A, mab, t.C, t.Face)
			emit(mab, t.B, mbc, t.Face)
			emit(mab, mbc, t.C, t.Face)
		case bcOK && caOK:
			emit(t.B, mbc, t.A, t.Face)
			emit(mbc, t.C, mca, t.Face)
			emit(mbc, mca, t.A, t.Face)
		case abOK && caOK:
			emit(t.C, mca, mab, t.Face)
			emit(t.C, mab, t.B, t.Face)
			emit(mca, t.A, mab, t.Face)
		case abOK:
			emit(t.A, mab, t.C, t.Face)
			emit(mab, t.B, t.C, t.Face)
		case bcOK:
			emit(t.B, mbc, t.A, t.Face)
			emit(mbc, t.C, t.A, t.Face)
		case caOK:
			emit(t.C, mca, t.B, t.Face)
			emit(mca, t.A, t.B, t.Face)
		default:
			out = append(out, t)
		}
	}
	s.tris = out
	return true
}
