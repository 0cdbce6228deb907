package kernel

import (
	"math"
	"reflect"
	"testing"
)

func maxEdgeLength(s *Solid) float64 {
	longest := 0.0
	for _, t := range s.Triangles() {
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			l := s.Vertex(e[0]).Sub(s.Vertex(e[1])).Length()
			if l > longest {
				longest = l
			}
		}
	}
	return longest
}

func TestRemeshEdgeBound(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Solid
		maxEdge float64
	}{
		{"unit box", func() *Solid { return NewBox("b", 1, 1, 1) }, 0.3},
		{"plank", func() *Solid { return NewBox("p", 4, 1, 0.5) }, 0.75},
		{"cylinder", func() *Solid { return NewCylinder("c", 2, 6, 24) }, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.build()
			before := s.TriangleCount()
			namesBefore := s.FaceNames()

			if err := s.Remesh(RemeshOptions{MaxEdgeLength: tt.maxEdge, MaxIterations: 20}); err != nil {
				t.Fatalf("Remesh: %v", err)
			}

			if got := maxEdgeLength(s); got > tt.maxEdge+1e-9 {
				t.Errorf("longest edge after remesh = %v, want <= %v", got, tt.maxEdge)
			}
			if s.TriangleCount() <= before {
				t.Errorf("triangle count %d did not grow from %d", s.TriangleCount(), before)
			}
			if !reflect.DeepEqual(s.FaceNames(), namesBefore) {
				t.Errorf("face name set changed: %v -> %v", namesBefore, s.FaceNames())
			}
			if orphans := s.OrphanTriangles(); len(orphans) != 0 {
				t.Errorf("remesh produced %d orphan triangles", len(orphans))
			}
		})
	}
}

func TestRemeshKeepsMeshClosed(t *testing.T) {
	s := NewBox("b", 1, 1, 1)
	if err := s.Remesh(RemeshOptions{MaxEdgeLength: 0.4, MaxIterations: 20}); err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("remeshed box no longer manifold: %v", err)
	}
	if got := s.Volume(); math.Abs(got-1) > 1e-9 {
		t.Errorf("Volume() = %v after remesh, want 1", got)
	}
}

func TestRemeshNoopWhenAlreadyFine(t *testing.T) {
	s := NewBox("b", 0.1, 0.1, 0.1)
	before := s.TriangleCount()
	if err := s.Remesh(RemeshOptions{MaxEdgeLength: 1.0}); err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if s.TriangleCount() != before {
		t.Errorf("remesh subdivided a mesh already within bound")
	}
}

func TestRemeshRejectsBadBound(t *testing.T) {
	s := NewBox("b", 1, 1, 1)
	if err := s.Remesh(RemeshOptions{MaxEdgeLength: 0}); err == nil {
		t.Error("Remesh accepted a zero edge bound")
	}
}

func TestRemeshRespectsIterationCap(t *testing.T) {
	s := NewBox("b", 8, 8, 8)
	// One pass cannot reach the bound; the cap must stop it anyway.
	if err := s.Remesh(RemeshOptions{MaxEdgeLength: 0.5, MaxIterations: 1}); err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if got := maxEdgeLength(s); got <= 0.5 {
		t.Errorf("one pass reached the bound (%v), expected the cap to stop early", got)
	}
}
