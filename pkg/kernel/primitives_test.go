package kernel

import (
	"math"
	"testing"
)

func TestNewExtrusionSquare(t *testing.T) {
	profile := []Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	s, err := NewExtrusion("ext", profile, 3)
	if err != nil {
		t.Fatalf("NewExtrusion: %v", err)
	}
	if got := s.Volume(); math.Abs(got-12) > 1e-9 {
		t.Errorf("Volume() = %v, want 12", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	views := s.Materialize()
	for _, want := range []string{"ext_top", "ext_bottom", "ext_side0", "ext_side3"} {
		if _, ok := views.Faces[want]; !ok {
			t.Errorf("face %q missing", want)
		}
	}
	if got := len(views.Faces); got != 6 {
		t.Errorf("face count = %d, want 6", got)
	}
}

func TestNewExtrusionLShape(t *testing.T) {
	// Non-convex profile exercises the ear clipper.
	profile := []Vec2{{0, 0}, {3, 0}, {3, 1}, {1, 1}, {1, 3}, {0, 3}}
	s, err := NewExtrusion("ell", profile, 1)
	if err != nil {
		t.Fatalf("NewExtrusion: %v", err)
	}
	// Area of the L is 3*1 + 1*2 = 5.
	if got := s.Volume(); math.Abs(got-5) > 1e-9 {
		t.Errorf("Volume() = %v, want 5", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewExtrusionRejectsShortProfile(t *testing.T) {
	if _, err := NewExtrusion("bad", []Vec2{{0, 0}, {1, 0}}, 1); err == nil {
		t.Error("NewExtrusion accepted a 2-point profile")
	}
}

func TestEarClipTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		profile []Vec2
	}{
		{"triangle", []Vec2{{0, 0}, {1, 0}, {0, 1}}},
		{"square", []Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
		{"pentagon", []Vec2{{0, 0}, {2, 0}, {3, 2}, {1, 3}, {-1, 2}}},
		{"ell", []Vec2{{0, 0}, {3, 0}, {3, 1}, {1, 1}, {1, 3}, {0, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := earClip(tt.profile)
			if err != nil {
				t.Fatalf("earClip: %v", err)
			}
			if got, want := len(tris), len(tt.profile)-2; got != want {
				t.Errorf("triangle count = %d, want %d", got, want)
			}
		})
	}
}

// Every triangle normal must point away from the box center; inward
// winding makes Volume negative and the BSP treat the solid as
// inside-out, failing disjoint unions outright.
func TestBoxNormalsPointOutward(t *testing.T) {
	s := NewBox("b", 2, 3, 4)

	if got := s.Volume(); math.Abs(got-24) > 1e-9 {
		t.Fatalf("Volume() = %v, want 24", got)
	}

	center := Vec3{1, 1.5, 2}
	for i, tri := range s.Triangles() {
		a, b, c := s.Vertex(tri.A), s.Vertex(tri.B), s.Vertex(tri.C)
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Scale(1.0 / 3.0)
		if n.Dot(centroid.Sub(center)) <= 0 {
			t.Errorf("triangle %d normal points inward", i)
		}
	}
}

func TestBoxFaceNamingConvention(t *testing.T) {
	s := NewBox("base", 1, 1, 1)
	want := []string{"base_back", "base_bottom", "base_front", "base_left", "base_right", "base_top"}
	got := s.FaceNames()
	if len(got) != len(want) {
		t.Fatalf("FaceNames() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FaceNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
