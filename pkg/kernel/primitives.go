package kernel

import (
	"fmt"
	"math"
)

// NewBox creates an axis-aligned box with its minimum corner at the origin,
// so placement translations work intuitively. Faces are named
// <name>_left/_right (X), <name>_front/_back (Y), <name>_bottom/_top (Z).
func NewBox(name string, sx, sy, sz float64) *Solid {
	s := NewSolid(name)

	left := s.mustFace(name + "_left")
	right := s.mustFace(name + "_right")
	front := s.mustFace(name + "_front")
	back := s.mustFace(name + "_back")
	bottom := s.mustFace(name + "_bottom")
	top := s.mustFace(name + "_top")

	// Corner positions.
	p := [8]Vec3{
		{0, 0, 0}, {sx, 0, 0}, {sx, sy, 0}, {0, sy, 0},
		{0, 0, sz}, {sx, 0, sz}, {sx, sy, sz}, {0, sy, sz},
	}

	quad := func(a, b, c, d int, f FaceID) {
		s.AddTriangle(p[a], p[b], p[c], f)
		s.AddTriangle(p[a], p[c], p[d], f)
	}

	quad(4, 7, 3, 0, left)   // x = 0
	quad(2, 6, 5, 1, right)  // x = sx
	quad(1, 5, 4, 0, front)  // y = 0
	quad(7, 6, 2, 3, back)   // y = sy
	quad(3, 2, 1, 0, bottom) // z = 0
	quad(5, 6, 7, 4, top)    // z = sz

	s.AddOverlay(name+"_axis", []Vec3{{sx / 2, sy / 2, 0}, {sx / 2, sy / 2, sz}})
	return s
}

// NewCylinder creates a cylinder with its base circle centered at the
// origin and its axis along +Z. The curved wall is one face (<name>_side);
// the caps are <name>_bottom and <name>_top. An axis centerline overlay is
// attached so transform baking keeps the axis consistent for later
// booleans.
func NewCylinder(name string, radius, height float64, segments int) *Solid {
	if segments < 3 {
		segments = 3
	}
	s := NewSolid(name)

	side := s.mustFace(name + "_side")
	bottom := s.mustFace(name + "_bottom")
	top := s.mustFace(name + "_top")

	ring := make([]Vec3, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring[i] = Vec3{radius * math.Cos(a), radius * math.Sin(a), 0}
	}
	c0 := Vec3{0, 0, 0}
	c1 := Vec3{0, 0, height}

	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b0, b1 := ring[i], ring[j]
		t0 := Vec3{b0.X, b0.Y, height}
		t1 := Vec3{b1.X, b1.Y, height}

		// Wall quad, outward winding.
		s.AddTriangle(b0, b1, t1, side)
		s.AddTriangle(b0, t1, t0, side)

		// Caps: bottom faces -Z, top faces +Z.
		s.AddTriangle(c0, b1, b0, bottom)
		s.AddTriangle(c1, t0, t1, top)
	}

	s.AddOverlay(name+"_axis", []Vec3{c0, c1})
	return s
}

// NewExtrusion creates a linear extrusion of a simple polygon profile
// (counter-clockwise, in the XY plane) along +Z. Caps are <name>_bottom and
// <name>_top; each profile segment gets its own wall face <name>_side<i>.
// Returns an error for profiles the ear-clipping triangulator rejects.
func NewExtrusion(name string, profile []Vec2, height float64) (*Solid, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("kernel: extrusion profile needs at least 3 points, got %d", len(profile))
	}
	tris, err := earClip(profile)
	if err != nil {
		return nil, fmt.Errorf("kernel: extrusion %q: %w", name, err)
	}

	s := NewSolid(name)
	bottom := s.mustFace(name + "_bottom")
	top := s.mustFace(name + "_top")

	at := func(p Vec2, z float64) Vec3 { return Vec3{p.X, p.Y, z} }

	for _, t := range tris {
		a, b, c := profile[t[0]], profile[t[1]], profile[t[2]]
		// Bottom cap faces -Z, reverse the CCW profile winding.
		s.AddTriangle(at(a, 0), at(c, 0), at(b, 0), bottom)
		s.AddTriangle(at(a, height), at(b, height), at(c, height), top)
	}

	for i := range profile {
		j := (i + 1) % len(profile)
		side := s.mustFace(fmt.Sprintf("%s_side%d", name, i))
		b0, b1 := at(profile[i], 0), at(profile[j], 0)
		t0, t1 := at(profile[i], height), at(profile[j], height)
		s.AddTriangle(b0, b1, t1, side)
		s.AddTriangle(b0, t1, t0, side)
	}

	return s, nil
}

// earClip triangulates a simple CCW polygon by ear clipping, returning
// index triples into the input slice. O(n^2), fine for sketch profiles.
func earClip(poly []Vec2) ([][3]int, error) {
	n := len(poly)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	cross := func(o, a, b Vec2) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	inTriangle := func(p, a, b, c Vec2) bool {
		d1 := cross(a, b, p)
		d2 := cross(b, c, p)
		d3 := cross(c, a, p)
		return d1 >= 0 && d2 >= 0 && d3 >= 0
	}

	var out [][3]int
	guard := 0
	for len(idx) > 3 {
		guard++
		if guard > n*n {
			return nil, fmt.Errorf("ear clipping failed: profile is not a simple CCW polygon")
		}
		clipped := false
		for i := 0; i < len(idx); i++ {
			ip := idx[(i+len(idx)-1)%len(idx)]
			ic := idx[i]
			in := idx[(i+1)%len(idx)]
			a, b, c := poly[ip], poly[ic], poly[in]
			if cross(a, b, c) <= 1e-12 {
				continue // reflex or degenerate corner
			}
			ear := true
			for _, k := range idx {
				if k == ip || k == ic || k == in {
					continue
				}
				if inTriangle(poly[k], a, b, c) {
					ear = false
					break
				}
			}
			if ear {
				out = append(out, [3]int{ip, ic, in})
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			return nil, fmt.Errorf("ear clipping failed: no ear found (self-intersecting profile?)")
		}
	}
	out = append(out, [3]int{idx[0], idx[1], idx[2]})
	return out, nil
}
