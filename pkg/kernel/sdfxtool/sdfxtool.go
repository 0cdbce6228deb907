// Package sdfxtool builds curved cutting-tool solids using the
// github.com/deadsy/sdfx SDF-based CAD library. Analytic primitives cover
// boxes, cylinders, and extrusions; tools with curved cross-sections
// (fillet quarter-rounds, chamfer rings, spheres) are expressed as signed
// distance fields, tessellated by marching cubes, and imported as tagged
// kernel solids.
//
// Every triangle of an imported tool carries one face name, so a boolean
// cut surface made with the tool inherits that single name.
package sdfxtool

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/adze/pkg/kernel"
)

// DefaultMeshCells controls marching cubes tessellation resolution for
// tool solids. Tools are small and local, so this is far coarser than a
// display tessellation would be.
const DefaultMeshCells = 64

// FromSDF3 tessellates an SDF into a kernel solid whose triangles all
// belong to a single face named faceName.
func FromSDF3(name, faceName string, s3 sdf.SDF3, cells int) (*kernel.Solid, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfxtool: tessellation of %q produced no triangles", name)
	}

	out := kernel.NewSolid(name)
	face, err := out.AddFace(faceName)
	if err != nil {
		return nil, err
	}
	for _, tri := range triangles {
		a := kernel.Vec3{X: tri[0].X, Y: tri[0].Y, Z: tri[0].Z}
		b := kernel.Vec3{X: tri[1].X, Y: tri[1].Y, Z: tri[1].Z}
		c := kernel.Vec3{X: tri[2].X, Y: tri[2].Y, Z: tri[2].Z}
		out.AddTriangle(a, b, c, face)
	}
	if out.TriangleCount() == 0 {
		return nil, fmt.Errorf("sdfxtool: all triangles of %q degenerate after welding", name)
	}
	return out, nil
}

// FilletRing builds the cutting tool for an inset fillet on a horizontal
// circular rim: the square corner material at the rim minus a
// quarter-round of the given fillet radius, revolved about the Z axis.
// ringRadius is the rim's distance from the axis and z its height. The
// tool protrudes past the surface by half the fillet radius so the
// subtraction never leaves a sliver.
func FilletRing(name string, ringRadius, filletRadius, z float64, cells int) (*kernel.Solid, error) {
	if filletRadius <= 0 {
		return nil, fmt.Errorf("sdfxtool: fillet radius must be positive, got %v", filletRadius)
	}
	if ringRadius <= filletRadius {
		return nil, fmt.Errorf("sdfxtool: fillet radius %v too large for ring radius %v",
			filletRadius, ringRadius)
	}
	pad := filletRadius / 2

	// Profile in the rz half-plane: a square over the rim corner...
	side := filletRadius + pad
	square := sdf.Box2D(v2.Vec{X: side, Y: side}, 0)
	cx := ringRadius - filletRadius + side/2
	cy := z - filletRadius + side/2
	square = sdf.Transform2D(square, sdf.Translate2d(v2.Vec{X: cx, Y: cy}))

	// ...minus the quarter-round centered at the fillet tangent point.
	circle, err := sdf.Circle2D(filletRadius)
	if err != nil {
		return nil, fmt.Errorf("sdfxtool: fillet profile: %w", err)
	}
	circle = sdf.Transform2D(circle, sdf.Translate2d(v2.Vec{
		X: ringRadius - filletRadius,
		Y: z - filletRadius,
	}))

	profile := sdf.Difference2D(square, circle)
	ring, err := sdf.Revolve3D(profile)
	if err != nil {
		return nil, fmt.Errorf("sdfxtool: fillet revolve: %w", err)
	}
	return FromSDF3(name, name+"_fillet", ring, cells)
}

// ChamferRing builds the cutting tool for a straight 45-degree chamfer on
// a horizontal circular rim: a right-triangle profile revolved about Z.
func ChamferRing(name string, ringRadius, chamferSize, z float64, cells int) (*kernel.Solid, error) {
	if chamferSize <= 0 {
		return nil, fmt.Errorf("sdfxtool: chamfer size must be positive, got %v", chamferSize)
	}
	if ringRadius <= chamferSize {
		return nil, fmt.Errorf("sdfxtool: chamfer size %v too large for ring radius %v",
			chamferSize, ringRadius)
	}
	pad := chamferSize / 2

	// Right triangle over the rim corner, hypotenuse forming the chamfer,
	// padded outward past the surface.
	profile, err := sdf.Polygon2D([]v2.Vec{
		{X: ringRadius - chamferSize, Y: z + pad},
		{X: ringRadius - chamferSize, Y: z},
		{X: ringRadius + pad, Y: z - chamferSize - pad},
		{X: ringRadius + pad, Y: z + pad},
	})
	if err != nil {
		return nil, fmt.Errorf("sdfxtool: chamfer profile: %w", err)
	}
	ring, err := sdf.Revolve3D(profile)
	if err != nil {
		return nil, fmt.Errorf("sdfxtool: chamfer revolve: %w", err)
	}
	return FromSDF3(name, name+"_chamfer", ring, cells)
}

// Sphere builds a tessellated sphere centered at the origin.
func Sphere(name string, radius float64, cells int) (*kernel.Solid, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sdfxtool: sphere radius must be positive, got %v", radius)
	}
	s3, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfxtool: sphere: %w", err)
	}
	return FromSDF3(name, name+"_surface", s3, cells)
}
