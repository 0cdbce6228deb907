package kernel

import "math"

// Vec3 is a 3D point or direction in model space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec2 is a 2D point, used for sketch profiles in the XY plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns the unit vector in the direction of v, or the zero
// vector when v is shorter than the degeneracy threshold.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates between v and o at parameter t in [0, 1].
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Mat4 is a row-major 4x4 affine transform matrix.
type Mat4 [16]float64

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * o (o applied first).
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[i*4+k] * o[k*4+j]
			}
			r[i*4+j] = sum
		}
	}
	return r
}

// Apply transforms the point v by m.
func (m Mat4) Apply(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[3], m[7], m[11] = v.X, v.Y, v.Z
	return m
}

// Scaling returns a non-uniform scale matrix.
func Scaling(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// RotateX returns a rotation about the X axis by deg degrees.
func RotateX(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[5], m[6] = c, -s
	m[9], m[10] = s, c
	return m
}

// RotateY returns a rotation about the Y axis by deg degrees.
func RotateY(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[0], m[2] = c, s
	m[8], m[10] = -s, c
	return m
}

// RotateZ returns a rotation about the Z axis by deg degrees.
func RotateZ(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[0], m[1] = c, -s
	m[4], m[5] = s, c
	return m
}

// TRS composes translate * rotateZ * rotateY * rotateX * scale, matching
// the Euler order used for all placement transforms in this package.
// Rotation angles are in degrees.
func TRS(pos, rotDeg, scale Vec3) Mat4 {
	if scale == (Vec3{}) {
		scale = Vec3{1, 1, 1}
	}
	r := RotateZ(rotDeg.Z).Mul(RotateY(rotDeg.Y)).Mul(RotateX(rotDeg.X))
	return Translate(pos).Mul(r).Mul(Scaling(scale))
}
