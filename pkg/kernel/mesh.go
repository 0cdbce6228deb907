package kernel

// Mesh is a flat-array triangle mesh suitable for rendering hosts.
// vertices has 3 floats per vertex (x,y,z), normals has 3 floats per
// vertex, indices has 3 uint32s per triangle. FaceNames maps each triangle
// (by index) to the name of the face it belongs to, so a viewport can
// highlight named faces.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	FaceNames []string  `json:"faceNames"`
	SolidName string    `json:"solidName"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// ToMesh flattens the solid into the render-mesh layout. Vertices are
// duplicated per triangle so each carries its flat face normal.
func (s *Solid) ToMesh() *Mesh {
	numTri := len(s.tris)
	m := &Mesh{
		Vertices:  make([]float32, 0, numTri*9),
		Normals:   make([]float32, 0, numTri*9),
		Indices:   make([]uint32, 0, numTri*3),
		FaceNames: make([]string, 0, numTri),
		SolidName: s.name,
	}
	for i, t := range s.tris {
		a, b, c := s.verts[t.A], s.verts[t.B], s.verts[t.C]
		n := b.Sub(a).Cross(c.Sub(a)).Normalized()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for _, p := range [3]Vec3{a, b, c} {
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, nx, ny, nz)
		}
		m.Indices = append(m.Indices, uint32(i*3), uint32(i*3+1), uint32(i*3+2))
		name, _ := s.FaceName(t.Face)
		m.FaceNames = append(m.FaceNames, name)
	}
	return m
}
