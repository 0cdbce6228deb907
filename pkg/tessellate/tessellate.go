// Package tessellate converts a recomputed scene into render meshes.
// One mesh is produced per solid artifact; face and edge artifacts carry
// no geometry of their own and are skipped. The converter is read-only
// and never mutates the scene.
package tessellate

import (
	"sort"

	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/kernel"
)

// colorPalette assigns distinct colors to solids in scene order.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON-serializable mesh format sent to rendering hosts.
// It extends the kernel's flat-array mesh with a display color.
type MeshData struct {
	kernel.Mesh
	Color string `json:"color"`
}

// Scene tessellates every solid artifact in the scene. Meshes come back
// sorted by artifact name so colors are stable across recomputes.
func Scene(sc feature.Scene) []MeshData {
	arts := sc.Artifacts()

	var solids []feature.Artifact
	for _, a := range arts {
		if a.Kind() == feature.KindSolid {
			solids = append(solids, a)
		}
	}
	sort.Slice(solids, func(i, j int) bool { return solids[i].Name() < solids[j].Name() })

	meshes := make([]MeshData, 0, len(solids))
	for i, a := range solids {
		s, ok := a.AsSolid()
		if !ok {
			continue
		}
		meshes = append(meshes, MeshData{
			Mesh:  *s.ToMesh(),
			Color: colorPalette[i%len(colorPalette)],
		})
	}
	return meshes
}

// Solid tessellates a single solid with the default color.
func Solid(s *kernel.Solid) MeshData {
	return MeshData{Mesh: *s.ToMesh(), Color: colorPalette[0]}
}
