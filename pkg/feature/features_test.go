package feature_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/kernel"
)

func TestBoxFeature(t *testing.T) {
	scene := newTestScene()
	res, err := runFeature(scene, "box", "b1", map[string]any{
		"name": "plank", "width": 4.0, "depth": 2.0, "height": 1.0,
		"transform": feature.Transform{Position: kernel.Vec3{X: 10}},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	require.Equal(t, "plank", res.Added[0].Name())

	solid, ok := res.Added[0].AsSolid()
	require.True(t, ok)
	require.InDelta(t, 8.0, solid.Volume(), 1e-9)

	min, max := solid.BoundingBox()
	require.InDelta(t, 10.0, min.X, 1e-9)
	require.InDelta(t, 14.0, max.X, 1e-9)
}

func TestBoxFeatureSubtractsViaBoolean(t *testing.T) {
	body := kernel.NewBox("body", 1, 1, 1)
	scene := newTestScene(body)

	res, err := runFeature(scene, "box", "cut1", map[string]any{
		"name": "cutter", "width": 1.0, "depth": 1.0, "height": 1.0,
		"transform": feature.Transform{Position: kernel.Vec3{X: 0.5}},
		"boolean": feature.BooleanRequest{
			Targets: []string{"body"}, Operation: feature.OpSubtract,
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"body"}, res.Removed)

	solid, _ := res.Added[0].AsSolid()
	require.InDelta(t, 0.5, solid.Volume(), 1e-6)
}

func TestCylinderFeatureClampsSegments(t *testing.T) {
	scene := newTestScene()
	res, err := runFeature(scene, "cylinder", "c1", map[string]any{
		"name": "post", "radius": 1.0, "height": 2.0, "segments": 1.0,
	})
	require.NoError(t, err, "segment count below 3 clamps instead of failing")

	solid, _ := res.Added[0].AsSolid()
	require.NoError(t, solid.Validate())
}

func TestExtrudeFeatureCachesSketch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketch.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"points": [[0,0], [2,0], [2,3], [0,3]]}`), 0o644))

	scene := newTestScene()
	ctor, err := feature.Default().Get("extrude")
	require.NoError(t, err)
	f := ctor("e1")
	f.(interface{ SetParams(map[string]any) }).SetParams(map[string]any{
		"name": "slab", "sketch": path, "height": 2.0,
	})
	require.NoError(t, f.Schema().Validate(f.Params()))

	res, err := f.Run(testContext(scene, "e1"))
	require.NoError(t, err)
	solid, _ := res.Added[0].AsSolid()
	require.InDelta(t, 12.0, solid.Volume(), 1e-9)

	// The profile is now cached; the file can disappear.
	require.NoError(t, os.Remove(path))
	res, err = f.Run(testContext(scene, "e1"))
	require.NoError(t, err, "recompute runs from the cached profile")
	solid, _ = res.Added[0].AsSolid()
	require.InDelta(t, 12.0, solid.Volume(), 1e-9)
}

func TestExtrudeFeatureWithoutProfile(t *testing.T) {
	scene := newTestScene()
	_, err := runFeature(scene, "extrude", "e1", map[string]any{"height": 1.0})
	require.Error(t, err)
}

func TestHoleFeature(t *testing.T) {
	body := kernel.NewBox("body", 4, 4, 2)
	scene := newTestScene(body)

	res, err := runFeature(scene, "hole", "h1", map[string]any{
		"target": "body", "radius": 0.5, "depth": 3.0, "segments": 16.0,
		"transform": feature.Transform{Position: kernel.Vec3{X: 2, Y: 2, Z: -0.5}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"body"}, res.Removed)

	solid, _ := res.Added[0].AsSolid()
	// A 16-gon drill of radius 0.5 through thickness 2 removes about 1.53.
	require.Less(t, solid.Volume(), 31.0)
	require.Greater(t, solid.Volume(), 30.0)
	require.Empty(t, solid.OrphanTriangles())
	require.Contains(t, solid.FaceNames(), "h1_drill_side")
}

func TestFilletFeatureCylinderRim(t *testing.T) {
	cyl := kernel.NewCylinder("cyl", 5, 10, 32)
	before := cyl.TriangleCount()
	scene := newTestScene(cyl)

	res, err := runFeature(scene, "fillet", "f1", map[string]any{
		"edge": "cyl_side|cyl_top", "radius": 1.0, "direction": "INSET",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cyl"}, res.Removed)
	require.Len(t, res.Added, 1)

	solid, ok := res.Added[0].AsSolid()
	require.True(t, ok)
	require.Empty(t, solid.OrphanTriangles(), "every triangle resolves to a named face")
	require.Greater(t, solid.TriangleCount(), before)
	require.Less(t, solid.Volume(), cyl.Volume(), "inset fillet removes material")
	require.Contains(t, solid.FaceNames(), "f1_fillet", "cut surface carries the tool name")
}

func TestFilletFeatureRejectsNonCircularEdge(t *testing.T) {
	box := kernel.NewBox("b", 1, 1, 1)
	scene := newTestScene(box)

	_, err := runFeature(scene, "fillet", "f1", map[string]any{
		"edge": "b_right|b_top", "radius": 0.2,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not circular")
}

func TestChamferFeatureCylinderRim(t *testing.T) {
	cyl := kernel.NewCylinder("cyl", 5, 10, 32)
	scene := newTestScene(cyl)

	res, err := runFeature(scene, "chamfer", "ch1", map[string]any{
		"edge": "cyl_side|cyl_top", "size": 0.5,
	})
	require.NoError(t, err)

	solid, _ := res.Added[0].AsSolid()
	require.Empty(t, solid.OrphanTriangles())
	require.Less(t, solid.Volume(), cyl.Volume())
	require.Contains(t, solid.FaceNames(), "ch1_chamfer")
}

func TestLinearPatternUnion(t *testing.T) {
	cube := kernel.NewBox("cube", 1, 1, 1)
	scene := newTestScene(cube)

	res, err := runFeature(scene, "linear_pattern", "pat", map[string]any{
		"source": "cube", "count": 3.0, "booleanMode": "UNION",
		"offset": feature.Transform{Position: kernel.Vec3{X: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cube"}, res.Removed)
	require.Len(t, res.Added, 1)
	require.Equal(t, "pat:result", res.Added[0].Name())

	solid, _ := res.Added[0].AsSolid()
	require.InDelta(t, 3.0, solid.Volume(), 1e-6, "three disjoint unit lobes")

	names := solid.FaceNames()
	require.Contains(t, names, "cube_left", "lobe 1 keeps the source names")
	require.Contains(t, names, "cube_left::pat_2")
	require.Contains(t, names, "cube_left::pat_3")

	// No retagged name collides with a lobe-1 name.
	plain := make(map[string]bool)
	for _, n := range names {
		if !strings.Contains(n, "::") {
			plain[n] = true
		}
	}
	for _, n := range names {
		if strings.Contains(n, "::") {
			require.False(t, plain[n])
		}
	}
	require.Len(t, names, 18, "6 faces per lobe, all distinct")
}

func TestLinearPatternNone(t *testing.T) {
	cube := kernel.NewBox("cube", 1, 1, 1)
	scene := newTestScene(cube)

	res, err := runFeature(scene, "linear_pattern", "pat", map[string]any{
		"source": "cube", "count": 2.0, "booleanMode": "NONE",
		"offset": feature.Transform{Position: kernel.Vec3{Y: 5}},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 2)
	require.Equal(t, "pat:1", res.Added[0].Name())
	require.Equal(t, "pat:2", res.Added[1].Name())
}

func TestRemeshFeatureReplacesInPlace(t *testing.T) {
	box := kernel.NewBox("body", 2, 2, 2)
	scene := newTestScene(box)

	res, err := runFeature(scene, "remesh", "r1", map[string]any{
		"target": "body", "maxEdgeLength": 0.75,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"body"}, res.Removed)
	require.Len(t, res.Added, 1)
	require.Equal(t, "body", res.Added[0].Name(), "refined solid keeps the target's name")

	solid, _ := res.Added[0].AsSolid()
	require.Greater(t, solid.TriangleCount(), box.TriangleCount())
	require.Equal(t, box.FaceNames(), solid.FaceNames())
	require.InDelta(t, 8.0, solid.Volume(), 1e-9)
}

func TestCombineFeatureConsumesTool(t *testing.T) {
	a := kernel.NewBox("a", 1, 1, 1)
	b := kernel.NewBox("b", 1, 1, 1)
	b.BakeTRS(kernel.Vec3{X: 0.5}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})
	scene := newTestScene(a, b)

	res, err := runFeature(scene, "boolean", "bool1", map[string]any{
		"tool": "b",
		"boolean": feature.BooleanRequest{
			Targets: []string{"a"}, Operation: feature.OpUnion,
		},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, res.Removed)

	solid, _ := res.Added[0].AsSolid()
	require.InDelta(t, 1.5, solid.Volume(), 1e-6)
	require.InDelta(t, 1.0, b.Volume(), 1e-9, "tool operand is cloned, not mutated")
}

func TestFeatureIdempotence(t *testing.T) {
	// Same params, same upstream scene: two runs yield identical names.
	run := func() []string {
		body := kernel.NewBox("body", 2, 2, 2)
		scene := newTestScene(body)
		res, err := runFeature(scene, "hole", "h1", map[string]any{
			"target": "body", "radius": 0.5, "depth": 3.0,
			"transform": feature.Transform{Position: kernel.Vec3{X: 1, Y: 1, Z: -0.5}},
		})
		require.NoError(t, err)
		solid, _ := res.Added[0].AsSolid()
		return append([]string{res.Added[0].Name()}, solid.FaceNames()...)
	}
	require.Equal(t, run(), run())
}
