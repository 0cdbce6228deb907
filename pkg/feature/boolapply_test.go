package feature_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/kernel"
)

func TestApplyNoneAddsVerbatim(t *testing.T) {
	scene := newTestScene()
	tool := kernel.NewBox("tool", 1, 1, 1)

	res, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Operation: feature.OpNone}, feature.ApplyOptions{})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	require.Empty(t, res.Removed)
	require.Equal(t, "tool", res.Added[0].Name())

	got, ok := res.Added[0].AsSolid()
	require.True(t, ok)
	require.Same(t, tool, got)
}

func TestApplySubtractRetiresTarget(t *testing.T) {
	target := kernel.NewBox("body", 1, 1, 1)
	scene := newTestScene(target)

	tool := kernel.NewBox("cutter", 1, 1, 1)
	tool.BakeTRS(kernel.Vec3{X: 0.5}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})

	res, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Targets: []string{"body"}, Operation: feature.OpSubtract},
		feature.ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"body"}, res.Removed)
	require.Len(t, res.Added, 1)
	require.Equal(t, "f1:result", res.Added[0].Name())

	solid, ok := res.Added[0].AsSolid()
	require.True(t, ok)
	require.InDelta(t, 0.5, solid.Volume(), 1e-6)
	require.InDelta(t, 1.0, target.Volume(), 1e-9, "target operand stays untouched")
}

func TestApplyDropsUnresolvedTargets(t *testing.T) {
	scene := newTestScene()
	tool := kernel.NewBox("tool", 1, 1, 1)

	res, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Targets: []string{"ghost"}, Operation: feature.OpUnion},
		feature.ApplyOptions{})
	require.NoError(t, err, "unresolved targets degrade, not fail")
	require.Empty(t, res.Removed)
	require.Len(t, res.Added, 1)
	require.Equal(t, "tool", res.Added[0].Name(), "tool added verbatim when nothing resolves")
}

func TestApplyCombinesTargetsInOrder(t *testing.T) {
	a := kernel.NewBox("a", 1, 1, 1)
	b := kernel.NewBox("b", 1, 1, 1)
	b.BakeTRS(kernel.Vec3{X: 2}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})
	scene := newTestScene(a, b)

	tool := kernel.NewBox("bridge", 3, 1, 1)
	res, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Targets: []string{"a", "b"}, Operation: feature.OpUnion},
		feature.ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, res.Removed)
	require.Len(t, res.Added, 1)

	solid, ok := res.Added[0].AsSolid()
	require.True(t, ok)
	require.InDelta(t, 3.0, solid.Volume(), 1e-6)
}

func TestApplySubtractCutsEachTargetWithOriginalTool(t *testing.T) {
	a := kernel.NewBox("a", 1, 1, 1)
	b := kernel.NewBox("b", 1, 1, 1)
	b.BakeTRS(kernel.Vec3{X: 2}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})
	scene := newTestScene(a, b)

	// A bar running through both disjoint bodies. Each must lose its
	// 0.5x0.5x1 core: the original tool cuts every target, the running
	// result never becomes the next step's tool.
	tool := kernel.NewBox("bar", 5, 0.5, 0.5)
	tool.BakeTRS(kernel.Vec3{X: -1, Y: 0.25, Z: 0.25}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})

	res, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Targets: []string{"a", "b"}, Operation: feature.OpSubtract},
		feature.ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, res.Removed)
	require.Len(t, res.Added, 1)
	require.Equal(t, "f1:result", res.Added[0].Name())

	solid, ok := res.Added[0].AsSolid()
	require.True(t, ok)
	// 2.0 total minus 0.25 from each body; an uncut second body would
	// leave 1.75.
	require.InDelta(t, 1.5, solid.Volume(), 1e-6)
	require.Empty(t, solid.OrphanTriangles())
}

func TestApplyAllStepsFailing(t *testing.T) {
	target := kernel.NewBox("body", 1, 1, 1)
	scene := newTestScene(target)

	// Disjoint intersection yields an empty result, failing the only step.
	tool := kernel.NewBox("far", 1, 1, 1)
	tool.BakeTRS(kernel.Vec3{X: 10}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})

	_, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Targets: []string{"body"}, Operation: feature.OpIntersect},
		feature.ApplyOptions{})
	require.Error(t, err)

	var geoErr *kernel.GeometryError
	require.ErrorAs(t, err, &geoErr)
	require.InDelta(t, 1.0, target.Volume(), 1e-9, "failed step retires nothing")
}

func TestCombineAutoFallback(t *testing.T) {
	// A tool fully enclosing the target makes SUBTRACT empty; the AUTO
	// caller must get the UNION result instead of the failure.
	target := kernel.NewBox("body", 1, 1, 1)
	tool := kernel.NewBox("shell", 3, 3, 3)
	tool.BakeTRS(kernel.Vec3{X: -1, Y: -1, Z: -1}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})

	_, err := feature.Combine(target, tool, feature.OpSubtract, feature.ApplyOptions{})
	require.Error(t, err, "plain subtract of an enclosed body fails")

	merged, err := feature.Combine(target, tool, feature.OpSubtract,
		feature.ApplyOptions{AutoFallback: true})
	require.NoError(t, err)
	require.InDelta(t, 27.0, merged.Volume(), 1e-6, "fallback returns the union")
}

func TestApplyUnsupportedOperation(t *testing.T) {
	_, err := feature.Combine(kernel.NewBox("a", 1, 1, 1), kernel.NewBox("b", 1, 1, 1),
		feature.BoolOp("XOR"), feature.ApplyOptions{})
	require.Error(t, err)
}

func TestApplyNamePreservation(t *testing.T) {
	target := kernel.NewBox("body", 2, 2, 2)
	scene := newTestScene(target)

	tool := kernel.NewBox("notch", 1, 1, 1)
	tool.BakeTRS(kernel.Vec3{X: 1.5, Y: 0.5, Z: 0.5}, kernel.Vec3{}, kernel.Vec3{X: 1, Y: 1, Z: 1})

	res, err := feature.Apply(testContext(scene, "f1"), tool,
		feature.BooleanRequest{Targets: []string{"body"}, Operation: feature.OpSubtract},
		feature.ApplyOptions{})
	require.NoError(t, err)

	solid, _ := res.Added[0].AsSolid()
	names := solid.FaceNames()
	require.Contains(t, names, "body_left", "untouched target face keeps its name")
	hasToolCap := false
	for _, n := range names {
		if len(n) >= 6 && n[:6] == "notch_" {
			hasToolCap = true
		}
	}
	require.True(t, hasToolCap, "cut caps inherit the tool's face names, got %v", names)
	require.False(t, math.Signbit(solid.Volume()))
}
