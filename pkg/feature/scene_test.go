package feature_test

import (
	"log/slog"
	"sort"

	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/kernel"
)

// testScene is a minimal scene: explicit artifacts by name, with derived
// face/edge lookup on its solids the way the history scene resolves view
// references.
type testScene struct {
	arts map[string]feature.Artifact
}

func newTestScene(solids ...*kernel.Solid) *testScene {
	s := &testScene{arts: make(map[string]feature.Artifact)}
	for _, solid := range solids {
		s.add(feature.SolidArtifact("test", solid))
	}
	return s
}

func (s *testScene) add(a feature.Artifact) { s.arts[a.Name()] = a }

func (s *testScene) Resolve(name string) (feature.Artifact, bool) {
	if a, ok := s.arts[name]; ok {
		return a, true
	}
	for _, a := range s.arts {
		solid, ok := a.AsSolid()
		if !ok {
			continue
		}
		views := solid.Materialize()
		if _, ok := views.Edges[name]; ok {
			return feature.EdgeArtifact(a.Owner(), feature.EdgeRef{Solid: solid, Edge: name}), true
		}
		if _, ok := views.Faces[name]; ok {
			return feature.FaceArtifact(a.Owner(), feature.FaceRef{Solid: solid, Face: name}), true
		}
	}
	return feature.Artifact{}, false
}

func (s *testScene) Artifacts() []feature.Artifact {
	names := make([]string, 0, len(s.arts))
	for n := range s.arts {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]feature.Artifact, 0, len(names))
	for _, n := range names {
		out = append(out, s.arts[n])
	}
	return out
}

func testContext(scene feature.Scene, owner string) *feature.Context {
	return &feature.Context{Scene: scene, Log: slog.Default(), Owner: owner}
}

// runFeature builds a registered feature, applies params, and runs it.
func runFeature(scene *testScene, typeName, id string, params map[string]any) (feature.Result, error) {
	ctor, err := feature.Default().Get(typeName)
	if err != nil {
		return feature.Result{}, err
	}
	f := ctor(id)
	if setter, ok := f.(interface{ SetParams(map[string]any) }); ok {
		setter.SetParams(params)
	}
	if err := f.Schema().Validate(f.Params()); err != nil {
		return feature.Result{}, err
	}
	return f.Run(testContext(scene, id))
}
