package history

import (
	"sort"
	"strings"

	"github.com/chazu/adze/pkg/feature"
)

// Scene is the name→artifact index written exclusively by the engine's
// commit step. Features see it through the read-only feature.Scene
// interface.
type Scene struct {
	arts map[string]feature.Artifact
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{arts: make(map[string]feature.Artifact)}
}

// Resolve looks an artifact up by name. Names not indexed directly fall
// back to derived view lookup: a face or edge name is searched across the
// indexed solids' materialized views, so downstream features can select
// "cyl_side|cyl_top" without anyone having published it explicitly.
func (s *Scene) Resolve(name string) (feature.Artifact, bool) {
	if a, ok := s.arts[name]; ok {
		return a, true
	}
	for _, solidName := range s.names() {
		a := s.arts[solidName]
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

// Artifacts returns every indexed artifact, ordered by name.
func (s *Scene) Artifacts() []feature.Artifact {
	out := make([]feature.Artifact, 0, len(s.arts))
	for _, name := range s.names() {
		out = append(out, s.arts[name])
	}
	return out
}

// Names returns the indexed artifact names, sorted.
func (s *Scene) Names() []string {
	return s.names()
}

func (s *Scene) names() []string {
	names := make([]string, 0, len(s.arts))
	for n := range s.arts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Scene) add(a feature.Artifact) {
	s.arts[a.Name()] = a
}

// remove unindexes an artifact and every named descendant, so removed
// names become unresolvable to subsequent steps.
func (s *Scene) remove(name string) {
	delete(s.arts, name)
	prefix := name + ":"
	for n := range s.arts {
		if strings.HasPrefix(n, prefix) {
			delete(s.arts, n)
		}
	}
}
