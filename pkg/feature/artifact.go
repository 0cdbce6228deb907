package feature

import (
	"github.com/chazu/adze/pkg/kernel"
)

// Kind discriminates the artifact union.
type Kind int

const (
	KindSolid Kind = iota
	KindFace
	KindEdge
)

// String returns the kind name used in logs and schema filters.
func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindFace:
		return "face"
	case KindEdge:
		return "edge"
	}
	return "unknown"
}

// Artifact is one named entity in the scene. The kind tag is closed:
// exactly one of the payload accessors succeeds for any given artifact.
type Artifact struct {
	name  string
	owner string
	kind  Kind

	solid *kernel.Solid
	face  FaceRef
	edge  EdgeRef
}

// FaceRef points at a named face on a live solid. The face view itself is
// re-derived on demand because remesh invalidates materialized views.
type FaceRef struct {
	Solid *kernel.Solid
	Face  string
}

// EdgeRef points at a named edge on a live solid.
type EdgeRef struct {
	Solid *kernel.Solid
	Edge  string
}

// SolidArtifact wraps a solid, named after the solid itself.
func SolidArtifact(owner string, s *kernel.Solid) Artifact {
	return Artifact{name: s.Name(), owner: owner, kind: KindSolid, solid: s}
}

// FaceArtifact wraps a named face of a solid.
func FaceArtifact(owner string, ref FaceRef) Artifact {
	return Artifact{name: ref.Face, owner: owner, kind: KindFace, face: ref}
}

// EdgeArtifact wraps a named edge of a solid.
func EdgeArtifact(owner string, ref EdgeRef) Artifact {
	return Artifact{name: ref.Edge, owner: owner, kind: KindEdge, edge: ref}
}

// Name returns the globally unique scene name.
func (a Artifact) Name() string { return a.name }

// Owner returns the id of the feature that emitted this artifact.
func (a Artifact) Owner() string { return a.owner }

// Kind returns the union tag.
func (a Artifact) Kind() Kind { return a.kind }

// AsSolid returns the solid payload when the artifact is a solid.
func (a Artifact) AsSolid() (*kernel.Solid, bool) {
	if a.kind != KindSolid {
		return nil, false
	}
	return a.solid, true
}

// AsFace returns the face payload when the artifact is a face.
func (a Artifact) AsFace() (FaceRef, bool) {
	if a.kind != KindFace {
		return FaceRef{}, false
	}
	return a.face, true
}

// AsEdge returns the edge payload when the artifact is an edge.
func (a Artifact) AsEdge() (EdgeRef, bool) {
	if a.kind != KindEdge {
		return EdgeRef{}, false
	}
	return a.edge, true
}
