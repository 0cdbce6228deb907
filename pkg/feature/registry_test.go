package feature_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/adze/pkg/feature"
)

func TestRegistryBuiltins(t *testing.T) {
	reg := feature.Default()
	for _, name := range []string{
		"box", "cylinder", "extrude", "boolean", "fillet",
		"chamfer", "hole", "linear_pattern", "remesh",
	} {
		ctor, err := reg.Get(name)
		require.NoError(t, err, name)
		f := ctor("f1")
		require.Equal(t, "f1", f.ID())
		require.Equal(t, name, f.Type())
		require.NotEmpty(t, f.Schema())
	}
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := feature.Default().Get("teleport")
	require.Error(t, err)

	_, ok := feature.Default().GetSafe("teleport")
	require.False(t, ok)
}

func TestRegistryAliases(t *testing.T) {
	cases := map[string]string{
		"cube":    "box",
		"combine": "boolean",
		"pattern": "linear_pattern",
		"drill":   "hole",
	}
	for alias, canonical := range cases {
		ctor, ok := feature.Default().GetSafe(alias)
		require.True(t, ok, alias)
		require.Equal(t, canonical, ctor("x").Type())

		got, ok := feature.Default().Canonical(alias)
		require.True(t, ok)
		require.Equal(t, canonical, got)
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	reg := feature.NewRegistry()
	reg.Register("box", func(id string) feature.Feature { return nil })
	require.Panics(t, func() {
		reg.Register("box", func(id string) feature.Feature { return nil })
	})
}
