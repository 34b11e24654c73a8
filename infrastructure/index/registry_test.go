package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/fedcheck/domain"
	"github.com/rios0rios0/fedcheck/infrastructure/index"
	testdoubles "github.com/rios0rios0/fedcheck/test"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should build an index from its factory", func(t *testing.T) {
		t.Parallel()

		// given
		registry := index.NewRegistry()
		var gotOpts domain.CheckOptions
		registry.Register("fedora", func(opts domain.CheckOptions) (domain.Index, error) {
			gotOpts = opts
			return &testdoubles.SpyIndex{IndexName: "fedora"}, nil
		})

		// when
		idx, err := registry.Get("fedora", domain.CheckOptions{Release: "42"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "fedora", idx.Name())
		assert.Equal(t, "42", gotOpts.Release)
	})

	t.Run("should fail for an unknown source", func(t *testing.T) {
		t.Parallel()

		// given
		registry := index.NewRegistry()

		// when
		_, err := registry.Get("debian", domain.CheckOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown index source: "debian"`)
	})

	t.Run("should list registered names", func(t *testing.T) {
		t.Parallel()

		// given
		registry := index.NewRegistry()
		registry.Register("fedora", func(domain.CheckOptions) (domain.Index, error) {
			return nil, nil
		})

		// when
		names := registry.Names()

		// then
		assert.Equal(t, []string{"fedora"}, names)
	})
}
