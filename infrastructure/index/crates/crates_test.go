package crates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/fedcheck/infrastructure/index/crates"
)

// registryServer serves sparse index files keyed by request path and records
// every path it is asked for.
func registryServer(t *testing.T, files map[string]string) (*crates.Index, *[]string) {
	t.Helper()

	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			paths = append(paths, r.URL.Path)
			mu.Unlock()

			body, ok := files[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(body))
		},
	))
	t.Cleanup(server.Close)

	return crates.New(crates.Options{BaseURL: server.URL}), &paths
}

func TestIndex_Load(t *testing.T) {
	t.Parallel()

	t.Run("should resolve the highest non-yanked version", func(t *testing.T) {
		t.Parallel()

		// given
		idx, _ := registryServer(t, map[string]string{
			"/se/rd/serde": `{"name":"serde","vers":"1.0.0","yanked":false}
{"name":"serde","vers":"1.0.204","yanked":false}
{"name":"serde","vers":"2.0.0","yanked":true}`,
		})

		// when
		err := idx.Load(context.Background(), []string{"serde"})

		// then
		require.NoError(t, err)
		entry, ok := idx.Lookup("serde")
		require.True(t, ok)
		assert.Equal(t, "1.0.204", entry.Version)
		assert.Equal(t, "crates", entry.Source)
	})

	t.Run("should use the sparse index path scheme", func(t *testing.T) {
		t.Parallel()

		// given
		idx, paths := registryServer(t, map[string]string{
			"/1/a":         `{"name":"a","vers":"0.1.0","yanked":false}`,
			"/2/io":        `{"name":"io","vers":"0.1.0","yanked":false}`,
			"/3/l/log":     `{"name":"log","vers":"0.4.20","yanked":false}`,
			"/cl/ap/clap":  `{"name":"clap","vers":"4.5.0","yanked":false}`,
		})

		// when
		err := idx.Load(context.Background(), []string{"a", "io", "log", "clap"})

		// then
		require.NoError(t, err)
		assert.ElementsMatch(
			t,
			[]string{"/1/a", "/2/io", "/3/l/log", "/cl/ap/clap"},
			*paths,
		)
	})

	t.Run("should treat unknown crates as absent", func(t *testing.T) {
		t.Parallel()

		// given
		idx, _ := registryServer(t, map[string]string{})

		// when
		err := idx.Load(context.Background(), []string{"no-such-crate"})

		// then
		require.NoError(t, err)
		_, ok := idx.Lookup("no-such-crate")
		assert.False(t, ok)
	})

	t.Run("should not refetch crates already loaded", func(t *testing.T) {
		t.Parallel()

		// given
		idx, paths := registryServer(t, map[string]string{
			"/3/l/log": `{"name":"log","vers":"0.4.20","yanked":false}`,
		})
		require.NoError(t, idx.Load(context.Background(), []string{"log"}))

		// when
		err := idx.Load(context.Background(), []string{"log"})

		// then
		require.NoError(t, err)
		assert.Len(t, *paths, 1)
	})

	t.Run("should fail on server errors", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		))
		t.Cleanup(server.Close)
		idx := crates.New(crates.Options{BaseURL: server.URL})

		// when
		err := idx.Load(context.Background(), []string{"serde"})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed to query crates.io for "serde"`)
	})
}
