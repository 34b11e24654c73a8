package cargo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/fedcheck/domain"
	"github.com/rios0rios0/fedcheck/infrastructure/manifest/cargo"
)

const sampleManifest = `[package]
name = "stratisd"
version = "3.8.0"

[dependencies]
clap = "4.1.0"
libc = { version = "0.2.137" }
serde = { version = "1.0", features = ["derive"] }
devicemapper-sys = { package = "devicemapper-sys", version = "0.2.0" }
internal-helper = { path = "../helper" }

[dev-dependencies]
assert_matches = "1.5.0"

[build-dependencies]
pkg-config = "0.3.18"

[target.'cfg(target_os = "linux")'.dependencies]
nix = "0.26.0"
`

func TestParser_Detect(t *testing.T) {
	t.Parallel()

	// given
	parser := cargo.New()

	// when / then
	assert.True(t, parser.Detect("Cargo.toml"))
	assert.True(t, parser.Detect("/src/stratisd/Cargo.toml"))
	assert.False(t, parser.Detect("pyproject.toml"))
	assert.False(t, parser.Detect("Cargo.lock"))
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("should extract all dependency kinds by default", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()

		// when
		deps, err := parser.Parse(sampleManifest, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		byName := make(map[string]domain.Dependency, len(deps))
		for _, d := range deps {
			byName[d.Name] = d
		}
		assert.Len(t, deps, 7)
		assert.Equal(t, "4.1.0", byName["clap"].Requirement)
		assert.Equal(t, domain.KindNormal, byName["clap"].Kind)
		assert.Equal(t, "0.2.137", byName["libc"].Requirement)
		assert.Equal(t, domain.KindDev, byName["assert_matches"].Kind)
		assert.Equal(t, domain.KindBuild, byName["pkg-config"].Kind)
		assert.Equal(t, "0.26.0", byName["nix"].Requirement)
	})

	t.Run("should skip path-only dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()

		// when
		deps, err := parser.Parse(sampleManifest, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		for _, d := range deps {
			assert.NotEqual(t, "internal-helper", d.Name)
		}
	})

	t.Run("should filter by requested kinds", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()

		// when
		deps, err := parser.Parse(
			sampleManifest, "Cargo.toml",
			[]domain.DependencyKind{domain.KindDev},
		)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "assert_matches", deps[0].Name)
	})

	t.Run("should record the declaring line", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()

		// when
		deps, err := parser.Parse(sampleManifest, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		for _, d := range deps {
			if d.Name == "clap" {
				assert.Equal(t, 6, d.Line)
			}
		}
	})

	t.Run("should resolve workspace references", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()
		content := `[workspace.dependencies]
serde = "1.0.190"

[dependencies]
serde = { workspace = true }
`

		// when
		deps, err := parser.Parse(content, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "serde", deps[0].Name)
		assert.Equal(t, "1.0.190", deps[0].Requirement)
	})

	t.Run("should honor package renames", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()
		content := `[dependencies]
dm = { package = "devicemapper", version = "0.34.0" }
`

		// when
		deps, err := parser.Parse(content, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "devicemapper", deps[0].Name)
		assert.Equal(t, "0.34.0", deps[0].Requirement)
	})

	t.Run("should deduplicate per-target repeats", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()
		content := `[dependencies]
libc = "0.2.137"

[target.'cfg(unix)'.dependencies]
libc = "0.2.137"
`

		// when
		deps, err := parser.Parse(content, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		assert.Len(t, deps, 1)
	})

	t.Run("should sort by kind then name", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()
		content := `[dev-dependencies]
proptest = "1.0.0"

[dependencies]
serde = "1.0"
clap = "4.1"
`

		// when
		deps, err := parser.Parse(content, "Cargo.toml", nil)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 3)
		assert.Equal(t, "clap", deps[0].Name)
		assert.Equal(t, "serde", deps[1].Name)
		assert.Equal(t, "proptest", deps[2].Name)
	})

	t.Run("should fail on invalid toml", func(t *testing.T) {
		t.Parallel()

		// given
		parser := cargo.New()

		// when
		_, err := parser.Parse("[dependencies\nclap = \"4.1\"", "Cargo.toml", nil)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse manifest")
	})
}
