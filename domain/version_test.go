package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/fedcheck/domain"
)

func TestParseRequirement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       string
		version   string
		satisfies bool
	}{
		{
			name:      "should apply caret semantics to a bare requirement",
			req:       "1.2",
			version:   "1.9.4",
			satisfies: true,
		},
		{
			name:      "should reject the next major for a bare requirement",
			req:       "1.2",
			version:   "2.0.0",
			satisfies: false,
		},
		{
			name:      "should keep zero-major caret narrowness",
			req:       "0.4.8",
			version:   "0.5.0",
			satisfies: false,
		},
		{
			name:      "should accept a patch bump under zero-major caret",
			req:       "0.4.8",
			version:   "0.4.11",
			satisfies: true,
		},
		{
			name:      "should honor an explicit caret",
			req:       "^1.0",
			version:   "1.7.0",
			satisfies: true,
		},
		{
			name:      "should honor tilde requirements",
			req:       "~1.2.3",
			version:   "1.3.0",
			satisfies: false,
		},
		{
			name:      "should honor exact requirements",
			req:       "=1.2.3",
			version:   "1.2.4",
			satisfies: false,
		},
		{
			name:      "should honor comparison sets",
			req:       ">=1.2, <1.5",
			version:   "1.4.9",
			satisfies: true,
		},
		{
			name:      "should honor wildcard requirements",
			req:       "1.*",
			version:   "1.9.0",
			satisfies: true,
		},
		{
			name:      "should accept anything for a star requirement",
			req:       "*",
			version:   "0.0.1",
			satisfies: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			constraint, err := domain.ParseRequirement(tt.req)
			require.NoError(t, err)
			version, err := domain.NormalizeVersion(tt.version)
			require.NoError(t, err)

			// when
			result := constraint.Check(version)

			// then
			assert.Equal(t, tt.satisfies, result)
		})
	}
}

func TestParseRequirement_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("should return an error for garbage input", func(t *testing.T) {
		t.Parallel()

		// given
		req := "not-a-version!!"

		// when
		_, err := domain.ParseRequirement(req)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid version requirement")
	})
}

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	t.Run("should strip an RPM epoch prefix", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "1:0.9.0"

		// when
		version, err := domain.NormalizeVersion(raw)

		// then
		require.NoError(t, err)
		assert.Equal(t, "0.9.0", version.String())
	})

	t.Run("should translate a tilde pre-release separator", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "3.0.0~rc1"

		// when
		version, err := domain.NormalizeVersion(raw)

		// then
		require.NoError(t, err)
		assert.Equal(t, "rc1", version.Prerelease())
	})

	t.Run("should coerce a two-part version", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "1.2"

		// when
		version, err := domain.NormalizeVersion(raw)

		// then
		require.NoError(t, err)
		assert.Equal(t, uint64(1), version.Major())
		assert.Equal(t, uint64(2), version.Minor())
	})

	t.Run("should return an error for a non-version string", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "abc"

		// when
		_, err := domain.NormalizeVersion(raw)

		// then
		require.Error(t, err)
	})
}

func TestMinimumRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      string
		expected string
	}{
		{
			name:     "should pass through a bare version",
			req:      "1.2.3",
			expected: "1.2.3",
		},
		{
			name:     "should strip a caret",
			req:      "^0.4.8",
			expected: "0.4.8",
		},
		{
			name:     "should take the first member of a comparison set",
			req:      ">=1.2, <2",
			expected: "1.2",
		},
		{
			name:     "should anchor a wildcard at its prefix",
			req:      "1.*",
			expected: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			req := tt.req

			// when
			result := domain.MinimumRequired(req)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCompareEVR(t *testing.T) {
	t.Parallel()

	t.Run("should rank a higher release later", func(t *testing.T) {
		t.Parallel()

		// given
		a, b := "0:1.0.0-2", "0:1.0.0-1"

		// when
		result := domain.CompareEVR(a, b)

		// then
		assert.Positive(t, result)
	})

	t.Run("should rank a higher epoch above any version", func(t *testing.T) {
		t.Parallel()

		// given
		a, b := "1:0.1.0", "0:9.9.9"

		// when
		result := domain.CompareEVR(a, b)

		// then
		assert.Positive(t, result)
	})
}

func TestAnalyzeVersionDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		required  string
		available string
		severity  string
	}{
		{
			name:      "should flag a major gap",
			required:  "1.0.0",
			available: "2.1.0",
			severity:  "major",
		},
		{
			name:      "should flag a minor gap",
			required:  "1.2.0",
			available: "1.4.0",
			severity:  "minor",
		},
		{
			name:      "should flag a patch gap",
			required:  "1.2.3",
			available: "1.2.7",
			severity:  "patch",
		},
		{
			name:      "should leave equal versions unflagged",
			required:  "1.2.3",
			available: "1.2.3",
			severity:  "",
		},
		{
			name:      "should leave non-semver versions unflagged",
			required:  "abc",
			available: "1.2.3",
			severity:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			required, available := tt.required, tt.available

			// when
			diff := domain.AnalyzeVersionDiff(required, available)

			// then
			assert.Equal(t, tt.severity, diff.Severity())
		})
	}
}
