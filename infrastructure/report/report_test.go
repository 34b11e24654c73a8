package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/fedcheck/domain"
	"github.com/rios0rios0/fedcheck/infrastructure/report"
)

func sampleResults() ([]domain.ComparisonResult, domain.Summary) {
	results := []domain.ComparisonResult{
		{
			Dependency: domain.Dependency{
				Name: "serde", Kind: domain.KindNormal, FilePath: "Cargo.toml", Line: 6,
			},
			Source:    "fedora",
			Required:  "1.0",
			Available: "1.0.204",
			Status:    domain.StatusMatch,
		},
		{
			Dependency: domain.Dependency{
				Name: "clap", Kind: domain.KindNormal, FilePath: "Cargo.toml", Line: 7,
			},
			Source:    "fedora",
			Required:  "4.5",
			Available: "4.1.0",
			Status:    domain.StatusMismatch,
			Category:  domain.CategoryLow,
			Diff:      domain.VersionDiff{IsMinor: true},
		},
		{
			Dependency: domain.Dependency{
				Name: "devicemapper", Kind: domain.KindNormal, FilePath: "Cargo.toml",
			},
			Source:   "fedora",
			Required: "0.34.0",
			Status:   domain.StatusMissing,
			Category: domain.CategoryMissing,
		},
	}

	var summary domain.Summary
	for _, r := range results {
		summary.Add(r)
	}
	return results, summary
}

func TestNewEmitter(t *testing.T) {
	t.Parallel()

	t.Run("should accept every supported format", func(t *testing.T) {
		t.Parallel()

		for _, format := range []string{"table", "json", "markdown"} {
			// given / when
			emitter, err := report.NewEmitter(&bytes.Buffer{}, format)

			// then
			require.NoError(t, err)
			assert.NotNil(t, emitter)
		}
	})

	t.Run("should reject an unknown format", func(t *testing.T) {
		t.Parallel()

		// given / when
		_, err := report.NewEmitter(&bytes.Buffer{}, "yaml")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown output format: "yaml"`)
	})
}

func TestEmitter_Emit(t *testing.T) {
	t.Parallel()

	t.Run("should render a table with a summary line", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer
		emitter, err := report.NewEmitter(&buf, report.FormatTable)
		require.NoError(t, err)
		results, summary := sampleResults()

		// when
		err = emitter.Emit(results, summary)

		// then
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "Crate")
		assert.Contains(t, out, "serde")
		assert.Contains(t, out, "low (minor)")
		assert.Contains(t, out, "missing")
		assert.Contains(t, out, "N/A")
		assert.Contains(
			t, out,
			"Total: 3 dependencies, 1 matched, 1 mismatched, 1 missing, 0 ignored",
		)
	})

	t.Run("should render a markdown table", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer
		emitter, err := report.NewEmitter(&buf, report.FormatMarkdown)
		require.NoError(t, err)
		results, summary := sampleResults()

		// when
		err = emitter.Emit(results, summary)

		// then
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, "| Crate | Kind | Source | Required | Available | Status |", lines[0])
		assert.Contains(t, lines[3], "| clap |")
		assert.Contains(t, lines[3], "low (minor)")
	})

	t.Run("should render machine-readable json", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer
		emitter, err := report.NewEmitter(&buf, report.FormatJSON)
		require.NoError(t, err)
		results, summary := sampleResults()

		// when
		err = emitter.Emit(results, summary)

		// then
		require.NoError(t, err)
		var decoded struct {
			Results []struct {
				Crate     string `json:"crate"`
				Required  string `json:"required"`
				Available string `json:"available"`
				Status    string `json:"status"`
				Category  string `json:"category"`
				Severity  string `json:"severity"`
			} `json:"results"`
			Summary domain.Summary `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded.Results, 3)
		assert.Equal(t, "clap", decoded.Results[1].Crate)
		assert.Equal(t, "mismatch", decoded.Results[1].Status)
		assert.Equal(t, "low", decoded.Results[1].Category)
		assert.Equal(t, "minor", decoded.Results[1].Severity)
		assert.Empty(t, decoded.Results[2].Available)
		assert.Equal(t, 3, decoded.Summary.Total)
		assert.True(t, decoded.Summary.Failed())
	})

	t.Run("should handle an empty result set", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer
		emitter, err := report.NewEmitter(&buf, report.FormatTable)
		require.NoError(t, err)

		// when
		err = emitter.Emit(nil, domain.Summary{})

		// then
		require.NoError(t, err)
		assert.Contains(
			t, buf.String(),
			"Total: 0 dependencies, 0 matched, 0 mismatched, 0 missing, 0 ignored",
		)
	})
}
