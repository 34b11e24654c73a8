package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rios0rios0/fedcheck/domain"
)

// Output formats supported by the emitter.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

const maxColumnWidth = 40

// Emitter renders comparison results to a writer in one of the supported
// formats.
type Emitter struct {
	w      io.Writer
	format string
}

// NewEmitter creates an emitter for the given format.
func NewEmitter(w io.Writer, format string) (*Emitter, error) {
	switch format {
	case FormatTable, FormatJSON, FormatMarkdown:
		return &Emitter{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}

// Emit writes the full result set plus a summary.
func (e *Emitter) Emit(results []domain.ComparisonResult, summary domain.Summary) error {
	switch e.format {
	case FormatJSON:
		return e.emitJSON(results, summary)
	case FormatMarkdown:
		return e.emitMarkdown(results, summary)
	default:
		return e.emitTable(results, summary)
	}
}

func statusLabel(res domain.ComparisonResult) string {
	switch res.Status {
	case domain.StatusMatch:
		return "✅ match"
	case domain.StatusIgnored:
		return fmt.Sprintf("⚪ ignored (%s)", res.Category)
	case domain.StatusMissing:
		return "⚠️ missing"
	default:
		label := fmt.Sprintf("🔴 %s", res.Category)
		if res.Category == domain.CategoryLow {
			label = fmt.Sprintf("🟡 %s", res.Category)
		}
		if severity := res.Diff.Severity(); severity != "" {
			label += fmt.Sprintf(" (%s)", severity)
		}
		return label
	}
}

func (e *Emitter) emitTable(results []domain.ComparisonResult, summary domain.Summary) error {
	nameW := len("Crate")
	kindW := len("Kind")
	sourceW := len("Source")
	requiredW := len("Required")
	availableW := len("Available")

	for _, r := range results {
		nameW = max(nameW, len(r.Dependency.Name))
		kindW = max(kindW, len(string(r.Dependency.Kind)))
		sourceW = max(sourceW, len(r.Source))
		requiredW = max(requiredW, len(r.Required))
		availableW = max(availableW, len(availableOrNA(r)))
	}
	nameW = min(nameW, maxColumnWidth)

	if _, err := fmt.Fprintf(e.w, "%-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		nameW, "Crate",
		kindW, "Kind",
		sourceW, "Source",
		requiredW, "Required",
		availableW, "Available",
		"Status"); err != nil {
		return err
	}

	divider := strings.Repeat("-", nameW+kindW+sourceW+requiredW+availableW+10+len("Status"))
	if _, err := fmt.Fprintln(e.w, divider); err != nil {
		return err
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(e.w, "%-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
			nameW, truncate(r.Dependency.Name, nameW),
			kindW, string(r.Dependency.Kind),
			sourceW, r.Source,
			requiredW, r.Required,
			availableW, availableOrNA(r),
			statusLabel(r)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(e.w, "\n%s\n", summaryLine(summary))
	return err
}

func (e *Emitter) emitMarkdown(results []domain.ComparisonResult, summary domain.Summary) error {
	if _, err := fmt.Fprintln(e.w, "| Crate | Kind | Source | Required | Available | Status |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(e.w, "|-------|------|--------|----------|-----------|--------|"); err != nil {
		return err
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(e.w, "| %s | %s | %s | %s | %s | %s |\n",
			r.Dependency.Name,
			r.Dependency.Kind,
			r.Source,
			r.Required,
			availableOrNA(r),
			statusLabel(r)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(e.w, "\n%s\n", summaryLine(summary))
	return err
}

// jsonResult is the wire shape of one comparison result.
type jsonResult struct {
	Crate     string `json:"crate"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	File      string `json:"file"`
	Line      int    `json:"line,omitempty"`
	Required  string `json:"required"`
	Available string `json:"available,omitempty"`
	Status    string `json:"status"`
	Category  string `json:"category,omitempty"`
	Severity  string `json:"severity,omitempty"`
}

type jsonReport struct {
	Results []jsonResult   `json:"results"`
	Summary domain.Summary `json:"summary"`
}

func (e *Emitter) emitJSON(results []domain.ComparisonResult, summary domain.Summary) error {
	out := jsonReport{
		Results: make([]jsonResult, 0, len(results)),
		Summary: summary,
	}
	for _, r := range results {
		out.Results = append(out.Results, jsonResult{
			Crate:     r.Dependency.Name,
			Kind:      string(r.Dependency.Kind),
			Source:    r.Source,
			File:      r.Dependency.FilePath,
			Line:      r.Dependency.Line,
			Required:  r.Required,
			Available: r.Available,
			Status:    string(r.Status),
			Category:  string(r.Category),
			Severity:  r.Diff.Severity(),
		})
	}

	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func summaryLine(s domain.Summary) string {
	return fmt.Sprintf(
		"Total: %d dependencies, %d matched, %d mismatched, %d missing, %d ignored",
		s.Total, s.Matched, s.Mismatched, s.Missing, s.Ignored,
	)
}

func availableOrNA(r domain.ComparisonResult) string {
	if r.Available == "" {
		return "N/A"
	}
	return r.Available
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
