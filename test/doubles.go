// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations, no mock frameworks involved.
package testdoubles

import (
	"context"

	"github.com/rios0rios0/fedcheck/domain"
)

// ---------------------------------------------------------------------------
// SpyIndex
// ---------------------------------------------------------------------------

// SpyIndex implements domain.Index as a configurable spy.
// Configure Entries with the versions your test expects the index to know,
// then inspect the call-tracking fields to verify behavior.
type SpyIndex struct {
	// --- identity ---
	IndexName string

	// --- Load ---
	LoadErr error
	// spy: crate names requested, per call
	LoadedNames [][]string

	// --- Lookup ---
	Entries map[string]domain.IndexEntry
}

var _ domain.Index = (*SpyIndex)(nil)

func (i *SpyIndex) Name() string { return i.IndexName }

func (i *SpyIndex) Load(_ context.Context, names []string) error {
	i.LoadedNames = append(i.LoadedNames, names)
	return i.LoadErr
}

func (i *SpyIndex) Lookup(name string) (domain.IndexEntry, bool) {
	if i.Entries == nil {
		return domain.IndexEntry{}, false
	}
	entry, ok := i.Entries[name]
	return entry, ok
}

// ---------------------------------------------------------------------------
// SpyParser
// ---------------------------------------------------------------------------

// SpyParser implements domain.Parser as a configurable spy.
type SpyParser struct {
	// --- identity ---
	ParserName string

	// --- Detect ---
	DetectResult bool

	// --- Parse ---
	Deps     []domain.Dependency
	ParseErr error
	// spy: file paths parsed
	ParsedPaths []string
}

var _ domain.Parser = (*SpyParser)(nil)

func (p *SpyParser) Name() string { return p.ParserName }

func (p *SpyParser) Detect(_ string) bool { return p.DetectResult }

func (p *SpyParser) Parse(
	_, filePath string,
	_ []domain.DependencyKind,
) ([]domain.Dependency, error) {
	p.ParsedPaths = append(p.ParsedPaths, filePath)
	return p.Deps, p.ParseErr
}
