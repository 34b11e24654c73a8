package domain

import "fmt"

// DependencyKind identifies which manifest table a dependency was declared in.
type DependencyKind string

const (
	KindNormal DependencyKind = "normal"
	KindDev    DependencyKind = "dev"
	KindBuild  DependencyKind = "build"
)

// AllKinds lists every dependency kind, in manifest order.
func AllKinds() []DependencyKind {
	return []DependencyKind{KindNormal, KindDev, KindBuild}
}

// Dependency represents a versioned dependency declared in a manifest.
// It is immutable once parsed.
type Dependency struct {
	Name        string // Crate/package name used for index lookups
	Requirement string // Version requirement string (e.g. "1.2", "^0.4.8", ">=1.0, <2")
	Kind        DependencyKind
	FilePath    string // Manifest file where this dependency was found
	Line        int    // Line number in the file (0 when unknown)
}

// IndexEntry represents the version of a package currently available in an
// index. Entries are sourced externally and refreshed on every run.
type IndexEntry struct {
	Name    string // Crate name (manifest-side name)
	Package string // Index-side package name (e.g. "rust-serde-devel")
	Epoch   string
	Version string
	Release string
	Source  string // Index that produced this entry ("fedora", "crates")
}

// EVR returns the epoch:version-release string used for RPM-style comparison.
func (e IndexEntry) EVR() string {
	epoch := e.Epoch
	if epoch == "" {
		epoch = "0"
	}
	if e.Release == "" {
		return fmt.Sprintf("%s:%s", epoch, e.Version)
	}
	return fmt.Sprintf("%s:%s-%s", epoch, e.Version, e.Release)
}

// MatchStatus classifies the outcome of a single comparison.
type MatchStatus string

const (
	StatusMatch    MatchStatus = "match"
	StatusMismatch MatchStatus = "mismatch"
	StatusIgnored  MatchStatus = "ignored"
	StatusMissing  MatchStatus = "missing"
)

// MismatchCategory classifies the direction of a mismatch.
type MismatchCategory string

const (
	// CategoryLow means the available version lags behind the requirement.
	CategoryLow MismatchCategory = "low"
	// CategoryHigh means the available version exceeds what the requirement allows.
	CategoryHigh MismatchCategory = "high"
	// CategoryMissing means the package is not present in the index at all.
	CategoryMissing MismatchCategory = "missing"
)

// ComparisonResult is the outcome of reconciling one dependency against
// one index entry.
type ComparisonResult struct {
	Dependency Dependency
	Source     string // Index the comparison ran against
	Required   string // Requirement as declared in the manifest
	Available  string // Version found in the index ("" when missing)
	Status     MatchStatus
	Category   MismatchCategory // Empty for matches
	Diff       VersionDiff      // Severity detail; only meaningful for mismatches
}

// IgnoreRules filters which mismatches are reported as failures.
type IgnoreRules struct {
	Categories []MismatchCategory
	Packages   []string
}

// IgnoresCategory returns true if the given category is in the ignore list.
func (r IgnoreRules) IgnoresCategory(cat MismatchCategory) bool {
	for _, c := range r.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// IgnoresPackage returns true if the given package name is in the ignore list.
func (r IgnoreRules) IgnoresPackage(name string) bool {
	for _, p := range r.Packages {
		if p == name {
			return true
		}
	}
	return false
}

// CheckOptions holds runtime options passed down to indexes and the comparator.
type CheckOptions struct {
	Release string
	Arch    string
	Ignore  IgnoreRules
	Verbose bool
	NoCache bool
}

// Summary aggregates result counts for a single run.
type Summary struct {
	Total      int
	Matched    int
	Mismatched int
	Ignored    int
	Missing    int
}

// Add folds one comparison result into the summary.
func (s *Summary) Add(res ComparisonResult) {
	s.Total++
	switch res.Status {
	case StatusMatch:
		s.Matched++
	case StatusMismatch:
		s.Mismatched++
	case StatusIgnored:
		s.Ignored++
	case StatusMissing:
		s.Missing++
	}
}

// Failed returns true when the run should exit nonzero.
func (s Summary) Failed() bool {
	return s.Mismatched > 0 || s.Missing > 0
}
