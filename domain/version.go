package domain

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	rpmutils "github.com/sassoftware/go-rpmutils"
)

// ParseRequirement converts a Cargo version requirement into a constraint set.
// Bare requirements get caret semantics, which is what Cargo applies by
// default: "1.2" means "^1.2". Tilde, exact ("="), comparison sets
// (">=1.2, <2") and wildcards ("1.*") pass through unchanged.
func ParseRequirement(req string) (*semver.Constraints, error) {
	req = strings.TrimSpace(req)
	if req == "" || req == "*" {
		return semver.NewConstraint(">=0.0.0")
	}

	parts := strings.Split(req, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" && isBareVersion(part) {
			part = "^" + part
		}
		parts[i] = part
	}

	constraint, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return nil, fmt.Errorf("invalid version requirement %q: %w", req, err)
	}
	return constraint, nil
}

// isBareVersion returns true for requirements with no operator and no
// wildcard, i.e. the form that Cargo treats as a caret requirement.
func isBareVersion(part string) bool {
	if part[0] < '0' || part[0] > '9' {
		return false
	}
	return !strings.ContainsAny(part, "*xX")
}

// NormalizeVersion parses a version string coming from an index into a
// semantic version. RPM-isms are translated first: a leading epoch
// ("1:0.9.0") is stripped and a tilde pre-release separator ("3.0.0~rc1")
// becomes a semver pre-release ("3.0.0-rc1").
func NormalizeVersion(raw string) (*semver.Version, error) {
	v := strings.TrimSpace(raw)
	if idx := strings.Index(v, ":"); idx >= 0 {
		v = v[idx+1:]
	}
	v = strings.ReplaceAll(v, "~", "-")

	parsed, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return parsed, nil
}

// MinimumRequired extracts the lowest version mentioned in a requirement,
// used as the comparison anchor when classifying mismatch direction.
func MinimumRequired(req string) string {
	first := req
	if idx := strings.Index(req, ","); idx >= 0 {
		first = req[:idx]
	}
	first = strings.TrimSpace(first)
	first = strings.TrimLeft(first, "^~=<> ")
	first = strings.TrimSpace(first)
	// "1.*" anchors at "1"
	first = strings.TrimSuffix(first, ".*")
	first = strings.TrimSuffix(first, ".x")
	return first
}

// CompareEVR compares two RPM version strings (optionally with epoch and
// release) using RPM's vercmp rules. It returns <0, 0 or >0. Used as the
// fallback when a version does not parse as semver.
func CompareEVR(a, b string) int {
	return rpmutils.Vercmp(a, b)
}

// VersionDiff describes how far apart the required and available versions are.
type VersionDiff struct {
	Required  string
	Available string
	IsMajor   bool
	IsMinor   bool
	IsPatch   bool
}

// AnalyzeVersionDiff determines the severity of a version gap. When either
// side does not parse as a semantic version, all severity flags stay false.
func AnalyzeVersionDiff(required, available string) VersionDiff {
	diff := VersionDiff{
		Required:  required,
		Available: available,
	}

	req, reqErr := NormalizeVersion(required)
	avail, availErr := NormalizeVersion(available)
	if reqErr != nil || availErr != nil {
		return diff
	}

	switch {
	case req.Major() != avail.Major():
		diff.IsMajor = true
	case req.Minor() != avail.Minor():
		diff.IsMinor = true
	case req.Patch() != avail.Patch():
		diff.IsPatch = true
	}
	return diff
}

// Severity renders the diff as a short label for reports.
func (d VersionDiff) Severity() string {
	switch {
	case d.IsMajor:
		return "major"
	case d.IsMinor:
		return "minor"
	case d.IsPatch:
		return "patch"
	default:
		return ""
	}
}
