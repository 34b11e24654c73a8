package domain

// Comparator classifies manifest requirements against index entries and
// applies ignore rules. It is stateless apart from the configured rules.
type Comparator struct {
	ignore IgnoreRules
}

// NewComparator creates a comparator with the given ignore rules.
func NewComparator(ignore IgnoreRules) *Comparator {
	return &Comparator{ignore: ignore}
}

// Compare reconciles each dependency against the index, in input order.
func (c *Comparator) Compare(deps []Dependency, idx Index) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(deps))
	for _, dep := range deps {
		results = append(results, c.compareOne(dep, idx))
	}
	return results
}

func (c *Comparator) compareOne(dep Dependency, idx Index) ComparisonResult {
	res := ComparisonResult{
		Dependency: dep,
		Source:     idx.Name(),
		Required:   dep.Requirement,
	}

	entry, found := idx.Lookup(dep.Name)
	if !found {
		res.Status = StatusMissing
		res.Category = CategoryMissing
		return c.applyIgnores(res)
	}

	res.Available = entry.Version
	anchor := MinimumRequired(dep.Requirement)
	res.Diff = AnalyzeVersionDiff(anchor, entry.Version)

	constraint, reqErr := ParseRequirement(dep.Requirement)
	avail, verErr := NormalizeVersion(entry.Version)
	if reqErr != nil || verErr != nil {
		// Non-semver on either side: fall back to RPM vercmp against the
		// requirement's anchor version.
		switch cmp := CompareEVR(entry.Version, anchor); {
		case cmp == 0:
			res.Status = StatusMatch
		case cmp < 0:
			res.Status = StatusMismatch
			res.Category = CategoryLow
		default:
			res.Status = StatusMismatch
			res.Category = CategoryHigh
		}
		return c.applyIgnores(res)
	}

	if constraint.Check(avail) {
		res.Status = StatusMatch
		return res
	}

	res.Status = StatusMismatch
	res.Category = CategoryHigh
	if minimum, err := NormalizeVersion(anchor); err == nil && avail.LessThan(minimum) {
		res.Category = CategoryLow
	}
	return c.applyIgnores(res)
}

// applyIgnores downgrades mismatches covered by the ignore rules. The
// original category is kept so reports can still show it.
func (c *Comparator) applyIgnores(res ComparisonResult) ComparisonResult {
	if res.Status != StatusMismatch && res.Status != StatusMissing {
		return res
	}
	if c.ignore.IgnoresPackage(res.Dependency.Name) || c.ignore.IgnoresCategory(res.Category) {
		res.Status = StatusIgnored
	}
	return res
}

// Summarize folds a result list into counters.
func Summarize(results []ComparisonResult) Summary {
	var s Summary
	for _, res := range results {
		s.Add(res)
	}
	return s
}
