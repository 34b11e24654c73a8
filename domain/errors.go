package domain

import "fmt"

// MismatchError reports unignored version mismatches after a completed run.
// It propagates to main so the process exits nonzero, which is what CI keys on.
type MismatchError struct {
	Mismatched int
	Missing    int
}

func (e *MismatchError) Error() string {
	switch {
	case e.Mismatched > 0 && e.Missing > 0:
		return fmt.Sprintf(
			"%d dependency version mismatch(es) and %d missing package(s)",
			e.Mismatched, e.Missing,
		)
	case e.Missing > 0:
		return fmt.Sprintf("%d missing package(s)", e.Missing)
	default:
		return fmt.Sprintf("%d dependency version mismatch(es)", e.Mismatched)
	}
}
