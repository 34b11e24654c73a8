package domain

import "context"

// Index abstracts a package version source (Fedora repository metadata,
// the crates.io registry, etc.). Each implementation handles transport,
// caching, and mapping between crate names and index-side package names.
type Index interface {
	// Name returns the index identifier (e.g. "fedora", "crates").
	Name() string

	// Load prepares the index for lookups of the given crate names.
	// Implementations backed by full repository metadata may ignore the
	// name list and load everything; per-package registries fetch only
	// what was asked for. A load failure aborts the run.
	Load(ctx context.Context, names []string) error

	// Lookup returns the available version entry for a crate.
	Lookup(name string) (IndexEntry, bool)
}
