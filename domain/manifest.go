package domain

// Parser abstracts a manifest ecosystem (Cargo today; the interface leaves
// room for other manifest formats without touching the pipeline).
type Parser interface {
	// Name returns the parser identifier (e.g. "cargo").
	Name() string

	// Detect returns true if the given path looks like a manifest of this
	// ecosystem.
	Detect(path string) bool

	// Parse extracts the dependencies declared in the manifest content,
	// limited to the requested kinds. A parse failure aborts the run with
	// a descriptive error.
	Parse(content, filePath string, kinds []DependencyKind) ([]Dependency, error)
}
