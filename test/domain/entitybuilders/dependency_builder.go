package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/fedcheck/domain"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name        string
	requirement string
	kind        domain.DependencyKind
	filePath    string
	line        int
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "serde",
		requirement: "1.0",
		kind:        domain.KindNormal,
		filePath:    "Cargo.toml",
		line:        1,
	}
}

// WithName sets the crate name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithRequirement sets the version requirement.
func (b *DependencyBuilder) WithRequirement(requirement string) *DependencyBuilder {
	b.requirement = requirement
	return b
}

// WithKind sets the dependency kind.
func (b *DependencyBuilder) WithKind(kind domain.DependencyKind) *DependencyBuilder {
	b.kind = kind
	return b
}

// WithFilePath sets the manifest path.
func (b *DependencyBuilder) WithFilePath(path string) *DependencyBuilder {
	b.filePath = path
	return b
}

// WithLine sets the line number.
func (b *DependencyBuilder) WithLine(line int) *DependencyBuilder {
	b.line = line
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() domain.Dependency {
	return domain.Dependency{
		Name:        b.name,
		Requirement: b.requirement,
		Kind:        b.kind,
		FilePath:    b.filePath,
		Line:        b.line,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "serde"
	b.requirement = "1.0"
	b.kind = domain.KindNormal
	b.filePath = "Cargo.toml"
	b.line = 1
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		requirement: b.requirement,
		kind:        b.kind,
		filePath:    b.filePath,
		line:        b.line,
	}
}
