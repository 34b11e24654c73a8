package cargo

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/fedcheck/domain"
)

const parserName = "cargo"

// Parser implements domain.Parser for Cargo manifests. It understands the
// plain dependency tables, target-specific tables, workspace dependency
// declarations, and `{ workspace = true }` references into them.
type Parser struct{}

// New creates a new Cargo manifest parser.
func New() domain.Parser {
	return &Parser{}
}

func (p *Parser) Name() string { return parserName }

// Detect returns true for paths named Cargo.toml.
func (p *Parser) Detect(path string) bool {
	return filepath.Base(path) == "Cargo.toml"
}

// manifest mirrors the subset of Cargo.toml that carries dependency
// requirements. Dependency specs stay as toml.Primitive because they can be
// either a bare string or a detail table.
type manifest struct {
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
	Target            map[string]targetTables   `toml:"target"`
	Workspace         workspaceTable            `toml:"workspace"`
}

type targetTables struct {
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
}

type workspaceTable struct {
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

// depDetail is the table form of a dependency spec.
type depDetail struct {
	Version   string `toml:"version"`
	Workspace bool   `toml:"workspace"`
	Package   string `toml:"package"`
	Path      string `toml:"path"`
	Git       string `toml:"git"`
}

// Parse extracts dependencies of the requested kinds from the manifest.
func (p *Parser) Parse(
	content, filePath string,
	kinds []domain.DependencyKind,
) ([]domain.Dependency, error) {
	var m manifest
	md, err := toml.Decode(content, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", filePath, err)
	}

	if len(kinds) == 0 {
		kinds = domain.AllKinds()
	}

	workspace, err := decodeWorkspaceDeps(md, m.Workspace.Dependencies, filePath)
	if err != nil {
		return nil, err
	}

	collector := newCollector(content, filePath, workspace)
	for _, kind := range kinds {
		for _, table := range tablesForKind(&m, kind) {
			if collectErr := collector.collect(md, table, kind); collectErr != nil {
				return nil, collectErr
			}
		}
		// Workspace declarations are requirements in their own right.
		if kind == domain.KindNormal {
			for name, spec := range workspace {
				collector.add(name, spec, domain.KindNormal)
			}
		}
	}

	deps := collector.deps
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Kind != deps[j].Kind {
			return kindRank[deps[i].Kind] < kindRank[deps[j].Kind]
		}
		return deps[i].Name < deps[j].Name
	})
	return deps, nil
}

// kindRank orders kinds the way the manifest lays them out.
var kindRank = map[domain.DependencyKind]int{
	domain.KindNormal: 0,
	domain.KindDev:    1,
	domain.KindBuild:  2,
}

// tablesForKind gathers the top-level and per-target tables of one kind.
func tablesForKind(m *manifest, kind domain.DependencyKind) []map[string]toml.Primitive {
	var tables []map[string]toml.Primitive
	switch kind {
	case domain.KindNormal:
		tables = append(tables, m.Dependencies)
		for _, t := range m.Target {
			tables = append(tables, t.Dependencies)
		}
	case domain.KindDev:
		tables = append(tables, m.DevDependencies)
		for _, t := range m.Target {
			tables = append(tables, t.DevDependencies)
		}
	case domain.KindBuild:
		tables = append(tables, m.BuildDependencies)
		for _, t := range m.Target {
			tables = append(tables, t.BuildDependencies)
		}
	}
	return tables
}

// depSpec is a decoded dependency: the crate name actually published (after
// `package = ` renames) and its version requirement.
type depSpec struct {
	crate       string
	requirement string
}

// decodeWorkspaceDeps resolves [workspace.dependencies] into specs that
// `workspace = true` references can point at.
func decodeWorkspaceDeps(
	md toml.MetaData,
	table map[string]toml.Primitive,
	filePath string,
) (map[string]depSpec, error) {
	specs := make(map[string]depSpec, len(table))
	for name, prim := range table {
		spec, ok, err := decodeSpec(md, name, prim, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse manifest %q: %w", filePath, err)
		}
		if ok {
			specs[name] = spec
		}
	}
	return specs, nil
}

// decodeSpec turns one dependency entry into a spec. It returns ok=false for
// entries that carry no version requirement (pure path/git dependencies).
func decodeSpec(
	md toml.MetaData,
	name string,
	prim toml.Primitive,
	workspace map[string]depSpec,
) (depSpec, bool, error) {
	var requirement string
	if err := md.PrimitiveDecode(prim, &requirement); err == nil {
		return depSpec{crate: name, requirement: requirement}, true, nil
	}

	var detail depDetail
	if err := md.PrimitiveDecode(prim, &detail); err != nil {
		return depSpec{}, false, fmt.Errorf("dependency %q: %w", name, err)
	}

	crate := name
	if detail.Package != "" {
		crate = detail.Package
	}

	if detail.Workspace {
		spec, ok := workspace[name]
		if !ok {
			logger.Warnf(
				"Dependency %q references workspace = true but has no workspace declaration",
				name,
			)
			return depSpec{}, false, nil
		}
		return spec, true, nil
	}

	if detail.Version == "" {
		// Path/git dependency without a version requirement; nothing to reconcile.
		logger.Debugf("Skipping dependency %q: no version requirement", name)
		return depSpec{}, false, nil
	}

	return depSpec{crate: crate, requirement: detail.Version}, true, nil
}

// collector accumulates dependencies, deduplicating repeated declarations of
// the same crate, kind, and requirement (e.g. per-target repeats).
type collector struct {
	content   string
	filePath  string
	workspace map[string]depSpec
	seen      map[string]bool
	deps      []domain.Dependency
}

func newCollector(content, filePath string, workspace map[string]depSpec) *collector {
	return &collector{
		content:   content,
		filePath:  filePath,
		workspace: workspace,
		seen:      make(map[string]bool),
	}
}

func (c *collector) collect(
	md toml.MetaData,
	table map[string]toml.Primitive,
	kind domain.DependencyKind,
) error {
	for name, prim := range table {
		spec, ok, err := decodeSpec(md, name, prim, c.workspace)
		if err != nil {
			return fmt.Errorf("failed to parse manifest %q: %w", c.filePath, err)
		}
		if ok {
			c.add(name, spec, kind)
		}
	}
	return nil
}

func (c *collector) add(declaredName string, spec depSpec, kind domain.DependencyKind) {
	key := fmt.Sprintf("%s|%s|%s", spec.crate, spec.requirement, kind)
	if c.seen[key] {
		return
	}
	c.seen[key] = true

	c.deps = append(c.deps, domain.Dependency{
		Name:        spec.crate,
		Requirement: spec.requirement,
		Kind:        kind,
		FilePath:    c.filePath,
		Line:        findLine(c.content, declaredName),
	})
}

// findLine locates the first line declaring the given dependency name.
// Best effort: returns 0 when the declaration cannot be pinpointed.
func findLine(content, name string) int {
	quoted := regexp.QuoteMeta(name)
	pattern := regexp.MustCompile(
		`^\s*(?:"` + quoted + `"|` + quoted + `)\s*=|^\[.*dependencies\.` + quoted + `\]`,
	)
	for i, line := range strings.Split(content, "\n") {
		if pattern.MatchString(line) {
			return i + 1
		}
	}
	return 0
}
