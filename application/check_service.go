package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/fedcheck/config"
	"github.com/rios0rios0/fedcheck/domain"
	indexPkg "github.com/rios0rios0/fedcheck/infrastructure/index"
	manifestPkg "github.com/rios0rios0/fedcheck/infrastructure/manifest"
	"github.com/rios0rios0/fedcheck/infrastructure/report"
)

// CheckService orchestrates the full reconciliation flow:
// parse manifests -> load indexes -> compare -> emit report.
type CheckService struct {
	parserRegistry *manifestPkg.Registry
	indexRegistry  *indexPkg.Registry
	out            io.Writer
}

// NewCheckService creates a new service with the given registries. Reports
// are written to out.
func NewCheckService(
	parserRegistry *manifestPkg.Registry,
	indexRegistry *indexPkg.Registry,
	out io.Writer,
) *CheckService {
	return &CheckService{
		parserRegistry: parserRegistry,
		indexRegistry:  indexRegistry,
		out:            out,
	}
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	ManifestPath     string // If set, only check this manifest (CLI override)
	SourceName       string // If set, only use this index source (CLI override)
	Output           string // If set, overrides the configured output format
	IgnoreCategories []string
	IgnorePackages   []string
	NoCache          bool
	Verbose          bool
	ListOnly         bool // Report without failing the run on mismatches
	OutdatedOnly     bool // Only emit rows that are not a match
}

// parsedManifest pairs a manifest with its extracted dependencies.
type parsedManifest struct {
	cfg  config.ManifestConfig
	deps []domain.Dependency
}

// Run executes the full reconciliation cycle using the provided
// configuration. It returns a domain.MismatchError when unignored
// mismatches remain, so the process exits nonzero.
func (s *CheckService) Run(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) error {
	if runOpts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	manifests := selectManifests(cfg, runOpts.ManifestPath)
	if len(manifests) == 0 {
		return errors.New("no manifests to check")
	}

	parsed, names, err := s.parseManifests(manifests)
	if err != nil {
		return err
	}
	logger.Infof("Parsed %d dependencies from %d manifest(s)", len(names), len(parsed))

	sources := cfg.Sources
	if runOpts.SourceName != "" {
		sources = []string{runOpts.SourceName}
	}

	checkOpts := buildCheckOptions(cfg, runOpts)
	comparator := domain.NewComparator(checkOpts.Ignore)

	var allResults []domain.ComparisonResult
	for _, source := range sources {
		idx, getErr := s.indexRegistry.Get(source, checkOpts)
		if getErr != nil {
			return getErr
		}

		logger.Infof("Loading index %q...", idx.Name())
		if loadErr := idx.Load(ctx, names); loadErr != nil {
			return fmt.Errorf("failed to load index %q: %w", source, loadErr)
		}

		for _, pm := range parsed {
			allResults = append(allResults, comparator.Compare(pm.deps, idx)...)
		}
	}

	summary := domain.Summarize(allResults)

	rows := allResults
	if runOpts.OutdatedOnly {
		rows = filterOutdated(rows)
	}

	output := cfg.Output
	if runOpts.Output != "" {
		output = runOpts.Output
	}
	emitter, err := report.NewEmitter(s.out, output)
	if err != nil {
		return err
	}
	if emitErr := emitter.Emit(rows, summary); emitErr != nil {
		return fmt.Errorf("failed to write report: %w", emitErr)
	}

	logger.Infof(
		"Run complete: %d dependencies checked, %d mismatched, %d missing, %d ignored",
		summary.Total, summary.Mismatched, summary.Missing, summary.Ignored,
	)

	if !runOpts.ListOnly && summary.Failed() {
		return &domain.MismatchError{
			Mismatched: summary.Mismatched,
			Missing:    summary.Missing,
		}
	}
	return nil
}

// parseManifests reads and parses every manifest, returning the parsed sets
// and the deduplicated crate name union used to prime the indexes.
func (s *CheckService) parseManifests(
	manifests []config.ManifestConfig,
) ([]parsedManifest, []string, error) {
	var parsed []parsedManifest
	seen := make(map[string]bool)
	var names []string

	for _, m := range manifests {
		parser := s.parserFor(m)
		if parser == nil {
			return nil, nil, fmt.Errorf("no parser for manifest %q (type %q)", m.Path, m.Type)
		}

		content, readErr := os.ReadFile(m.Path)
		if readErr != nil {
			return nil, nil, fmt.Errorf("failed to read manifest %q: %w", m.Path, readErr)
		}

		deps, parseErr := parser.Parse(string(content), m.Path, toKinds(m.Kinds))
		if parseErr != nil {
			return nil, nil, parseErr
		}

		logger.Debugf("[%s] %s: %d dependencies", parser.Name(), m.Path, len(deps))
		parsed = append(parsed, parsedManifest{cfg: m, deps: deps})

		for _, dep := range deps {
			if !seen[dep.Name] {
				seen[dep.Name] = true
				names = append(names, dep.Name)
			}
		}
	}

	return parsed, names, nil
}

func (s *CheckService) parserFor(m config.ManifestConfig) domain.Parser {
	if m.Type != "" {
		return s.parserRegistry.Get(m.Type)
	}
	return s.parserRegistry.DetectForPath(m.Path)
}

func selectManifests(cfg *config.Config, override string) []config.ManifestConfig {
	if override == "" {
		return cfg.Manifests
	}
	for _, m := range cfg.Manifests {
		if m.Path == override {
			return []config.ManifestConfig{m}
		}
	}
	return []config.ManifestConfig{{Path: override}}
}

// buildCheckOptions merges configured and CLI-provided ignore rules into the
// options handed to indexes and the comparator.
func buildCheckOptions(cfg *config.Config, runOpts RunOptions) domain.CheckOptions {
	ignore := domain.IgnoreRules{
		Packages: append([]string{}, cfg.Ignore.Packages...),
	}
	for _, cat := range cfg.Ignore.Categories {
		ignore.Categories = append(ignore.Categories, domain.MismatchCategory(cat))
	}
	for _, cat := range runOpts.IgnoreCategories {
		ignore.Categories = append(ignore.Categories, domain.MismatchCategory(cat))
	}
	ignore.Packages = append(ignore.Packages, runOpts.IgnorePackages...)

	return domain.CheckOptions{
		Release: cfg.Release,
		Arch:    cfg.Arch,
		Ignore:  ignore,
		Verbose: runOpts.Verbose,
		NoCache: runOpts.NoCache,
	}
}

func toKinds(raw []string) []domain.DependencyKind {
	kinds := make([]domain.DependencyKind, 0, len(raw))
	for _, k := range raw {
		kinds = append(kinds, domain.DependencyKind(k))
	}
	return kinds
}

func filterOutdated(results []domain.ComparisonResult) []domain.ComparisonResult {
	var filtered []domain.ComparisonResult
	for _, r := range results {
		if r.Status != domain.StatusMatch {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
