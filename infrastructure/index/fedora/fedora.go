package fedora

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/fedcheck/domain"
)

const (
	indexName = "fedora"

	// rust crates land in Fedora as rust-<crate>-devel noarch packages
	defaultPackageFormat = "rust-%s-devel"
)

// Options configures the Fedora repository index.
type Options struct {
	Mirror        string
	Release       string        // "42", "rawhide"
	Arch          string        // repository arch path component
	Repos         []string      // Explicit repo base URLs; overrides Mirror/Release
	PackageFormat string        // e.g. "rust-%s-devel"
	CacheDir      string
	CacheTTL      time.Duration
	NoCache       bool
}

// Index implements domain.Index backed by Fedora repository metadata
// (repomd.xml + primary.xml.gz). All configured repos are merged, keeping
// the highest EVR per crate.
type Index struct {
	opts    Options
	fetcher *fetcher
	entries map[string]domain.IndexEntry
	prefix  string // package name prefix derived from PackageFormat
	suffix  string // package name suffix derived from PackageFormat
}

// New creates a Fedora index with the given options.
func New(opts Options) (*Index, error) {
	if opts.PackageFormat == "" {
		opts.PackageFormat = defaultPackageFormat
	}
	prefix, suffix, ok := strings.Cut(opts.PackageFormat, "%s")
	if !ok {
		return nil, fmt.Errorf(
			"package format %q must contain a %%s placeholder", opts.PackageFormat,
		)
	}
	if len(opts.Repos) == 0 && opts.Release == "" {
		return nil, fmt.Errorf("fedora index requires a release or explicit repos")
	}

	return &Index{
		opts:    opts,
		fetcher: newFetcher(opts.CacheDir, opts.CacheTTL, opts.NoCache),
		entries: make(map[string]domain.IndexEntry),
		prefix:  prefix,
		suffix:  suffix,
	}, nil
}

func (i *Index) Name() string { return indexName }

// Load downloads and parses the primary metadata of every configured repo.
// The crate name list is ignored: repository metadata comes as one file, so
// the whole rust package set is indexed in a single pass.
func (i *Index) Load(ctx context.Context, _ []string) error {
	repos := i.repoURLs()
	for _, base := range repos {
		logger.Infof("[fedora] Loading repository metadata from %s", base)
		if err := i.loadRepo(ctx, base); err != nil {
			return fmt.Errorf("failed to load repo %q: %w", base, err)
		}
	}
	logger.Infof("[fedora] Indexed %d crates across %d repo(s)", len(i.entries), len(repos))
	return nil
}

// Lookup returns the highest available version entry for a crate.
func (i *Index) Lookup(name string) (domain.IndexEntry, bool) {
	entry, ok := i.entries[name]
	return entry, ok
}

// repoURLs resolves the repo base URLs for the configured release. Numbered
// releases get both the frozen release tree and the updates tree; rawhide
// has a single rolling tree.
func (i *Index) repoURLs() []string {
	if len(i.opts.Repos) > 0 {
		return i.opts.Repos
	}

	mirror := strings.TrimSuffix(i.opts.Mirror, "/")
	arch := i.opts.Arch
	if strings.EqualFold(i.opts.Release, "rawhide") {
		return []string{
			fmt.Sprintf("%s/development/rawhide/Everything/%s/os/", mirror, arch),
		}
	}
	return []string{
		fmt.Sprintf("%s/releases/%s/Everything/%s/os/", mirror, i.opts.Release, arch),
		fmt.Sprintf("%s/updates/%s/Everything/%s/", mirror, i.opts.Release, arch),
	}
}

func (i *Index) loadRepo(ctx context.Context, base string) error {
	primaryPath, err := i.fetcher.ensurePrimary(ctx, base)
	if err != nil {
		return err
	}

	file, err := os.Open(primaryPath)
	if err != nil {
		return fmt.Errorf("failed to open cached metadata: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to decompress primary metadata: %w", err)
	}
	defer gz.Close()

	count := 0
	err = parsePrimary(gz, func(p primaryPackage) {
		crate, ok := i.crateFromPackage(p.Name)
		if !ok {
			return
		}
		if p.Arch != "noarch" && p.Arch != i.opts.Arch {
			return
		}
		count++
		i.merge(domain.IndexEntry{
			Name:    crate,
			Package: p.Name,
			Epoch:   p.Version.Epoch,
			Version: p.Version.Ver,
			Release: p.Version.Rel,
			Source:  indexName,
		})
	})
	if err != nil {
		return err
	}

	logger.Debugf("[fedora] %s: matched %d packages", base, count)
	return nil
}

// merge keeps the entry with the higher EVR when a crate shows up in more
// than one repo (e.g. release vs updates).
func (i *Index) merge(entry domain.IndexEntry) {
	existing, ok := i.entries[entry.Name]
	if !ok || domain.CompareEVR(entry.EVR(), existing.EVR()) > 0 {
		i.entries[entry.Name] = entry
	}
}

// crateFromPackage extracts the crate name out of an index-side package name
// using the configured format, e.g. "rust-serde-devel" -> "serde".
func (i *Index) crateFromPackage(pkg string) (string, bool) {
	if !strings.HasPrefix(pkg, i.prefix) || !strings.HasSuffix(pkg, i.suffix) {
		return "", false
	}
	crate := pkg[len(i.prefix) : len(pkg)-len(i.suffix)]
	if crate == "" {
		return "", false
	}
	// Feature subpackages ("rust-serde+derive-devel") shadow the base crate.
	if strings.Contains(crate, "+") {
		return "", false
	}
	return crate, true
}
