package crates

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/fedcheck/domain"
)

const (
	indexName      = "crates"
	defaultBaseURL = "https://index.crates.io"
	httpRetryMax   = 3
)

// Options configures the crates.io sparse index.
type Options struct {
	BaseURL string
}

// Index implements domain.Index against the crates.io sparse registry
// index. Each crate is fetched on demand during Load; crates that do not
// exist upstream simply stay absent from the entry map.
type Index struct {
	baseURL string
	client  *retryablehttp.Client
	entries map[string]domain.IndexEntry
}

// New creates a crates.io index with the given options.
func New(opts Options) *Index {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := retryablehttp.NewClient()
	client.RetryMax = httpRetryMax
	client.Logger = nil

	return &Index{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		entries: make(map[string]domain.IndexEntry),
	}
}

func (i *Index) Name() string { return indexName }

// Load fetches the registry record of every requested crate.
func (i *Index) Load(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, done := i.entries[name]; done {
			continue
		}
		version, found, err := i.fetchLatest(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to query crates.io for %q: %w", name, err)
		}
		if !found {
			logger.Debugf("[crates] %s: not in the registry", name)
			continue
		}
		i.entries[name] = domain.IndexEntry{
			Name:    name,
			Package: name,
			Version: version,
			Source:  indexName,
		}
	}
	logger.Infof("[crates] Resolved %d of %d crates", len(i.entries), len(names))
	return nil
}

// Lookup returns the latest non-yanked version entry for a crate.
func (i *Index) Lookup(name string) (domain.IndexEntry, bool) {
	entry, ok := i.entries[name]
	return entry, ok
}

// record is one JSON line of a sparse index file.
type record struct {
	Name    string `json:"name"`
	Version string `json:"vers"`
	Yanked  bool   `json:"yanked"`
}

// fetchLatest reads the crate's sparse index file and returns the highest
// non-yanked version. found=false means the crate is not registered.
func (i *Index) fetchLatest(ctx context.Context, name string) (string, bool, error) {
	url := fmt.Sprintf("%s/%s", i.baseURL, indexPath(name))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	latest := ""
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record
		if jsonErr := json.Unmarshal([]byte(line), &rec); jsonErr != nil {
			return "", false, fmt.Errorf("invalid index record: %w", jsonErr)
		}
		if rec.Yanked {
			continue
		}
		if latest == "" || isNewerVersion(latest, rec.Version) {
			latest = rec.Version
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return "", false, scanErr
	}

	if latest == "" {
		return "", false, nil
	}
	return latest, true, nil
}

// isNewerVersion compares two version strings and returns true if candidate
// is newer than current.
func isNewerVersion(current, candidate string) bool {
	cur := normalizeVersion(current)
	cand := normalizeVersion(candidate)

	if semver.IsValid(cur) && semver.IsValid(cand) {
		return semver.Compare(cand, cur) > 0
	}

	// Fall back to string comparison for non-semver versions
	return candidate > current
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility.
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// indexPath maps a crate name onto its sparse index location: one- and
// two-letter crates sit in "1/" and "2/", three-letter crates in
// "3/<first letter>/", everything else under the first four letters split
// in pairs.
func indexPath(name string) string {
	name = strings.ToLower(name)
	switch len(name) {
	case 0:
		return name
	case 1:
		return "1/" + name
	case 2:
		return "2/" + name
	case 3:
		return fmt.Sprintf("3/%s/%s", name[:1], name)
	default:
		return fmt.Sprintf("%s/%s/%s", name[:2], name[2:4], name)
	}
}
