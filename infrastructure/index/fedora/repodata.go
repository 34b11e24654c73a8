package fedora

import (
	"context"
	"crypto/sha256"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	repomdPath      = "repodata/repomd.xml"
	defaultCacheTTL = 6 * time.Hour
	cacheDirMode    = 0o755
	httpRetryMax    = 3
)

// fetcher downloads repository metadata over a retrying HTTP client and
// keeps primary.xml.gz files in an on-disk cache with a TTL.
type fetcher struct {
	client   *retryablehttp.Client
	cacheDir string
	cacheTTL time.Duration
	noCache  bool
}

func newFetcher(cacheDir string, cacheTTL time.Duration, noCache bool) *fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = httpRetryMax
	client.Logger = nil // fetch progress is reported through logrus instead

	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &fetcher{
		client:   client,
		cacheDir: cacheDir,
		cacheTTL: cacheTTL,
		noCache:  noCache,
	}
}

// ensurePrimary returns a local path to the primary.xml.gz of the given repo,
// downloading it when the cache is stale or disabled.
func (f *fetcher) ensurePrimary(ctx context.Context, base string) (string, error) {
	cachePath := f.cachePath(base)
	if !f.noCache && f.isCacheValid(cachePath) {
		logger.Debugf("[fedora] Using cached metadata %s", cachePath)
		return cachePath, nil
	}

	href, err := f.fetchPrimaryHref(ctx, base)
	if err != nil {
		return "", err
	}

	primaryURL, err := joinURL(base, href)
	if err != nil {
		return "", err
	}

	if mkErr := os.MkdirAll(filepath.Dir(cachePath), cacheDirMode); mkErr != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", mkErr)
	}
	if dlErr := f.download(ctx, primaryURL, cachePath); dlErr != nil {
		return "", dlErr
	}
	return cachePath, nil
}

// fetchPrimaryHref downloads repomd.xml and returns the href of the primary
// metadata location.
func (f *fetcher) fetchPrimaryHref(ctx context.Context, base string) (string, error) {
	repomdURL, err := joinURL(base, repomdPath)
	if err != nil {
		return "", err
	}

	resp, err := f.get(ctx, repomdURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var md repomd
	if decodeErr := xml.NewDecoder(resp.Body).Decode(&md); decodeErr != nil {
		return "", fmt.Errorf("failed to parse repomd.xml: %w", decodeErr)
	}

	for _, data := range md.Data {
		if data.Type == "primary" && data.Location.Href != "" {
			return data.Location.Href, nil
		}
	}
	return "", fmt.Errorf("primary location not found in %s", repomdURL)
}

// download streams the primary metadata to the cache file, with a progress
// bar when stderr is a terminal.
func (f *fetcher) download(ctx context.Context, rawURL, dest string) error {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "primary-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	bar := progressbar.NewOptions64(
		resp.ContentLength,
		progressbar.OptionSetDescription("downloading primary metadata"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
	)

	if _, copyErr := io.Copy(io.MultiWriter(tmp, bar), resp.Body); copyErr != nil {
		return fmt.Errorf("failed to download %s: %w", rawURL, copyErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return fmt.Errorf("failed to finish cache file: %w", closeErr)
	}

	if renameErr := os.Rename(tmp.Name(), dest); renameErr != nil {
		return fmt.Errorf("failed to move metadata into cache: %w", renameErr)
	}
	return nil
}

func (f *fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (f *fetcher) cachePath(base string) string {
	sum := sha256.Sum256([]byte(base))
	return filepath.Join(f.cacheDir, fmt.Sprintf("primary-%x.xml.gz", sum[:8]))
}

func (f *fetcher) isCacheValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < f.cacheTTL
}

func joinURL(base, ref string) (string, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid repo URL %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid metadata href %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// repomd mirrors the subset of repomd.xml needed to locate primary metadata.
type repomd struct {
	Data []struct {
		Type     string `xml:"type,attr"`
		Location struct {
			Href string `xml:"href,attr"`
		} `xml:"location"`
	} `xml:"data"`
}

// primaryPackage mirrors one <package> element of primary.xml.
type primaryPackage struct {
	Name    string `xml:"name"`
	Arch    string `xml:"arch"`
	Version struct {
		Epoch string `xml:"epoch,attr"`
		Ver   string `xml:"ver,attr"`
		Rel   string `xml:"rel,attr"`
	} `xml:"version"`
}

// parsePrimary streams primary.xml, invoking fn for every package element.
// Token-level iteration keeps memory flat: Fedora primary metadata holds
// tens of thousands of packages.
func parsePrimary(r io.Reader, fn func(primaryPackage)) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to parse primary metadata: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "package" {
			continue
		}

		var pkg primaryPackage
		if decodeErr := dec.DecodeElement(&pkg, &start); decodeErr != nil {
			return fmt.Errorf("failed to parse package element: %w", decodeErr)
		}
		fn(pkg)
	}
}
