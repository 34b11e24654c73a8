package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for fedcheck.
type Config struct {
	Release   string           `yaml:"release"` // Fedora release ("42", "rawhide")
	Arch      string           `yaml:"arch"`
	Sources   []string         `yaml:"sources"` // "fedora", "crates"
	Manifests []ManifestConfig `yaml:"manifests"`
	Fedora    FedoraConfig     `yaml:"fedora"`
	Ignore    IgnoreConfig     `yaml:"ignore"`
	Output    string           `yaml:"output"` // "table", "json", "markdown"
}

// ManifestConfig describes a single manifest to reconcile.
type ManifestConfig struct {
	Path  string   `yaml:"path"`
	Type  string   `yaml:"type"`  // Manifest ecosystem; defaults to "cargo"
	Kinds []string `yaml:"kinds"` // "normal", "dev", "build"; defaults to all
}

// FedoraConfig holds repository metadata settings for the Fedora index.
type FedoraConfig struct {
	Mirror        string   `yaml:"mirror"`
	Repos         []string `yaml:"repos"`          // Explicit repo base URLs; overrides mirror+release
	PackageFormat string   `yaml:"package_format"` // e.g. "rust-%s-devel"
	CacheDir      string   `yaml:"cache_dir"`
	CacheTTL      Duration `yaml:"cache_ttl"`
}

// Duration wraps time.Duration so YAML can carry values like "6h" or "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// IgnoreConfig filters which mismatches fail the run.
type IgnoreConfig struct {
	Categories []string `yaml:"categories"` // "low", "high", "missing"
	Packages   []string `yaml:"packages"`
}

const (
	DefaultMirror        = "https://dl.fedoraproject.org/pub/fedora/linux"
	DefaultArch          = "x86_64"
	DefaultPackageFormat = "rust-%s-devel"
	DefaultOutput        = "table"
	DefaultCacheTTL      = Duration(6 * time.Hour)
)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variables and applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.expandEnv()
	cfg.ApplyDefaults()

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no manifests.
// The CLI fills in the rest from flags when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".fedcheck.yaml",
		".fedcheck.yml",
		"fedcheck.yaml",
		"fedcheck.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ApplyDefaults fills in zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Arch == "" {
		c.Arch = DefaultArch
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{"fedora"}
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Fedora.Mirror == "" {
		c.Fedora.Mirror = DefaultMirror
	}
	if c.Fedora.PackageFormat == "" {
		c.Fedora.PackageFormat = DefaultPackageFormat
	}
	if c.Fedora.CacheDir == "" {
		c.Fedora.CacheDir = defaultCacheDir()
	}
	if c.Fedora.CacheTTL == 0 {
		c.Fedora.CacheTTL = DefaultCacheTTL
	}
	for i := range c.Manifests {
		if c.Manifests[i].Type == "" {
			c.Manifests[i].Type = "cargo"
		}
	}
}

// expandEnv resolves ${ENV_VAR} references in path-like and URL fields.
func (c *Config) expandEnv() {
	c.Release = expand(c.Release)
	c.Fedora.Mirror = expand(c.Fedora.Mirror)
	c.Fedora.CacheDir = expand(c.Fedora.CacheDir)
	for i := range c.Fedora.Repos {
		c.Fedora.Repos[i] = expand(c.Fedora.Repos[i])
	}
	for i := range c.Manifests {
		c.Manifests[i].Path = expand(c.Manifests[i].Path)
	}
}

// expand replaces ${VAR} references with the environment value, warning on
// unset variables the same way token resolution does.
func expand(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fedcheck")
	}
	return filepath.Join(base, "fedcheck")
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if len(cfg.Manifests) == 0 {
		return errors.New("at least one manifest must be configured")
	}

	for i, m := range cfg.Manifests {
		if m.Path == "" {
			return fmt.Errorf("manifests[%d].path is required", i)
		}
		for _, kind := range m.Kinds {
			if !validKind(kind) {
				return fmt.Errorf(
					"manifests[%d].kinds: unknown kind %q (expected normal, dev, or build)",
					i, kind,
				)
			}
		}
	}

	if !validOutput(cfg.Output) {
		return fmt.Errorf("output must be table, json, or markdown (got %q)", cfg.Output)
	}

	for _, cat := range cfg.Ignore.Categories {
		if !validCategory(cat) {
			return fmt.Errorf(
				"ignore.categories: unknown category %q (expected low, high, or missing)",
				cat,
			)
		}
	}

	needsRelease := len(cfg.Fedora.Repos) == 0 && containsSource(cfg.Sources, "fedora")
	if needsRelease && cfg.Release == "" {
		return errors.New(
			"release is required for the fedora source (set release or fedora.repos)",
		)
	}

	return nil
}

func validKind(kind string) bool {
	return kind == "normal" || kind == "dev" || kind == "build"
}

func validOutput(output string) bool {
	return output == "table" || output == "json" || output == "markdown"
}

func validCategory(cat string) bool {
	return cat == "low" || cat == "high" || cat == "missing"
}

func containsSource(sources []string, name string) bool {
	for _, s := range sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
