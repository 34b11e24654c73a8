package cmd

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/fedcheck/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	// Global flags
	configPath string
	verbose    bool
	noCache    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "fedcheck",
	Short: "Reconcile manifest dependency versions against Fedora",
	Long: `A CLI tool that compares the dependency versions declared in a Cargo
manifest with the versions actually packaged in Fedora (or published on
crates.io), and fails when they have drifted apart.

Intended for CI: point it at a Cargo.toml and a Fedora release, and the
process exits nonzero when an unignored mismatch remains. Mismatches are
classified as "low" (Fedora lags the manifest), "high" (Fedora is ahead of
what the requirement allows) or "missing" (not packaged), and each category
or individual crate can be ignored.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false,
		"Ignore cached repository metadata and re-download")
}

// loadConfigOrDefault loads the configured (or auto-detected) config file,
// falling back to a default in-memory configuration driven purely by flags.
func loadConfigOrDefault() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return config.Default(), nil
		}
		path = found
	}

	logger.Infof("Using config file: %s", path)
	return config.Load(path)
}
