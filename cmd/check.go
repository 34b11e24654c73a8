package cmd

import (
	"context"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/fedcheck/application"
	"github.com/rios0rios0/fedcheck/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	manifestPath     string
	release          string
	arch             string
	source           string
	outputFormat     string
	ignoreCategories []string
	ignorePackages   []string
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a manifest against a Fedora release",
	Long: `Parse the manifest, fetch the package index for the given Fedora
release, and compare declared requirements with available versions.

The command exits nonzero when an unignored mismatch or missing package
remains, which makes it usable directly as a CI gate:

  fedcheck check --manifest-path Cargo.toml --release 42 --ignore-category low

The manifest path and release also honor the MANIFEST_PATH and
FEDORA_RELEASE environment variables, and the ignore flags honor
IGNORE_ARGS (e.g. IGNORE_ARGS="--ignore-category low").`,
	RunE: runCheck,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	checkCmd.Flags().StringVar(&manifestPath, "manifest-path", "",
		"Path to the manifest (or set MANIFEST_PATH env var)")
	checkCmd.Flags().StringVar(&release, "release", "",
		"Fedora release, e.g. 42 or rawhide (or set FEDORA_RELEASE env var)")
	checkCmd.Flags().StringVar(&arch, "arch", "",
		"Repository architecture (default x86_64)")
	checkCmd.Flags().StringVar(&source, "source", "",
		"Only use this index source (fedora, crates)")
	checkCmd.Flags().StringVar(&outputFormat, "output", "",
		"Output format: table, json, or markdown")
	checkCmd.Flags().StringSliceVar(&ignoreCategories, "ignore-category", nil,
		"Mismatch categories to ignore (low, high, missing; or set IGNORE_ARGS env var)")
	checkCmd.Flags().StringSliceVar(&ignorePackages, "ignore-package", nil,
		"Crate names whose mismatches are ignored (or set IGNORE_ARGS env var)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfigOrDefault()
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	ignoreCats, ignorePkgs := resolveIgnoreRules()

	return svc.Run(ctx, cfg, application.RunOptions{
		SourceName:       source,
		Output:           outputFormat,
		IgnoreCategories: ignoreCats,
		IgnorePackages:   ignorePkgs,
		NoCache:          noCache,
		Verbose:          verbose,
	})
}

// resolveIgnoreRules returns the ignore flags, falling back to the
// IGNORE_ARGS environment variable when no ignore flag was passed.
func resolveIgnoreRules() (categories, packages []string) {
	if len(ignoreCategories) > 0 || len(ignorePackages) > 0 {
		return ignoreCategories, ignorePackages
	}
	return parseIgnoreArgs(os.Getenv("IGNORE_ARGS"))
}

// parseIgnoreArgs splits an IGNORE_ARGS value such as
// "--ignore-category low --ignore-package serde" into ignore rules.
// Both "--flag value" and "--flag=value" spellings are accepted.
func parseIgnoreArgs(raw string) (categories, packages []string) {
	fields := strings.Fields(raw)
	for i := 0; i < len(fields); i++ {
		flag := fields[i]
		value := ""
		if eq := strings.IndexByte(flag, '='); eq >= 0 {
			flag, value = flag[:eq], flag[eq+1:]
		}

		switch flag {
		case "--ignore-category", "--ignore-package":
			if value == "" && i+1 < len(fields) {
				i++
				value = fields[i]
			}
			if value == "" {
				continue
			}
			if flag == "--ignore-category" {
				categories = append(categories, value)
			} else {
				packages = append(packages, value)
			}
		default:
			logger.Warnf("Ignoring unrecognized IGNORE_ARGS token %q", flag)
		}
	}
	return categories, packages
}

// applyFlagOverrides merges CLI flags and environment fallbacks into the
// loaded configuration.
func applyFlagOverrides(cfg *config.Config) {
	rel := release
	if rel == "" {
		rel = os.Getenv("FEDORA_RELEASE")
	}
	if rel != "" {
		cfg.Release = rel
	}

	if arch != "" {
		cfg.Arch = arch
	}

	path := manifestPath
	if path == "" {
		path = os.Getenv("MANIFEST_PATH")
	}
	if path != "" {
		cfg.Manifests = []config.ManifestConfig{{Path: path, Type: "cargo"}}
	}
	if len(cfg.Manifests) == 0 {
		cfg.Manifests = []config.ManifestConfig{{Path: "Cargo.toml", Type: "cargo"}}
	}
}
