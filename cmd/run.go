package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/fedcheck/application"
	"github.com/rios0rios0/fedcheck/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	sourceFilter   string
	manifestFilter string
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full reconciliation from a config file",
	Long: `Check every configured manifest against every configured index
source and emit one combined report.

This is the command intended for CI and cron usage. It reads the
configuration file, parses each manifest, loads each enabled index, and
exits nonzero when an unignored mismatch remains anywhere.`,
	RunE: runBatch,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	runCmd.Flags().StringVar(
		&sourceFilter, "source", "",
		"Only use this index source (fedora, crates)",
	)
	runCmd.Flags().StringVar(
		&manifestFilter, "manifest", "",
		"Only check this manifest path",
	)
	rootCmd.AddCommand(runCmd)
}

func runBatch(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create fedcheck.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting fedcheck run...")

	return svc.Run(ctx, cfg, application.RunOptions{
		ManifestPath: manifestFilter,
		SourceName:   sourceFilter,
		NoCache:      noCache,
		Verbose:      verbose,
	})
}
