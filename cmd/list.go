package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/fedcheck/application"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var showOutdatedOnly bool

//nolint:gochecknoglobals // required by cobra CLI pattern
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List dependencies with their available versions",
	Long: `List every dependency declared in the manifest together with the
version currently available in the index, without failing the run.

Useful for a quick overview of how far a manifest has drifted from what
the distribution ships.`,
	RunE: runList,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	listCmd.Flags().BoolVar(&showOutdatedOnly, "outdated", false,
		"Show only dependencies that are not a match")
	listCmd.Flags().StringVar(&manifestPath, "manifest-path", "",
		"Path to the manifest (or set MANIFEST_PATH env var)")
	listCmd.Flags().StringVar(&release, "release", "",
		"Fedora release, e.g. 42 or rawhide (or set FEDORA_RELEASE env var)")
	listCmd.Flags().StringVar(&source, "source", "",
		"Only use this index source (fedora, crates)")
	listCmd.Flags().StringVar(&outputFormat, "output", "",
		"Output format: table, json, or markdown")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
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

	return svc.Run(ctx, cfg, application.RunOptions{
		SourceName:   source,
		Output:       outputFormat,
		NoCache:      noCache,
		Verbose:      verbose,
		ListOnly:     true,
		OutdatedOnly: showOutdatedOnly,
	})
}
