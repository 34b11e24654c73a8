package cmd

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/dig"

	"github.com/rios0rios0/fedcheck/application"
	"github.com/rios0rios0/fedcheck/config"
	"github.com/rios0rios0/fedcheck/domain"
	indexPkg "github.com/rios0rios0/fedcheck/infrastructure/index"
	"github.com/rios0rios0/fedcheck/infrastructure/index/crates"
	"github.com/rios0rios0/fedcheck/infrastructure/index/fedora"
	manifestPkg "github.com/rios0rios0/fedcheck/infrastructure/manifest"
	"github.com/rios0rios0/fedcheck/infrastructure/manifest/cargo"
)

// buildService wires the registries and the check service through a DIG
// container and returns the ready-to-run service.
func buildService(cfg *config.Config) (*application.CheckService, error) {
	container := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		newParserRegistry,
		newIndexRegistry,
		func(
			parsers *manifestPkg.Registry,
			indexes *indexPkg.Registry,
		) *application.CheckService {
			return application.NewCheckService(parsers, indexes, os.Stdout)
		},
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, fmt.Errorf("failed to wire dependencies: %w", err)
		}
	}

	var svc *application.CheckService
	if err := container.Invoke(func(s *application.CheckService) {
		svc = s
	}); err != nil {
		return nil, fmt.Errorf("failed to build check service: %w", err)
	}
	return svc, nil
}

func newParserRegistry() *manifestPkg.Registry {
	reg := manifestPkg.NewRegistry()
	reg.Register(cargo.New())
	return reg
}

func newIndexRegistry(cfg *config.Config) *indexPkg.Registry {
	reg := indexPkg.NewRegistry()
	reg.Register("fedora", func(opts domain.CheckOptions) (domain.Index, error) {
		return fedora.New(fedora.Options{
			Mirror:        cfg.Fedora.Mirror,
			Release:       opts.Release,
			Arch:          opts.Arch,
			Repos:         cfg.Fedora.Repos,
			PackageFormat: cfg.Fedora.PackageFormat,
			CacheDir:      cfg.Fedora.CacheDir,
			CacheTTL:      time.Duration(cfg.Fedora.CacheTTL),
			NoCache:       opts.NoCache,
		})
	})
	reg.Register("crates", func(_ domain.CheckOptions) (domain.Index, error) {
		return crates.New(crates.Options{}), nil
	})
	return reg
}
