package cmd

import (
	"os"

	"github.com/frgrisk/tidemark/internal/cache"
	"github.com/frgrisk/tidemark/internal/gitrepo"
	"github.com/frgrisk/tidemark/internal/gitrepo/govcs"
	"github.com/frgrisk/tidemark/internal/tideconfig"
)

// openRepo discovers the git repository containing the current working
// directory and loads its configuration and cache store, the shared setup
// every subcommand that touches the resolver needs.
func openRepo() (gitrepo.Provider, tideconfig.Config, *cache.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, tideconfig.Config{}, nil, err
	}

	repo, err := govcs.Discover(cwd)
	if err != nil {
		return nil, tideconfig.Config{}, nil, err
	}

	cfg, err := tideconfig.Load(repo.RepoRoot())
	if err != nil {
		return nil, tideconfig.Config{}, nil, err
	}

	gitDir, err := repo.GitDir()
	if err != nil {
		return nil, tideconfig.Config{}, nil, err
	}
	store := cache.New(gitDir, cfg.Cache.Enabled)

	return repo, cfg, store, nil
}

// optionalString converts a possibly-empty CLI flag value into the
// request-level override pointer ResolveMark/ResolveFile expect: only set
// when the flag was given a non-empty value.
func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
