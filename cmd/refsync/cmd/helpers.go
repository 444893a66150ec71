package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/engine"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/git"
	"github.com/refsync/refsync/internal/match"
	"github.com/refsync/refsync/internal/state"
	"github.com/refsync/refsync/internal/storage"
	"github.com/refsync/refsync/internal/ui"
)

// loadConfig reads the tool configuration, defaulting when absent.
func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// newManager opens the shared clone cache.
func newManager(cfg *config.Config) (*cache.Manager, error) {
	dir, err := cfg.EffectiveCacheDir()
	if err != nil {
		return nil, err
	}
	return cache.New(dir, git.CLI{})
}

// newStore opens the global loading state file.
func newStore() (*state.Store, error) {
	dir, err := storage.Dir()
	if err != nil {
		return nil, err
	}
	return state.New(filepath.Join(dir, "loaded.json")), nil
}

// workspaceRoot returns the absolute current working directory, the
// identity of this workspace in the state store.
func workspaceRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	root, err := filepath.EvalSymlinks(wd)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return root, nil
}

// newEngine wires the engine for the current workspace.
func newEngine() (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	mgr, err := newManager(cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore()
	if err != nil {
		return nil, err
	}

	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}

	return &engine.Engine{
		Cache:         mgr,
		State:         store,
		WorkspaceRoot: root,
		LoadDir:       cfg.EffectiveLoadDir(),
		IgnoreEnabled: cfg.IgnoreEnabled(),
	}, nil
}

// disambiguate turns an ambiguous match into a unique entry, prompting
// interactively when a terminal is attached. Without a terminal the
// ambiguity stays an error; force never silences it.
func disambiguate(err error, result match.Result) (match.Entry, error) {
	if !errkind.Is(err, errkind.AmbiguousMatch) || !ui.IsInteractive() {
		return match.Entry{}, err
	}

	title := fmt.Sprintf("'%s' matches %d entries, pick one", result.Query, len(result.Matches))
	entry, ok, uiErr := ui.SelectEntry(title, result.Matches)
	if uiErr != nil {
		return match.Entry{}, uiErr
	}
	if !ok {
		return match.Entry{}, fmt.Errorf("cancelled")
	}
	return entry, nil
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
