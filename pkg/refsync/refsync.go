// Package refsync exposes the reference-mirror operations as a Go library
// for embedding in other programs.
//
// # Basic usage
//
//	client, err := refsync.New(refsync.Options{WorkspaceRoot: "/path/to/project"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Cache a source and load it into the workspace.
//	entry, err := client.Add(ctx, "https://example.com/acme/widgets.git")
//	record, err := client.Load(ctx, refsync.LoadOptions{Query: entry.Name})
//
//	// Later: refresh the cache and re-sync.
//	_, err = client.Update(ctx, entry.Name)
//	results, err := client.SyncAll(ctx, false)
package refsync

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/engine"
	"github.com/refsync/refsync/internal/git"
	"github.com/refsync/refsync/internal/state"
	"github.com/refsync/refsync/internal/storage"
)

// Options configures a refsync Client.
type Options struct {
	// WorkspaceRoot is the absolute workspace directory. Defaults to the
	// current working directory resolved at New time.
	WorkspaceRoot string

	// CacheDir overrides the shared clone cache location.
	CacheDir string

	// StatePath overrides the global loading-state file.
	StatePath string

	// LoadDir is the default directory references are loaded under.
	// Defaults to "refs".
	LoadDir string

	// DisableIgnore turns off workspace ignore-file maintenance.
	DisableIgnore bool

	// Git replaces the version-control client, mainly for tests.
	Git git.Client
}

// LoadOptions aliases the engine's load options.
type LoadOptions = engine.LoadOptions

// SyncStatus aliases the engine's drift report.
type SyncStatus = engine.SyncStatus

// SyncResult aliases the engine's per-record sync outcome.
type SyncResult = engine.SyncResult

// Entry aliases a cache entry.
type Entry = cache.Entry

// Record aliases a loading record.
type Record = state.Record

// Client is the main entry point for the refsync library.
type Client struct {
	engine *engine.Engine
}

// New creates a Client bound to one workspace.
func New(opts Options) (*Client, error) {
	root := opts.WorkspaceRoot
	if root == "" {
		abs, err := filepath.Abs(".")
		if err != nil {
			return nil, fmt.Errorf("resolving workspace root: %w", err)
		}
		root = abs
	}

	stateDir, err := storage.Dir()
	if err != nil {
		return nil, err
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(stateDir, "cache")
	}
	statePath := opts.StatePath
	if statePath == "" {
		statePath = filepath.Join(stateDir, "loaded.json")
	}
	loadDir := opts.LoadDir
	if loadDir == "" {
		loadDir = "refs"
	}

	var gitClient git.Client = git.CLI{}
	if opts.Git != nil {
		gitClient = opts.Git
	}

	mgr, err := cache.New(cacheDir, gitClient)
	if err != nil {
		return nil, fmt.Errorf("initializing cache: %w", err)
	}

	return &Client{
		engine: &engine.Engine{
			Cache:         mgr,
			State:         state.New(statePath),
			WorkspaceRoot: root,
			LoadDir:       loadDir,
			IgnoreEnabled: !opts.DisableIgnore,
		},
	}, nil
}

// Add clones url into the shared cache.
func (c *Client) Add(ctx context.Context, url string) (*Entry, error) {
	return c.engine.Cache.Add(ctx, url, cache.AddOptions{})
}

// List returns all cached sources.
func (c *Client) List() ([]Entry, error) {
	return c.engine.Cache.List()
}

// Load materializes a cached source into the workspace.
func (c *Client) Load(ctx context.Context, opts LoadOptions) (*Record, error) {
	return c.engine.Load(ctx, opts)
}

// Unload removes a loaded reference resolved from query.
func (c *Client) Unload(ctx context.Context, query string) error {
	record, err := c.engine.ResolveRecord(query)
	if err != nil {
		return err
	}
	result := c.engine.Unload(ctx, record)
	if !result.Success {
		return fmt.Errorf("unloading %s: %s", record.TargetPath, result.Message)
	}
	return nil
}

// Update refreshes one cached source and returns the revision movement.
func (c *Client) Update(ctx context.Context, query string) (*cache.RefreshResult, error) {
	entry, err := c.engine.Cache.Resolve(query)
	if err != nil {
		return nil, err
	}
	return c.engine.Cache.Refresh(ctx, entry.Name)
}

// Status computes drift for every reference loaded in the workspace.
func (c *Client) Status(ctx context.Context) ([]SyncStatus, error) {
	return c.engine.StatusAll(ctx)
}

// SyncAll re-synchronizes every loaded reference, one result per record.
func (c *Client) SyncAll(ctx context.Context, force bool) ([]SyncResult, error) {
	return c.engine.SyncAll(ctx, force)
}
