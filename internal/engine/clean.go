package engine

import (
	"context"
	"path/filepath"

	"github.com/refsync/refsync/internal/cleaner"
	"github.com/refsync/refsync/internal/fsutil"
)

// Clean removes recursively-empty directories under the workspace's load
// directory. Returns how many directories were removed.
func (e *Engine) Clean(ctx context.Context) (int, error) {
	root := filepath.Join(e.WorkspaceRoot, filepath.FromSlash(e.LoadDir))
	if !fsutil.IsDir(root) {
		return 0, nil
	}

	dirs, err := cleaner.ScanEmpty(root)
	if err != nil {
		return 0, err
	}

	removed := cleaner.CleanEmpty(ctx, root, dirs)
	// The load directory itself may now be hollow.
	removed += cleaner.RemoveEmptyAncestors(root, e.WorkspaceRoot)
	return removed, nil
}

// CleanCache removes cache entries that no workspace has loaded anywhere.
// Returns the removed entry names; per-entry failures skip the entry.
func (e *Engine) CleanCache(ctx context.Context) ([]string, error) {
	entries, err := e.Cache.List()
	if err != nil {
		return nil, err
	}

	all, err := e.State.GetAll()
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]bool, len(all))
	for _, r := range all {
		loaded[r.Name] = true
	}

	var removed []string
	for _, entry := range entries {
		if loaded[entry.Name] {
			continue
		}
		if err := e.Cache.Remove(ctx, entry.Name); err != nil {
			continue
		}
		removed = append(removed, entry.Name)
	}
	return removed, nil
}
