// Package engine orchestrates workspace operations: materializing cache
// entries into a workspace, computing drift, re-synchronizing, and
// unloading. Batch operations isolate per-item failures so one broken
// record never aborts its siblings.
package engine

import (
	"path/filepath"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/state"
)

// Engine binds the cache manager and loading state store to one workspace.
type Engine struct {
	Cache *cache.Manager
	State *state.Store
	// WorkspaceRoot is the absolute working directory identifying this
	// workspace in the state store.
	WorkspaceRoot string
	// LoadDir is the default directory references are loaded under.
	LoadDir string
	// IgnoreEnabled controls maintenance of the workspace ignore file.
	IgnoreEnabled bool
}

// targetAbs returns the absolute path of a workspace-relative target.
func (e *Engine) targetAbs(targetPath string) string {
	return filepath.Join(e.WorkspaceRoot, filepath.FromSlash(targetPath))
}
