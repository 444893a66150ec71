package engine

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/fsutil"
	"github.com/refsync/refsync/internal/ignore"
	"github.com/refsync/refsync/internal/sandbox"
	"github.com/refsync/refsync/internal/state"
)

// LoadOptions configures a load operation.
type LoadOptions struct {
	// Query names the cache entry (full name or any matcher form).
	Query string
	// TargetPath is the workspace-relative destination. Defaults to
	// <loadDir>/<repo>.
	TargetPath string
	// Branch switches the cache entry to this branch before copying.
	Branch string
	// SubPath copies only this sub-directory of the clone.
	SubPath string
	// Force allows replacing an existing copy at the target path.
	Force bool
}

// Load materializes a cache entry into the workspace: copy the content,
// record the loading, and register the path in the ignore file.
func (e *Engine) Load(ctx context.Context, opts LoadOptions) (*state.Record, error) {
	entry, err := e.Cache.Resolve(opts.Query)
	if err != nil {
		return nil, err
	}

	if opts.Branch != "" {
		if err := e.Cache.SwitchBranch(ctx, entry.Name, opts.Branch); err != nil {
			return nil, err
		}
	}

	targetPath := e.normalizeTarget(entry, opts.TargetPath)
	if _, err := sandbox.ValidatePath(e.WorkspaceRoot, targetPath); err != nil {
		return nil, errkind.Wrap(errkind.InvalidInput, err, "invalid target path '%s'", targetPath)
	}

	if _, exists, err := e.State.Get(e.WorkspaceRoot, targetPath); err != nil {
		return nil, err
	} else if exists && !opts.Force {
		return nil, errkind.New(errkind.AlreadyExists, "'%s' is already loaded at %s", entry.Name, targetPath).
			WithHint("run 'refsync update --sync' to refresh it, or load with --force")
	}

	target := e.targetAbs(targetPath)
	if fsutil.Exists(target) && !opts.Force {
		return nil, errkind.New(errkind.Filesystem, "path %s already exists in the workspace", targetPath).
			WithHint("choose another path or load with --force to replace it")
	}

	record := state.Record{
		Name:             entry.Name,
		TargetPath:       targetPath,
		WorkingDirectory: e.WorkspaceRoot,
		Branch:           opts.Branch,
		SubPath:          opts.SubPath,
		LoadedAt:         time.Now().UTC(),
	}
	if record.Branch == "" {
		if meta, err := e.Cache.ReadMeta(entry); err == nil {
			record.Branch = meta.Branch
		}
	}

	result := e.SyncOne(ctx, record, true)
	if !result.Success {
		return nil, errkind.New(errkind.Filesystem, "loading %s: %s", entry.Name, result.Message)
	}
	record = result.Record

	if e.IgnoreEnabled {
		if err := ignore.AddEntry(e.WorkspaceRoot, ignoreEntry(targetPath)); err != nil {
			return nil, errkind.Wrap(errkind.Filesystem, err, "updating ignore file")
		}
	}
	return &record, nil
}

// normalizeTarget picks and canonicalizes the workspace-relative target
// path for an entry.
func (e *Engine) normalizeTarget(entry cache.Entry, targetPath string) string {
	if targetPath == "" {
		targetPath = path.Join(e.LoadDir, path.Base(entry.Name))
	}
	targetPath = strings.ReplaceAll(targetPath, "\\", "/")
	return strings.Trim(path.Clean(targetPath), "/")
}

// ignoreEntry is the ignore-file line for a loaded directory.
func ignoreEntry(targetPath string) string {
	return targetPath + "/"
}
