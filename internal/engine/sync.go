package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/fsutil"
	"github.com/refsync/refsync/internal/sandbox"
	"github.com/refsync/refsync/internal/state"
)

// copyExclusions lists entry names never copied from a cache clone into a
// workspace: version-control metadata and the per-entry metadata file.
var copyExclusions = []string{".git", cache.MetaFileName}

// SyncOne brings one loaded reference up to the cache's current revision.
// Without force it is a no-op when the target exists and revisions match.
// Every failure is captured as a failed result, never a panic or an error
// that would abort sibling operations.
func (e *Engine) SyncOne(ctx context.Context, record state.Record, force bool) SyncResult {
	// The record may come from the shared state file, not just from Load;
	// its target path is re-validated before anything is removed.
	if _, err := sandbox.ValidatePath(e.WorkspaceRoot, record.TargetPath); err != nil {
		return failed(record, "invalid target path: %v", err)
	}

	status, err := e.Status(ctx, record)
	if err != nil {
		return failed(record, "computing status: %v", err)
	}
	if !status.CacheExists {
		return failed(record, "cache entry '%s' is missing, re-add it with 'refsync add'", record.Name)
	}

	result := SyncResult{
		Record:      record,
		OldRevision: record.Revision,
		NewRevision: status.CacheRevision,
	}

	if !force && status.TargetExists && !status.NeedsSync {
		result.Success = true
		result.Message = "already current"
		return result
	}

	entry, err := e.Cache.Get(record.Name)
	if err != nil {
		return failed(record, "resolving cache entry: %v", err)
	}

	src, err := e.sourceDir(entry, record)
	if err != nil {
		return failed(record, "%v", err)
	}

	target := e.targetAbs(record.TargetPath)
	if err := fsutil.RemoveDir(target); err != nil {
		return failed(record, "clearing target: %v", err)
	}
	if err := fsutil.EnsureDir(filepath.Dir(target)); err != nil {
		return failed(record, "preparing target: %v", err)
	}
	if err := fsutil.CopyDir(src, target, fsutil.CopyOptions{Exclude: copyExclusions, Overwrite: true}); err != nil {
		return failed(record, "copying: %v", err)
	}

	now := time.Now().UTC()
	record.Revision = status.CacheRevision
	record.UpdatedAt = &now
	if err := e.State.Set(record); err != nil {
		return failed(record, "recording state: %v", err)
	}

	result.Record = record
	result.Success = true
	result.Message = fmt.Sprintf("synced to %s", shortRev(status.CacheRevision))
	return result
}

// SyncAll synchronizes every record of this workspace, one at a time in
// stable order. Each record yields exactly one result: a missing cache
// entry becomes a failed result without a copy attempt, an up-to-date
// record a trivial success.
func (e *Engine) SyncAll(ctx context.Context, force bool) ([]SyncResult, error) {
	records, err := e.State.ForWorkspace(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, 0, len(records))
	for _, record := range records {
		status, err := e.Status(ctx, record)
		switch {
		case err != nil:
			results = append(results, failed(record, "computing status: %v", err))
		case !status.CacheExists:
			results = append(results, failed(record, "cache entry '%s' is missing", record.Name))
		case !status.NeedsSync && !force:
			results = append(results, SyncResult{
				Record:      record,
				Success:     true,
				Message:     "already current",
				OldRevision: record.Revision,
				NewRevision: status.CacheRevision,
			})
		default:
			results = append(results, e.SyncOne(ctx, record, force))
		}
	}
	return results, nil
}

// sourceDir resolves the effective copy source: the clone root, or the
// record's sub-directory within it. A recorded sub-directory that no
// longer exists in the clone is a hard error.
func (e *Engine) sourceDir(entry cache.Entry, record state.Record) (string, error) {
	if record.SubPath == "" {
		return entry.CachePath, nil
	}

	src := filepath.Join(entry.CachePath, filepath.FromSlash(record.SubPath))
	if !fsutil.IsDir(src) {
		return "", fmt.Errorf("sub-directory '%s' not found in %s", record.SubPath, entry.Name)
	}
	return src, nil
}

func failed(record state.Record, format string, args ...any) SyncResult {
	return SyncResult{
		Record:      record,
		Success:     false,
		Message:     fmt.Sprintf(format, args...),
		OldRevision: record.Revision,
	}
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
