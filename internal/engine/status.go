package engine

import (
	"context"

	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/fsutil"
	"github.com/refsync/refsync/internal/state"
)

// Status computes the drift of one loading record. A missing cache entry
// yields CacheExists=false and NeedsSync=false: there is nothing sane to
// sync from. The target path is checked on disk every time; the record
// alone is never trusted to mean the copy is still there.
func (e *Engine) Status(ctx context.Context, record state.Record) (SyncStatus, error) {
	status := SyncStatus{
		Record:         record,
		LoadedRevision: record.Revision,
		TargetExists:   fsutil.Exists(e.targetAbs(record.TargetPath)),
	}

	entry, err := e.Cache.Get(record.Name)
	if err != nil {
		if errkind.Is(err, errkind.NotFound) {
			return status, nil
		}
		status.Err = err
		return status, err
	}
	status.CacheExists = true

	revision, err := e.Cache.CurrentRevision(ctx, entry)
	if err != nil {
		status.Err = err
		return status, err
	}
	status.CacheRevision = revision
	status.NeedsSync = !status.TargetExists || status.LoadedRevision != revision
	return status, nil
}

// StatusAll computes drift for every record in this workspace, in stable
// target-path order. Per-record errors are folded into the status rather
// than aborting the batch.
func (e *Engine) StatusAll(ctx context.Context) ([]SyncStatus, error) {
	records, err := e.State.ForWorkspace(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	statuses := make([]SyncStatus, 0, len(records))
	for _, record := range records {
		// An unreadable cache entry is reported with what we know,
		// its Err set, instead of aborting the batch.
		status, _ := e.Status(ctx, record)
		statuses = append(statuses, status)
	}
	return statuses, nil
}
