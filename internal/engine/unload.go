package engine

import (
	"context"
	"path/filepath"

	"github.com/refsync/refsync/internal/cleaner"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/fsutil"
	"github.com/refsync/refsync/internal/ignore"
	"github.com/refsync/refsync/internal/match"
	"github.com/refsync/refsync/internal/sandbox"
	"github.com/refsync/refsync/internal/state"
)

// ResolveRecord matches a query against this workspace's loading records
// and requires a unique hit. Ambiguity is an error even under force; the
// CLI may offer an interactive choice instead of calling this.
func (e *Engine) ResolveRecord(query string) (state.Record, error) {
	result, records, err := e.CandidateRecords(query)
	if err != nil {
		return state.Record{}, err
	}

	if result.None() {
		return state.Record{}, errkind.New(errkind.NotFound, "nothing loaded matches '%s'", query).
			WithHint("run 'refsync list --loaded' to see loaded references")
	}
	if result.Ambiguous() {
		return state.Record{}, errkind.Wrap(errkind.AmbiguousMatch,
			&match.AmbiguousError{Query: result.Query, Matches: result.Matches},
			"resolving '%s'", query)
	}

	unique, _ := result.Unique()
	for _, r := range records {
		if r.TargetPath == unique.TargetPath {
			return r, nil
		}
	}
	return state.Record{}, errkind.New(errkind.NotFound, "record for '%s' vanished", query)
}

// CandidateRecords matches a query against this workspace's records,
// returning the match result and the records it drew from.
func (e *Engine) CandidateRecords(query string) (match.Result, []state.Record, error) {
	records, err := e.State.ForWorkspace(e.WorkspaceRoot)
	if err != nil {
		return match.Result{}, nil, err
	}

	items := make([]match.Entry, len(records))
	for i, r := range records {
		items[i] = match.Entry{Name: r.Name, TargetPath: r.TargetPath}
	}
	return match.Match(items, query), records, nil
}

// Unload removes one loaded reference: the copied tree, the loading
// record, the ignore entry, and any parent directories the removal left
// empty. Each step's failure is captured in the result.
func (e *Engine) Unload(ctx context.Context, record state.Record) UnloadResult {
	// The record may come from the shared state file, not just from Load;
	// its target path is re-validated before anything is removed.
	if _, err := sandbox.ValidatePath(e.WorkspaceRoot, record.TargetPath); err != nil {
		return UnloadResult{Record: record, Message: "invalid target path: " + err.Error()}
	}

	target := e.targetAbs(record.TargetPath)

	if err := fsutil.RemoveDir(target); err != nil {
		return UnloadResult{Record: record, Message: "removing copy: " + err.Error()}
	}

	if _, err := e.State.Remove(record.WorkingDirectory, record.TargetPath); err != nil {
		return UnloadResult{Record: record, Message: "updating state: " + err.Error()}
	}

	if e.IgnoreEnabled {
		if _, err := ignore.RemoveEntry(e.WorkspaceRoot, ignoreEntry(record.TargetPath)); err != nil {
			return UnloadResult{Record: record, Message: "updating ignore file: " + err.Error()}
		}
	}

	cleaner.RemoveEmptyAncestors(filepath.Dir(target), e.WorkspaceRoot)
	return UnloadResult{Record: record, Success: true, Message: "unloaded"}
}

// UnloadAll unloads every record of this workspace, one at a time in
// stable order, one result per record.
func (e *Engine) UnloadAll(ctx context.Context) ([]UnloadResult, error) {
	records, err := e.State.ForWorkspace(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	results := make([]UnloadResult, 0, len(records))
	for _, record := range records {
		results = append(results, e.Unload(ctx, record))
	}
	return results, nil
}
