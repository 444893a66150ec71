package engine

import "github.com/refsync/refsync/internal/state"

// SyncStatus describes the drift of one loading record against the cache.
// A non-nil Err means the drift could not be computed; NeedsSync is false
// then and must not be read as "up to date".
type SyncStatus struct {
	Record         state.Record
	LoadedRevision string
	CacheRevision  string
	CacheExists    bool
	TargetExists   bool
	NeedsSync      bool
	Err            error
}

// SyncResult is the outcome of one sync attempt. Batch operations produce
// exactly one result per record, success or failure.
type SyncResult struct {
	Record      state.Record
	Success     bool
	Message     string
	OldRevision string
	NewRevision string
}

// UnloadResult is the outcome of removing one loaded reference.
type UnloadResult struct {
	Record  state.Record
	Success bool
	Message string
}

// FailureCount returns how many results in rs failed.
func FailureCount(rs []SyncResult) int {
	n := 0
	for _, r := range rs {
		if !r.Success {
			n++
		}
	}
	return n
}
