// Package state persists loading records: which workspace has which cached
// reference materialized at which path. All workspaces share one global
// JSON file; records are keyed by (workingDirectory, targetPath) so
// unrelated workspaces never collide.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/refsync/refsync/internal/storage"
)

// KeySeparator joins working directory and target path into a store key.
// "::" cannot appear in either component on any supported platform.
const KeySeparator = "::"

const schemaVersion = 1

// Record is one materialization of a cache entry into one workspace. The
// record, not the filesystem, is the source of truth for "is this loaded";
// the target path is re-checked on every status computation.
type Record struct {
	Name             string     `json:"name"`
	TargetPath       string     `json:"targetPath"`
	WorkingDirectory string     `json:"workingDirectory"`
	Branch           string     `json:"branch,omitempty"`
	SubPath          string     `json:"subPath,omitempty"`
	Revision         string     `json:"revision"`
	LoadedAt         time.Time  `json:"loadedAt"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// Key returns the record's composite store key.
func (r Record) Key() string {
	return Key(r.WorkingDirectory, r.TargetPath)
}

// Key builds the composite key for a workspace directory and target path.
func Key(workingDirectory, targetPath string) string {
	return workingDirectory + KeySeparator + targetPath
}

// file is the on-disk shape. Version 1 wraps the keyed record map; older
// releases wrote a bare list, which the reader tolerates by starting over
// empty rather than failing.
type file struct {
	Version int               `json:"version"`
	Records map[string]Record `json:"records"`
}

// Store reads and writes the global loading-record file. Every read loads
// the whole file and caches it; every write rewrites the whole file and
// refreshes the cache.
type Store struct {
	path   string
	cached map[string]Record
}

// New creates a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// GetAll returns every record across all workspaces, keyed by composite key.
func (s *Store) GetAll() (map[string]Record, error) {
	if err := s.load(); err != nil {
		return nil, err
	}

	out := make(map[string]Record, len(s.cached))
	for k, v := range s.cached {
		out[k] = v
	}
	return out, nil
}

// ForWorkspace returns the records belonging to workingDirectory, sorted by
// target path for stable iteration.
func (s *Store) ForWorkspace(workingDirectory string) ([]Record, error) {
	if err := s.load(); err != nil {
		return nil, err
	}

	var records []Record
	for _, r := range s.cached {
		if r.WorkingDirectory == workingDirectory {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].TargetPath < records[j].TargetPath
	})
	return records, nil
}

// Get returns the record for (workingDirectory, targetPath), if any.
func (s *Store) Get(workingDirectory, targetPath string) (Record, bool, error) {
	if err := s.load(); err != nil {
		return Record{}, false, err
	}
	r, ok := s.cached[Key(workingDirectory, targetPath)]
	return r, ok, nil
}

// Set inserts or replaces a record.
func (s *Store) Set(r Record) error {
	if err := s.load(); err != nil {
		return err
	}
	s.cached[r.Key()] = r
	return s.save()
}

// Remove deletes the record for (workingDirectory, targetPath). Returns
// false without writing when no such record exists.
func (s *Store) Remove(workingDirectory, targetPath string) (bool, error) {
	if err := s.load(); err != nil {
		return false, err
	}

	key := Key(workingDirectory, targetPath)
	if _, ok := s.cached[key]; !ok {
		return false, nil
	}
	delete(s.cached, key)
	return true, s.save()
}

// Clear removes every record for workingDirectory and returns how many
// were dropped.
func (s *Store) Clear(workingDirectory string) (int, error) {
	if err := s.load(); err != nil {
		return 0, err
	}

	n := 0
	for k, r := range s.cached {
		if r.WorkingDirectory == workingDirectory {
			delete(s.cached, k)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.save()
}

func (s *Store) load() error {
	if s.cached != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cached = make(map[string]Record)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading state file %s: %w", s.path, err)
	}

	s.cached = decode(data)
	return nil
}

// decode tries the current shape first and falls back to empty for legacy
// or unrecognized shapes, so upgrading never crashes on old state.
func decode(data []byte) map[string]Record {
	var f file
	if err := json.Unmarshal(data, &f); err == nil && f.Version == schemaVersion && f.Records != nil {
		return f.Records
	}
	return make(map[string]Record)
}

func (s *Store) save() error {
	return storage.SaveJSON(s.path, file{Version: schemaVersion, Records: s.cached})
}
