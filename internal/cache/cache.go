// Package cache manages the shared clone cache: one local clone per remote
// source, an index file naming them, and per-entry metadata stored beside
// each clone.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/fsutil"
	"github.com/refsync/refsync/internal/git"
	"github.com/refsync/refsync/internal/match"
	"github.com/refsync/refsync/internal/repourl"
	"github.com/refsync/refsync/internal/storage"
)

// MetaFileName is the per-entry metadata file written inside each clone.
// Sync copies exclude it.
const MetaFileName = ".refsync-meta.json"

const indexFileName = "index.json"

// Entry is one cached remote source, globally unique by its derived
// host/owner/repo name.
type Entry struct {
	Name      string    `json:"-"`
	URL       string    `json:"url"`
	CachePath string    `json:"path"`
	AddedAt   time.Time `json:"addedAt"`
}

// Meta is the version record stored alongside a cached clone.
type Meta struct {
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Revision  string    `json:"revision"`
	Branch    string    `json:"branch,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	Ref       string    `json:"ref,omitempty"`
}

// Manager resolves cache entries, their physical paths, and their current
// revisions. All mutation of the cache directory goes through it.
type Manager struct {
	dir   string
	git   git.Client
	index map[string]Entry
}

// New creates a Manager over the cache directory, creating it if missing.
func New(dir string, g git.Client) (*Manager, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &Manager{dir: dir, git: g}, nil
}

// Dir returns the cache root directory.
func (m *Manager) Dir() string {
	return m.dir
}

// AddOptions configures Add.
type AddOptions struct {
	Branch string
}

// Add clones url into the cache under its derived name. Re-adding an
// existing name is rejected.
func (m *Manager) Add(ctx context.Context, url string, opts AddOptions) (*Entry, error) {
	parsed, err := repourl.Parse(url)
	if err != nil {
		return nil, errkind.Wrap(errkind.InvalidInput, err, "parsing source URL").
			WithHint("use https://host/owner/repo[.git] or user@host:owner/repo[.git]")
	}

	if err := m.load(); err != nil {
		return nil, err
	}

	name := parsed.Name()
	if _, exists := m.index[name]; exists {
		return nil, errkind.New(errkind.AlreadyExists, "'%s' is already cached", name).
			WithHint("run 'refsync update %s' to refresh it", name)
	}

	cachePath := filepath.Join(m.dir, filepath.FromSlash(name))
	if err := fsutil.EnsureDir(filepath.Dir(cachePath)); err != nil {
		return nil, errkind.Wrap(errkind.Filesystem, err, "preparing cache path")
	}

	if err := m.git.Clone(ctx, url, cachePath, git.CloneOptions{Branch: opts.Branch}); err != nil {
		_ = fsutil.RemoveDir(cachePath)
		return nil, errkind.Wrap(errkind.GitFailure, err, "cloning %s", url).
			WithHint("check the URL and your network access")
	}

	now := time.Now().UTC()
	entry := Entry{Name: name, URL: url, CachePath: cachePath, AddedAt: now}

	revision, err := m.git.CurrentRevision(ctx, cachePath)
	if err != nil {
		_ = fsutil.RemoveDir(cachePath)
		return nil, errkind.Wrap(errkind.GitFailure, err, "reading revision of %s", name)
	}

	meta := Meta{
		URL:       url,
		Name:      name,
		AddedAt:   now,
		UpdatedAt: now,
		Revision:  revision,
		Branch:    opts.Branch,
	}
	if err := m.writeMeta(entry, meta); err != nil {
		_ = fsutil.RemoveDir(cachePath)
		return nil, err
	}

	m.index[name] = entry
	if err := m.saveIndex(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes the entry's clone, metadata, and index record.
func (m *Manager) Remove(ctx context.Context, name string) error {
	entry, err := m.Get(name)
	if err != nil {
		return err
	}

	if err := fsutil.RemoveDir(entry.CachePath); err != nil {
		return errkind.Wrap(errkind.Filesystem, err, "removing clone of %s", name)
	}
	// The clone may leave empty host/owner parents behind.
	for dir := filepath.Dir(entry.CachePath); dir != m.dir; dir = filepath.Dir(dir) {
		if entries, err := os.ReadDir(dir); err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}

	delete(m.index, name)
	return m.saveIndex()
}

// List returns all entries sorted by name.
func (m *Manager) List() ([]Entry, error) {
	if err := m.load(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(m.index))
	for _, e := range m.index {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Get returns the entry with the exact canonical name.
func (m *Manager) Get(name string) (Entry, error) {
	if err := m.load(); err != nil {
		return Entry{}, err
	}

	entry, ok := m.index[name]
	if !ok {
		return Entry{}, errkind.New(errkind.NotFound, "no cache entry named '%s'", name).
			WithHint("run 'refsync list' to see cached sources")
	}
	return entry, nil
}

// Candidates matches a user query against all entries.
func (m *Manager) Candidates(query string) (match.Result, error) {
	entries, err := m.List()
	if err != nil {
		return match.Result{}, err
	}

	items := make([]match.Entry, len(entries))
	for i, e := range entries {
		items[i] = match.Entry{Name: e.Name}
	}
	return match.Match(items, query), nil
}

// Resolve matches a query and requires it to be unique: zero matches is a
// not-found error and several is an ambiguous-match error, force or not.
func (m *Manager) Resolve(query string) (Entry, error) {
	result, err := m.Candidates(query)
	if err != nil {
		return Entry{}, err
	}

	if result.None() {
		return Entry{}, errkind.New(errkind.NotFound, "no cache entry matches '%s'", query).
			WithHint("run 'refsync list' to see cached sources")
	}
	if result.Ambiguous() {
		return Entry{}, errkind.Wrap(errkind.AmbiguousMatch,
			&match.AmbiguousError{Query: result.Query, Matches: result.Matches},
			"resolving '%s'", query)
	}

	unique, _ := result.Unique()
	return m.Get(unique.Name)
}

// RefreshResult reports the revision movement of a cache refresh.
type RefreshResult struct {
	Name        string
	OldRevision string
	NewRevision string
}

// Refresh pulls the entry's clone and records the new revision.
func (m *Manager) Refresh(ctx context.Context, name string) (*RefreshResult, error) {
	entry, err := m.Get(name)
	if err != nil {
		return nil, err
	}

	meta, err := m.ReadMeta(entry)
	if err != nil {
		return nil, err
	}
	old := meta.Revision

	if err := m.git.Pull(ctx, entry.CachePath); err != nil {
		return nil, errkind.Wrap(errkind.GitFailure, err, "pulling %s", name)
	}

	revision, err := m.git.CurrentRevision(ctx, entry.CachePath)
	if err != nil {
		return nil, errkind.Wrap(errkind.GitFailure, err, "reading revision of %s", name)
	}

	meta.Revision = revision
	meta.UpdatedAt = time.Now().UTC()
	if err := m.writeMeta(entry, meta); err != nil {
		return nil, err
	}

	return &RefreshResult{Name: name, OldRevision: old, NewRevision: revision}, nil
}

// SwitchBranch checks out branch in the entry's clone and records it.
func (m *Manager) SwitchBranch(ctx context.Context, name, branch string) error {
	if branch == "" {
		return errkind.New(errkind.InvalidInput, "branch name is empty")
	}
	if strings.HasPrefix(branch, "-") {
		return errkind.New(errkind.InvalidInput, "invalid branch name '%s'", branch)
	}

	entry, err := m.Get(name)
	if err != nil {
		return err
	}

	if err := m.git.Checkout(ctx, entry.CachePath, branch); err != nil {
		return errkind.Wrap(errkind.GitFailure, err, "switching %s to branch %s", name, branch)
	}

	meta, err := m.ReadMeta(entry)
	if err != nil {
		return err
	}

	revision, err := m.git.CurrentRevision(ctx, entry.CachePath)
	if err != nil {
		return errkind.Wrap(errkind.GitFailure, err, "reading revision of %s", name)
	}

	meta.Branch = branch
	meta.Revision = revision
	meta.UpdatedAt = time.Now().UTC()
	return m.writeMeta(entry, meta)
}

// HasRemoteUpdates reports whether the entry's upstream moved past the
// cached clone, without pulling.
func (m *Manager) HasRemoteUpdates(ctx context.Context, name string) (bool, error) {
	entry, err := m.Get(name)
	if err != nil {
		return false, err
	}

	behind, err := m.git.HasRemoteUpdates(ctx, entry.CachePath)
	if err != nil {
		return false, errkind.Wrap(errkind.GitFailure, err, "checking remote of %s", name)
	}
	return behind, nil
}

// CurrentRevision returns the authoritative revision of the cached clone,
// preferring recorded metadata and falling back to asking git.
func (m *Manager) CurrentRevision(ctx context.Context, entry Entry) (string, error) {
	if meta, err := m.ReadMeta(entry); err == nil && meta.Revision != "" {
		return meta.Revision, nil
	}

	revision, err := m.git.CurrentRevision(ctx, entry.CachePath)
	if err != nil {
		return "", errkind.Wrap(errkind.GitFailure, err, "reading revision of %s", entry.Name)
	}
	return revision, nil
}

// ReadMeta loads the entry's metadata file.
func (m *Manager) ReadMeta(entry Entry) (Meta, error) {
	var meta Meta
	err := storage.LoadJSON(filepath.Join(entry.CachePath, MetaFileName), &meta)
	if os.IsNotExist(err) {
		return Meta{URL: entry.URL, Name: entry.Name, AddedAt: entry.AddedAt}, nil
	}
	if err != nil {
		return Meta{}, errkind.Wrap(errkind.Filesystem, err, "reading metadata of %s", entry.Name)
	}
	return meta, nil
}

func (m *Manager) writeMeta(entry Entry, meta Meta) error {
	path := filepath.Join(entry.CachePath, MetaFileName)
	if err := storage.SaveJSON(path, meta); err != nil {
		return errkind.Wrap(errkind.Filesystem, err, "writing metadata of %s", entry.Name)
	}
	return nil
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.dir, indexFileName)
}

func (m *Manager) load() error {
	if m.index != nil {
		return nil
	}

	raw := make(map[string]Entry)
	err := storage.LoadJSON(m.indexPath(), &raw)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading cache index: %w", err)
	}

	for name, e := range raw {
		e.Name = name
		raw[name] = e
	}
	m.index = raw
	return nil
}

func (m *Manager) saveIndex() error {
	if err := storage.SaveJSON(m.indexPath(), m.index); err != nil {
		return errkind.Wrap(errkind.Filesystem, err, "writing cache index")
	}
	return nil
}
