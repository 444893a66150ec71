package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/git"
)

// fakeGit simulates clones by writing a marker file and serving revisions
// from an in-memory counter per path.
type fakeGit struct {
	revisions map[string]string // path -> revision
	pullTo    string            // revision Pull advances to
	failClone bool
}

func newFakeGit() *fakeGit {
	return &fakeGit{revisions: make(map[string]string), pullTo: "rev-1"}
}

func (f *fakeGit) Clone(ctx context.Context, url, dest string, opts git.CloneOptions) error {
	if f.failClone {
		return fmt.Errorf("clone refused")
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dest, "README.md"), []byte(url), 0o644); err != nil {
		return err
	}
	f.revisions[dest] = "rev-1"
	return nil
}

func (f *fakeGit) Pull(ctx context.Context, path string) error {
	f.revisions[path] = f.pullTo
	return nil
}

func (f *fakeGit) Checkout(ctx context.Context, path, branch string) error {
	f.revisions[path] = "rev-" + branch
	return nil
}

func (f *fakeGit) CurrentRevision(ctx context.Context, path string) (string, error) {
	rev, ok := f.revisions[path]
	if !ok {
		return "", fmt.Errorf("not a clone: %s", path)
	}
	return rev, nil
}

func (f *fakeGit) CurrentBranch(ctx context.Context, path string) (string, error) {
	return "main", nil
}

func (f *fakeGit) HasRemoteUpdates(ctx context.Context, path string) (bool, error) {
	return f.revisions[path] != f.pullTo, nil
}

func newTestManager(t *testing.T) (*Manager, *fakeGit) {
	t.Helper()
	fake := newFakeGit()
	m, err := New(t.TempDir(), fake)
	if err != nil {
		t.Fatal(err)
	}
	return m, fake
}

func TestAddDerivesNameAndWritesMeta(t *testing.T) {
	m, _ := newTestManager(t)

	entry, err := m.Add(context.Background(), "https://example.com/acme/widgets.git", AddOptions{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.Name != "example.com/acme/widgets" {
		t.Errorf("Name = %q", entry.Name)
	}
	if entry.CachePath != filepath.Join(m.Dir(), "example.com", "acme", "widgets") {
		t.Errorf("CachePath = %q", entry.CachePath)
	}

	meta, err := m.ReadMeta(*entry)
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if meta.Revision != "rev-1" || meta.Name != entry.Name {
		t.Errorf("meta = %+v", meta)
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Add(ctx, "https://example.com/acme/widgets.git", AddOptions{}); err != nil {
		t.Fatal(err)
	}

	_, err := m.Add(ctx, "https://example.com/acme/widgets", AddOptions{})
	if !errkind.Is(err, errkind.AlreadyExists) {
		t.Errorf("err = %v, want already-exists", err)
	}
}

func TestAddInvalidURL(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Add(context.Background(), "not a url", AddOptions{})
	if !errkind.Is(err, errkind.InvalidInput) {
		t.Errorf("err = %v, want invalid-input", err)
	}
}

func TestAddCloneFailureLeavesNoEntry(t *testing.T) {
	m, fake := newTestManager(t)
	fake.failClone = true

	_, err := m.Add(context.Background(), "https://example.com/acme/widgets.git", AddOptions{})
	if !errkind.Is(err, errkind.GitFailure) {
		t.Fatalf("err = %v, want git-failure", err)
	}

	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v after failed add", entries)
	}
}

func TestResolveFuzzy(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Add(ctx, "https://example.com/acme/widgets.git", AddOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Add(ctx, "https://github.com/other/widgets.git", AddOptions{}); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Resolve("acme/widgets"); err != nil {
		t.Errorf("suffix resolve failed: %v", err)
	}

	_, err := m.Resolve("widgets")
	if !errkind.Is(err, errkind.AmbiguousMatch) {
		t.Errorf("err = %v, want ambiguous-match", err)
	}

	_, err = m.Resolve("gizmos")
	if !errkind.Is(err, errkind.NotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestRefreshRecordsRevisions(t *testing.T) {
	m, fake := newTestManager(t)
	ctx := context.Background()

	entry, err := m.Add(ctx, "https://example.com/acme/widgets.git", AddOptions{})
	if err != nil {
		t.Fatal(err)
	}

	fake.pullTo = "rev-2"
	res, err := m.Refresh(ctx, entry.Name)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.OldRevision != "rev-1" || res.NewRevision != "rev-2" {
		t.Errorf("result = %+v", res)
	}

	rev, err := m.CurrentRevision(ctx, *entry)
	if err != nil || rev != "rev-2" {
		t.Errorf("CurrentRevision = %q, %v", rev, err)
	}
}

func TestRemoveCleansIndexAndParents(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	entry, err := m.Add(ctx, "https://example.com/acme/widgets.git", AddOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Remove(ctx, entry.Name); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := m.Get(entry.Name); !errkind.Is(err, errkind.NotFound) {
		t.Errorf("Get after remove = %v", err)
	}
	// host/owner dirs emptied by the removal are gone too.
	if _, err := os.Stat(filepath.Join(m.Dir(), "example.com")); !os.IsNotExist(err) {
		t.Errorf("empty host dir left behind")
	}
}

func TestIndexSurvivesReopen(t *testing.T) {
	fake := newFakeGit()
	dir := t.TempDir()
	m, err := New(dir, fake)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Add(context.Background(), "https://example.com/acme/widgets.git", AddOptions{}); err != nil {
		t.Fatal(err)
	}

	m2, err := New(dir, fake)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := m2.Get("example.com/acme/widgets")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if entry.URL != "https://example.com/acme/widgets.git" {
		t.Errorf("URL = %q", entry.URL)
	}
}

func TestSwitchBranchRejectsFlagLikeName(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Add(context.Background(), "https://example.com/acme/widgets.git", AddOptions{}); err != nil {
		t.Fatal(err)
	}

	for _, branch := range []string{"", "-", "--delete"} {
		err := m.SwitchBranch(context.Background(), "example.com/acme/widgets", branch)
		if !errkind.Is(err, errkind.InvalidInput) {
			t.Errorf("branch %q: err = %v, want invalid-input", branch, err)
		}
	}
}
