package refsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/refsync/refsync/internal/git"
)

type fakeGit struct {
	revisions map[string]string
	next      string
}

func newFakeGit() *fakeGit {
	return &fakeGit{revisions: make(map[string]string), next: "aaa"}
}

func (f *fakeGit) write(path, rev string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, "VERSION"), []byte(rev), 0o644); err != nil {
		return err
	}
	f.revisions[path] = rev
	return nil
}

func (f *fakeGit) Clone(ctx context.Context, url, dest string, opts git.CloneOptions) error {
	return f.write(dest, f.next)
}

func (f *fakeGit) Pull(ctx context.Context, path string) error {
	return f.write(path, f.next)
}

func (f *fakeGit) Checkout(ctx context.Context, path, branch string) error {
	return f.write(path, "rev-"+branch)
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
	return f.revisions[path] != f.next, nil
}

func newTestClient(t *testing.T) (*Client, *fakeGit) {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fake := newFakeGit()
	client, err := New(Options{
		WorkspaceRoot: root,
		CacheDir:      t.TempDir(),
		StatePath:     filepath.Join(t.TempDir(), "loaded.json"),
		Git:           fake,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client, fake
}

func TestClientRoundTrip(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	entry, err := client.Add(ctx, "https://example.com/acme/widgets.git")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	record, err := client.Load(ctx, LoadOptions{Query: entry.Name})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.Revision != "aaa" {
		t.Errorf("Revision = %q", record.Revision)
	}

	fake.next = "bbb"
	res, err := client.Update(ctx, "widgets")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.NewRevision != "bbb" {
		t.Errorf("NewRevision = %q", res.NewRevision)
	}

	statuses, err := client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || !statuses[0].NeedsSync {
		t.Fatalf("statuses = %+v", statuses)
	}

	results, err := client.SyncAll(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("results = %+v", results)
	}

	if err := client.Unload(ctx, "widgets"); err != nil {
		t.Fatalf("Unload: %v", err)
	}

	statuses, err = client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 0 {
		t.Errorf("statuses after unload = %+v", statuses)
	}
}
