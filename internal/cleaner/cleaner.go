// Package cleaner finds and removes directory subtrees that contain no
// files, including ancestor cleanup after an unload empties a parent.
package cleaner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/refsync/refsync/internal/log"
)

// ScanEmpty walks root depth-first and returns the directories that hold no
// files anywhere beneath them, deepest first so they can be deleted in
// order without re-scanning. Unreadable subtrees are treated as non-empty
// and never fail the scan. The root itself is not reported.
func ScanEmpty(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, err
	}

	var empty []string
	walk(root, root, &empty)

	sort.SliceStable(empty, func(i, j int) bool {
		return segments(empty[i]) > segments(empty[j])
	})
	return empty, nil
}

// walk reports whether dir is recursively empty, appending every empty
// directory (dir included, root excluded) to out.
func walk(root, dir string, out *[]string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	empty := true
	for _, entry := range entries {
		if !entry.IsDir() {
			empty = false
			continue
		}
		// A sibling subtree may still be empty even when this level
		// holds a file, so recursion always proceeds.
		if !walk(root, filepath.Join(dir, entry.Name()), out) {
			empty = false
		}
	}

	if empty && dir != root {
		*out = append(*out, dir)
	}
	return empty
}

// CleanEmpty deletes the given directories, re-verifying each still has
// zero entries immediately before removal, then removes any ancestors the
// deletions emptied, stopping at root. Returns the number of directories
// actually removed; failures are skipped, not fatal.
func CleanEmpty(ctx context.Context, root string, dirs []string) int {
	logger := log.FromContext(ctx)
	removed := 0

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue // changed since scan, leave it alone
		}
		if err := os.Remove(dir); err != nil {
			logger.Detailf("skipping %s: %v", dir, err)
			continue
		}
		removed++
		removed += RemoveEmptyAncestors(filepath.Dir(dir), root)
	}
	return removed
}

// RemoveEmptyAncestors deletes path and each parent that is empty, walking
// upward until a non-empty directory or stopAt. stopAt itself is never
// deleted. Returns the number of directories removed.
func RemoveEmptyAncestors(path, stopAt string) int {
	stopAt = filepath.Clean(stopAt)
	removed := 0

	for {
		path = filepath.Clean(path)
		if path == stopAt || !within(path, stopAt) {
			return removed
		}

		entries, err := os.ReadDir(path)
		if err != nil || len(entries) > 0 {
			return removed
		}
		if err := os.Remove(path); err != nil {
			return removed
		}
		removed++
		path = filepath.Dir(path)
	}
}

func within(path, root string) bool {
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

func segments(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
