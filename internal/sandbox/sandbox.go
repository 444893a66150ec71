// Package sandbox confines workspace-relative paths to the workspace root.
// Load targets come from user input and from the shared state file, so
// both are validated before any copy or delete touches the tree.
package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath checks that targetPath stays within workspaceRoot once
// cleaned and with symlinks resolved. Returns the resolved absolute path.
func ValidatePath(workspaceRoot, targetPath string) (string, error) {
	absRoot, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return "", fmt.Errorf("resolving workspace root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving workspace root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, targetPath))

	// The target may not exist yet; resolve the longest existing prefix.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}

	// Trailing separator avoids matching "workspace2" against "workspace".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' outside the workspace '%s'", targetPath, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// path, then re-appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, filepath.Base(path)), nil
}
