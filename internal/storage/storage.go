// Package storage provides atomic read/write helpers for the JSON state
// files kept under ~/.refsync/.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the refsync state directory, creating it if needed.
// Uses XDG_DATA_HOME if set, otherwise ~/.refsync.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		dir := filepath.Join(xdg, "refsync")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".refsync")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveJSON atomically writes data as indented JSON: the parent directory is
// created, the payload goes to a temp file, and a rename makes it visible.
func SaveJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	payload = append(payload, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// LoadJSON reads JSON from path into dest. Returns an error satisfying
// os.IsNotExist if the file is missing.
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
