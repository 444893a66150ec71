// Package fsutil implements the filesystem operations shared by the cache
// and sync layers: existence checks, directory creation/removal, and
// recursive copy with per-name exclusions.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exists reports whether path exists at all.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// RemoveDir removes dir and everything beneath it.
func RemoveDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// CopyOptions configures CopyDir.
type CopyOptions struct {
	// Exclude lists entry base names skipped at every depth.
	Exclude []string
	// Overwrite allows copying into an existing destination. When false,
	// an existing dst is an error.
	Overwrite bool
}

// CopyDir recursively copies src into dst, preserving file modes and
// following the exclusion list at every level. Symlinks are recreated,
// not followed.
func CopyDir(src, dst string, opts CopyOptions) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	if !opts.Overwrite && Exists(dst) {
		return fmt.Errorf("destination %s already exists", dst)
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[name] = true
	}

	return copyTree(src, dst, info.Mode(), excluded)
}

func copyTree(src, dst string, mode os.FileMode, excluded map[string]bool) error {
	if err := os.MkdirAll(dst, mode.Perm()); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	for _, entry := range entries {
		if excluded[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if err := copySymlink(srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("reading %s: %w", srcPath, err)
			}
			if err := copyTree(srcPath, dstPath, info.Mode(), excluded); err != nil {
				return err
			}
		default:
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("reading symlink %s: %w", src, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("creating symlink %s: %w", dst, err)
	}
	return nil
}
