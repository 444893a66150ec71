// Package ignore maintains the refsync-managed block inside a workspace's
// .gitignore: one header line followed by one entry per loaded reference.
// Edits are idempotent and keep the block contiguous.
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Header marks the managed block. It is written once per file and removed
// together with the last managed entry.
const Header = "# refsync-managed references"

// FileName is the ignore file edited at the workspace root.
const FileName = ".gitignore"

// AddEntry appends entry to the managed block of root's ignore file. If the
// trimmed entry already appears anywhere in the file, nothing is written.
func AddEntry(root, entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return fmt.Errorf("empty ignore entry")
	}

	path := filepath.Join(root, FileName)
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	headerAt := indexOf(lines, Header)
	if headerAt < 0 {
		// New block: blank line, header, entry, blank line.
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		lines = append(lines, Header, entry, "")
		return writeLines(path, lines)
	}

	// Insert after the last contiguous non-empty, non-comment line
	// following the header, so the block grows as one run.
	insertAt := headerAt + 1
	for insertAt < len(lines) {
		trimmed := strings.TrimSpace(lines[insertAt])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			break
		}
		insertAt++
	}

	lines = append(lines[:insertAt], append([]string{entry}, lines[insertAt:]...)...)
	return writeLines(path, lines)
}

// RemoveEntry deletes entry from root's ignore file. The header is removed
// together with the last managed entry. Returns false without writing when
// the entry is not present.
func RemoveEntry(root, entry string) (bool, error) {
	entry = strings.TrimSpace(entry)

	path := filepath.Join(root, FileName)
	lines, err := readLines(path)
	if err != nil {
		return false, err
	}

	removeAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == entry {
			removeAt = i
			break
		}
	}
	if removeAt < 0 {
		return false, nil
	}

	lines = append(lines[:removeAt], lines[removeAt+1:]...)

	// Drop the header once its block holds no more entries. The editor
	// counts remaining entries itself rather than trusting callers to
	// only remove the header at the last one.
	if headerAt := indexOf(lines, Header); headerAt >= 0 && blockSize(lines, headerAt) == 0 {
		lines = append(lines[:headerAt], lines[headerAt+1:]...)
	}

	lines = tidy(lines)
	return true, writeLines(path, lines)
}

// blockSize counts the contiguous non-empty, non-comment lines after the
// header at headerAt.
func blockSize(lines []string, headerAt int) int {
	n := 0
	for i := headerAt + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			break
		}
		n++
	}
	return n
}

// tidy collapses runs of blank lines to one and trims leading and trailing
// blanks.
func tidy(lines []string) []string {
	var out []string
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return out
}

func indexOf(lines []string, want string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == want {
			return i
		}
	}
	return -1
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	// Splitting a newline-terminated file yields a trailing empty element.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
