// Package git wraps the git binary with the small surface refsync needs:
// clone, pull, checkout, and revision/branch queries on a local clone.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/refsync/refsync/internal/log"
)

// Client is the version-control collaborator used by the cache and sync
// layers. Implementations operate on local clone paths and return errors
// on subprocess failure.
type Client interface {
	Clone(ctx context.Context, url, dest string, opts CloneOptions) error
	Pull(ctx context.Context, path string) error
	Checkout(ctx context.Context, path, branch string) error
	CurrentRevision(ctx context.Context, path string) (string, error)
	CurrentBranch(ctx context.Context, path string) (string, error)
	HasRemoteUpdates(ctx context.Context, path string) (bool, error)
}

// CloneOptions configures a clone.
type CloneOptions struct {
	Branch string
}

// CommandError reports a failed git subprocess, carrying the trimmed
// stderr so callers can surface it to the user.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), e.Stderr)
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CLI runs the system git binary.
type CLI struct{}

var _ Client = (*CLI)(nil)

func (CLI) Clone(ctx context.Context, url, dest string, opts CloneOptions) error {
	args := []string{"clone"}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch, "--single-branch")
	}
	args = append(args, url, dest)
	_, err := run(ctx, "", args...)
	return err
}

func (CLI) Pull(ctx context.Context, path string) error {
	_, err := run(ctx, path, "pull", "--ff-only")
	return err
}

func (CLI) Checkout(ctx context.Context, path, branch string) error {
	if strings.HasPrefix(branch, "-") {
		return fmt.Errorf("invalid branch name '%s'", branch)
	}
	if _, err := run(ctx, path, "fetch", "origin", branch); err != nil {
		return err
	}
	_, err := run(ctx, path, "checkout", branch)
	return err
}

func (CLI) CurrentRevision(ctx context.Context, path string) (string, error) {
	out, err := run(ctx, path, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (CLI) CurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasRemoteUpdates fetches the tracking remote and reports whether HEAD is
// behind its upstream.
func (CLI) HasRemoteUpdates(ctx context.Context, path string) (bool, error) {
	if _, err := run(ctx, path, "fetch"); err != nil {
		return false, err
	}
	out, err := run(ctx, path, "rev-list", "--count", "HEAD..@{upstream}")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "0", nil
}

// run executes git with -C dir when dir is non-empty, echoing the command
// in verbose mode and capturing stderr for error reporting.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	full := args
	if dir != "" {
		full = append([]string{"-C", dir}, args...)
	}

	log.FromContext(ctx).Command("git", full...)

	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   full,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}
