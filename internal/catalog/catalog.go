// Package catalog keeps a local registry checkout current with git. It
// clones the registry repository on first use, pulls it afterwards, and
// tracks when the checkout was last synced.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/awesome-taskwarrior/tw/internal/paths"
)

const (
	// freshnessFile lives inside .git so it never dirties the checkout.
	freshnessFile = "tw-synced"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"
)

// sparseDirs are the parts of the registry repository tw reads.
var sparseDirs = []string{"registry.d/", "installers/", "lib/"}

// ErrNotGitCheckout is returned when asked to pull a directory that is not
// a git working tree.
var ErrNotGitCheckout = errors.New("not a git checkout")

// Result reports what Sync did.
type Result struct {
	Dir    string
	Cloned bool
}

// Sync brings the checkout at dir up to date. A missing directory is
// cloned from repoURL; an existing git checkout is pulled fast-forward only.
func Sync(ctx context.Context, dir, repoURL string) (*Result, error) {
	if err := ensureGit(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := Clone(ctx, repoURL, dir); err != nil {
			return nil, err
		}
		return &Result{Dir: dir, Cloned: true}, nil
	}
	if err := Update(ctx, dir); err != nil {
		return nil, err
	}
	return &Result{Dir: dir}, nil
}

// Clone performs a shallow clone of the registry into targetDir.
// It attempts a sparse checkout (git >= 2.25.0) of the registry directories
// only. Falls back to a full shallow clone if sparse checkout is
// unavailable.
//
// The clone is atomic: it writes to a .tmp directory first, then renames
// on success. On failure the .tmp directory is cleaned up.
func Clone(ctx context.Context, repoURL, targetDir string) error {
	tmpDir := targetDir + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), paths.DirPerm); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if err := trySparseClone(ctx, tmpDir, repoURL); err != nil {
		_ = os.RemoveAll(tmpDir)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fullShallowClone(ctx, tmpDir, repoURL); err != nil {
			_ = os.RemoveAll(tmpDir)
			return fmt.Errorf("cloning registry: %w", err)
		}
	}

	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing registry dir: %w", err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing registry clone: %w", err)
	}

	WriteFreshnessMarker(targetDir)
	return nil
}

// Update pulls the latest changes into an existing checkout.
func Update(ctx context.Context, dir string) error {
	if !IsGitCheckout(dir) {
		return fmt.Errorf("%s: %w", dir, ErrNotGitCheckout)
	}
	if err := git(ctx, dir, "pull", "--ff-only"); err != nil {
		return fmt.Errorf("pulling registry updates: %w", err)
	}
	WriteFreshnessMarker(dir)
	return nil
}

// IsGitCheckout reports whether dir is the top of a git working tree.
func IsGitCheckout(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// WriteFreshnessMarker records the current time as the last sync.
func WriteFreshnessMarker(dir string) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath(dir), []byte(ts), paths.FilePerm)
}

// ReadFreshnessMarker reads the time of the last sync.
// Returns zero time if the marker doesn't exist or can't be parsed.
func ReadFreshnessMarker(dir string) time.Time {
	data, err := os.ReadFile(markerPath(dir))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the checkout was last synced more than maxAge
// ago, or never.
func IsStale(dir string, maxAge time.Duration) bool {
	last := ReadFreshnessMarker(dir)
	if last.IsZero() {
		return true
	}
	return time.Since(last) > maxAge
}

func markerPath(dir string) string {
	return filepath.Join(dir, ".git", freshnessFile)
}

// trySparseClone attempts a sparse shallow clone of the registry directories.
func trySparseClone(ctx context.Context, targetDir, repoURL string) error {
	if err := git(ctx, "", "clone", "--depth=1", "--sparse", "--no-checkout", repoURL, targetDir); err != nil {
		return fmt.Errorf("sparse clone: %w", err)
	}
	args := append([]string{"sparse-checkout", "set"}, sparseDirs...)
	if err := git(ctx, targetDir, args...); err != nil {
		return fmt.Errorf("sparse-checkout set: %w", err)
	}
	if err := git(ctx, targetDir, "checkout"); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// fullShallowClone performs a regular --depth=1 clone (fallback for older git).
func fullShallowClone(ctx context.Context, targetDir, repoURL string) error {
	if err := git(ctx, "", "clone", "--depth=1", repoURL, targetDir); err != nil {
		return fmt.Errorf("shallow clone: %w", err)
	}
	return nil
}

func git(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w\n%s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}
