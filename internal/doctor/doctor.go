// Package doctor runs health checks on a tw installation and prints one
// status line per check.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/paths"
	"github.com/awesome-taskwarrior/tw/internal/registry"
)

// Options selects what Run inspects.
type Options struct {
	Layout   paths.Layout
	Manifest *manifest.Manifest
	// Source is probed for reachability. Nil skips the registry check.
	Source registry.Source
	TaskRC string
	// Shell is the installer shell. Empty skips the check.
	Shell string
	// Fix creates missing layout directories.
	Fix bool
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Report summarizes a run.
type Report struct {
	Problems int
	Fixed    int
}

// OK reports whether no problems remain.
func (r Report) OK() bool { return r.Problems == 0 }

type checker struct {
	w   io.Writer
	rep Report
}

func (c *checker) ok(format string, args ...any) {
	fmt.Fprintf(c.w, "  [ OK ] "+format+"\n", args...)
}

func (c *checker) miss(format string, args ...any) {
	c.rep.Problems++
	fmt.Fprintf(c.w, "  [MISS] "+format+"\n", args...)
}

func (c *checker) warn(format string, args ...any) {
	fmt.Fprintf(c.w, "  [WARN] "+format+"\n", args...)
}

func (c *checker) fail(format string, args ...any) {
	c.rep.Problems++
	fmt.Fprintf(c.w, "  [FAIL] "+format+"\n", args...)
}

func (c *checker) fixed(format string, args ...any) {
	c.rep.Problems--
	c.rep.Fixed++
	fmt.Fprintf(c.w, "  [FIX ] "+format+"\n", args...)
}

// Run performs every check and writes the results to w. Warnings do not
// count as problems.
func Run(ctx context.Context, w io.Writer, opts Options) Report {
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	c := &checker{w: w}

	fmt.Fprintln(w, "Runtime check:")
	if path, err := opts.LookPath("task"); err != nil {
		c.warn("task not found on PATH")
	} else {
		c.ok("task found at %s", path)
	}
	if opts.Shell != "" {
		if path, err := opts.LookPath(opts.Shell); err != nil {
			c.miss("installer shell %s not found", opts.Shell)
		} else {
			c.ok("installer shell %s found at %s", opts.Shell, path)
		}
	}

	fmt.Fprintln(w, "Layout check:")
	checkLayout(c, opts.Layout, opts.Fix)
	if opts.TaskRC != "" {
		if _, err := os.Stat(opts.TaskRC); err != nil {
			c.warn("%s does not exist", opts.TaskRC)
		} else {
			c.ok("%s exists", opts.TaskRC)
		}
	}

	if opts.Manifest != nil {
		fmt.Fprintln(w, "Manifest check:")
		checkManifest(c, opts.Manifest)
	}

	if opts.Source != nil {
		fmt.Fprintln(w, "Registry check:")
		names, err := opts.Source.ListAvailable(ctx)
		if err != nil {
			c.fail("%s: %v", opts.Source.Describe(), err)
		} else {
			c.ok("%s (%d packages)", opts.Source.Describe(), len(names))
		}
	}

	return c.rep
}

func checkLayout(c *checker, l paths.Layout, fix bool) {
	for _, dir := range l.Dirs() {
		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			c.miss("%s does not exist", dir)
			if !fix {
				continue
			}
			if mkErr := os.MkdirAll(dir, paths.DirPerm); mkErr != nil {
				c.fail("could not create %s: %v", dir, mkErr)
				continue
			}
			c.fixed("created %s", dir)
		case err != nil:
			c.fail("%s: %v", dir, err)
		case !info.IsDir():
			c.fail("%s is not a directory", dir)
		default:
			c.ok("%s", dir)
		}
	}
}

func checkManifest(c *checker, m *manifest.Manifest) {
	entries, err := m.Entries()
	if err != nil {
		c.fail("%s: %v", m.Path(), err)
		return
	}
	for _, issue := range m.Issues() {
		c.warn("%v", issue)
	}

	apps, err := m.InstalledApps()
	if err != nil {
		c.fail("%s: %v", m.Path(), err)
		return
	}
	c.ok("%s (%d packages, %d files)", m.Path(), len(apps), len(entries))

	for _, e := range entries {
		if _, err := os.Stat(e.Path); os.IsNotExist(err) {
			c.miss("%s: %s is tracked but missing", e.App, e.Path)
		}
	}
}
