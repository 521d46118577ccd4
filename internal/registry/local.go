package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/bmatcuk/doublestar/v4"
)

// Local reads a catalog checkout on disk.
type Local struct {
	root string
}

// NewLocal returns a Source over the checkout at root.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Root returns the checkout directory.
func (l *Local) Root() string { return l.root }

func (l *Local) Mode() Mode { return ModeLocal }

func (l *Local) Describe() string {
	return "local registry at " + l.root
}

// HelperScript returns the shared helper script path, or "" if the
// checkout has none.
func (l *Local) HelperScript() string {
	path := filepath.Join(l.root, LibDir, HelperName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

func (l *Local) ListAvailable(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(l.root, MetaDir)
	matches, err := doublestar.Glob(os.DirFS(dir), "*"+metaExt)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(m, metaExt)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Local) Meta(ctx context.Context, name string) (*meta.Record, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(l.root, MetaDir, name+metaExt)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return meta.ParseNamed(string(data), path)
}

func (l *Local) Installer(ctx context.Context, name string) (*Handle, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(l.root, InstallersDir, name+installExt)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("installer for %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("checking installer %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("installer %s is a directory", path)
	}
	return &Handle{Path: path, Helper: l.HelperScript()}, nil
}
