package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/meta"
)

// Directory names under the install root.
const (
	HooksDir   = "hooks"
	ScriptsDir = "scripts"
	ConfigDir  = "config"
	DocsDir    = "docs"
	LogsDir    = "logs"
	LibDir     = "lib"
)

// Permission constants.
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// readmeName is renamed to <app>_README.md on delivery so several apps can
// share docs/.
const readmeName = "README.md"

// Layout holds the absolute directories of one install root.
type Layout struct {
	Root         string
	Hooks        string
	Scripts      string
	Config       string
	Docs         string
	Logs         string
	Lib          string
	ManifestPath string
}

// NewLayout returns the layout rooted at root. A relative root is made
// absolute against the working directory, since installers and the
// Manifest only see absolute paths.
func NewLayout(root string) Layout {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return Layout{
		Root:         root,
		Hooks:        filepath.Join(root, HooksDir),
		Scripts:      filepath.Join(root, ScriptsDir),
		Config:       filepath.Join(root, ConfigDir),
		Docs:         filepath.Join(root, DocsDir),
		Logs:         filepath.Join(root, LogsDir),
		Lib:          filepath.Join(root, LibDir),
		ManifestPath: filepath.Join(root, manifest.FileName),
	}
}

// DefaultRoot returns ~/.task.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".task"), nil
}

// Dirs returns the standard directories in creation order.
func (l Layout) Dirs() []string {
	return []string{l.Hooks, l.Scripts, l.Config, l.Docs, l.Logs, l.Lib}
}

// EnsureDirectories creates every standard directory that is missing.
func (l Layout) EnsureDirectories() error {
	for _, dir := range l.Dirs() {
		if err := os.MkdirAll(dir, DirPerm); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// RoleDir returns the directory that receives files of role. Unknown roles
// are treated as generic.
func (l Layout) RoleDir(role meta.Role) string {
	switch role {
	case meta.RoleHook:
		return l.Hooks
	case meta.RoleScript:
		return l.Scripts
	case meta.RoleConfig:
		return l.Config
	case meta.RoleDoc:
		return l.Docs
	default:
		return l.Root
	}
}

// TargetPath returns where a declared file of app is delivered.
func (l Layout) TargetPath(app, name string, role meta.Role) string {
	if role == meta.RoleDoc && name == readmeName {
		name = app + "_" + readmeName
	}
	return filepath.Join(l.RoleDir(role), name)
}

// Locate returns the path of a delivered file and whether it exists. A doc
// README.md is looked up under its renamed form first and then under its
// plain name, since older installers copied it unchanged.
func (l Layout) Locate(app, name string, role meta.Role) (string, bool) {
	target := l.TargetPath(app, name, role)
	if fileExists(target) {
		return target, true
	}
	if role == meta.RoleDoc && name == readmeName {
		plain := filepath.Join(l.Docs, name)
		if fileExists(plain) {
			return plain, true
		}
	}
	return target, false
}

// Contains reports whether path lies inside the install root.
func (l Layout) Contains(path string) bool {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
