//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awesome-taskwarrior/tw/internal/checksum"
	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/paths"
	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"go.uber.org/zap/zaptest"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // HOME for installers
	TaskDir     string // install root (~/.task)
	RegistryDir string // local registry checkout
	TaskRC      string
}

// setupTestEnv creates isolated temp directories and points HOME and
// TASKRC at them so no installer touches the real user setup.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	home := t.TempDir()
	env := &testEnv{
		HomeDir:     home,
		TaskDir:     filepath.Join(home, ".task"),
		RegistryDir: filepath.Join(home, "awesome-taskwarrior"),
		TaskRC:      filepath.Join(home, ".taskrc"),
	}
	t.Setenv("HOME", env.HomeDir)
	t.Setenv("TASKRC", env.TaskRC)
	writeFile(t, env.TaskRC, "data.location=~/.task\n")

	for _, sub := range []string{registry.MetaDir, registry.InstallersDir, registry.LibDir} {
		if err := os.MkdirAll(filepath.Join(env.RegistryDir, sub), 0755); err != nil {
			t.Fatalf("creating registry/%s: %v", sub, err)
		}
	}
	return env
}

// newManager wires a package manager over the local registry with a real
// bash runner.
func (e *testEnv) newManager(t *testing.T) (*pkgmgr.Manager, *manifest.Manifest) {
	t.Helper()
	layout := paths.NewLayout(e.TaskDir)
	man := manifest.New(layout.ManifestPath)
	if err := man.Load(); err != nil {
		t.Fatalf("loading manifest: %v", err)
	}
	logger := zaptest.NewLogger(t)
	return pkgmgr.New(pkgmgr.Options{
		Source:   registry.NewLocal(e.RegistryDir),
		Manifest: man,
		Layout:   layout,
		Runner:   &installer.ExecRunner{Shell: "bash", Logger: logger},
		TaskRC:   e.TaskRC,
		Logger:   logger,
	}), man
}

// addPackage writes <name>.meta and installers/<name>.install.
func (e *testEnv) addPackage(t *testing.T, name, metaText, script string) {
	t.Helper()
	writeFile(t, filepath.Join(e.RegistryDir, registry.MetaDir, name+".meta"), metaText)
	writeFile(t, filepath.Join(e.RegistryDir, registry.InstallersDir, name+".install"), script)
	if err := os.Chmod(filepath.Join(e.RegistryDir, registry.InstallersDir, name+".install"), 0755); err != nil {
		t.Fatal(err)
	}
}

func digest(t *testing.T, content string) string {
	t.Helper()
	sum, err := checksum.Reader(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	return sum
}

// writeFile creates a file with the given content, creating parent dirs.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}

// assertFileContains fails the test if the file does not contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("expected %s to contain %q, got:\n%s", path, substr, string(data))
	}
}
