package pkgmgr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/google/go-cmp/cmp"
)

func TestRemove_NotInstalled(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Remove(context.Background(), "demo")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Remove error = %v, want ErrNotInstalled", err)
	}
}

func TestRemove_RunsInstaller(t *testing.T) {
	f := newFixture(t)
	f.install(t)

	res, err := f.mgr.Remove(context.Background(), "demo")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if res.Fallback {
		t.Error("Fallback = true with an installer available")
	}
	if len(res.Purged) != 3 {
		t.Errorf("Purged = %v, want 3 paths", res.Purged)
	}
	if diff := cmp.Diff([]installer.Verb{installer.VerbInstall, installer.VerbRemove}, f.runner.verbs()); diff != "" {
		t.Errorf("verbs mismatch (-want +got):\n%s", diff)
	}

	installed, _ := f.manifest.IsInstalled("demo")
	files, _ := f.manifest.Files("demo")
	if installed || len(files) != 0 {
		t.Errorf("after Remove: installed = %v, files = %v", installed, files)
	}
	if _, err := os.Stat(filepath.Join(f.layout.Hooks, "on-add_demo.py")); !os.IsNotExist(err) {
		t.Errorf("hook still present: %v", err)
	}
}

func TestRemove_InstallerFailsKeepsEntries(t *testing.T) {
	f := newFixture(t)
	f.install(t)
	f.runner.handlers[installer.VerbRemove] = exitFailure(installer.VerbRemove)

	_, err := f.mgr.Remove(context.Background(), "demo")
	var ie *InstallerError
	if !errors.As(err, &ie) {
		t.Fatalf("Remove error = %v, want *InstallerError", err)
	}
	if installed, _ := f.manifest.IsInstalled("demo"); !installed {
		t.Error("entries purged after failed remove")
	}
}

func TestRemove_FallbackDeletesRecordedFiles(t *testing.T) {
	f := newFixture(t)
	f.install(t)
	delete(f.source.installers, "demo")
	delete(f.source.metas, "demo")

	// One recorded file is already gone; it must not stop the removal.
	os.Remove(filepath.Join(f.layout.Config, "demo.rc"))

	// A recorded path outside the install root is never deleted.
	outside := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.manifest.Add("demo", "1.0.0", outside, ""); err != nil {
		t.Fatal(err)
	}

	res, err := f.mgr.Remove(context.Background(), "demo")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !res.Fallback {
		t.Error("Fallback = false without an installer")
	}
	if diff := cmp.Diff([]string{outside}, res.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}

	for _, p := range []string{
		filepath.Join(f.layout.Hooks, "on-add_demo.py"),
		filepath.Join(f.layout.Docs, "demo_README.md"),
	} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still present: %v", p, err)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside install root deleted: %v", err)
	}
	if installed, _ := f.manifest.IsInstalled("demo"); installed {
		t.Error("entries not purged")
	}
	if diff := cmp.Diff([]installer.Verb{installer.VerbInstall}, f.runner.verbs()); diff != "" {
		t.Errorf("verbs mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_LeavesOtherApps(t *testing.T) {
	f := newFixture(t)
	f.install(t)
	if err := f.manifest.Add("other", "2.0", filepath.Join(f.layout.Scripts, "other"), ""); err != nil {
		t.Fatal(err)
	}

	if _, err := f.mgr.Remove(context.Background(), "demo"); err != nil {
		t.Fatal(err)
	}
	apps, _ := f.manifest.InstalledApps()
	if diff := cmp.Diff([]string{"other"}, apps); diff != "" {
		t.Errorf("InstalledApps mismatch (-want +got):\n%s", diff)
	}
}
