package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManifest(t *testing.T) *Manifest {
	t.Helper()
	return New(filepath.Join(t.TempDir(), FileName), WithClock(func() time.Time { return fixedTime }))
}

func TestLoad_Missing(t *testing.T) {
	m := newTestManifest(t)
	entries, err := m.Entries()
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestAdd_WritesFormat(t *testing.T) {
	m := newTestManifest(t)
	if err := m.Add("demo", "1.0.0", "/home/u/.task/hooks/on-add_demo.py", "abc"); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	data, err := os.ReadFile(m.Path())
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	want := "demo|1.0.0|/home/u/.task/hooks/on-add_demo.py|abc|2026-03-01T12:00:00Z\n"
	if string(data) != want {
		t.Errorf("ledger = %q, want %q", string(data), want)
	}
}

func TestAdd_Upsert(t *testing.T) {
	m := newTestManifest(t)
	if err := m.Add("demo", "1.0.0", "/p/a", "old"); err != nil {
		t.Fatal(err)
	}
	if err := m.Add("demo", "1.1.0", "/p/a", "new"); err != nil {
		t.Fatal(err)
	}

	files, err := m.Files("demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d entries for (demo, /p/a), want 1", len(files))
	}
	if files[0].Version != "1.1.0" || files[0].Checksum != "new" {
		t.Errorf("entry = %+v, want latest data", files[0])
	}

	// The same path under another app is a separate entry.
	if err := m.Add("other", "0.1", "/p/a", ""); err != nil {
		t.Fatal(err)
	}
	all, _ := m.Entries()
	if len(all) != 2 {
		t.Errorf("got %d entries, want 2", len(all))
	}
}

func TestAdd_PersistsAcrossInstances(t *testing.T) {
	m := newTestManifest(t)
	m.Add("demo", "1.0.0", "/p/a", "")
	m.Add("demo", "1.0.0", "/p/b", "")

	fresh := New(m.Path())
	files, err := fresh.Files("demo")
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"/p/a", "/p/b"}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveApp(t *testing.T) {
	m := newTestManifest(t)
	m.Add("demo", "1.0.0", "/p/a", "")
	m.Add("demo", "1.0.0", "/p/b", "")
	m.Add("keep", "2.0.0", "/p/c", "")

	removed, err := m.RemoveApp("demo")
	if err != nil {
		t.Fatalf("RemoveApp error: %v", err)
	}
	if diff := cmp.Diff([]string{"/p/a", "/p/b"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}

	installed, _ := m.IsInstalled("demo")
	if installed {
		t.Error("IsInstalled(demo) = true after RemoveApp")
	}
	files, _ := m.Files("demo")
	if len(files) != 0 {
		t.Errorf("Files(demo) = %v, want empty", files)
	}

	if err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	apps, _ := m.InstalledApps()
	if diff := cmp.Diff([]string{"keep"}, apps); diff != "" {
		t.Errorf("InstalledApps mismatch (-want +got):\n%s", diff)
	}
}

func TestVersion_FirstEntry(t *testing.T) {
	m := newTestManifest(t)
	m.Add("demo", "1.0.0", "/p/a", "")
	m.Add("demo", "1.1.0", "/p/b", "")

	v, err := m.Version("demo")
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", v)
	}
	if v, _ := m.Version("absent"); v != "" {
		t.Errorf("Version(absent) = %q, want empty", v)
	}
}

func TestLoad_SkipsMalformedAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := strings.Join([]string{
		"# tw manifest",
		"demo|1.0.0|/p/a|abc|2025-01-01T00:00:00Z",
		"broken|line",
		"",
		"legacy|0.9|/p/b|",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := New(path)
	entries, err := m.Entries()
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].Date != "" {
		t.Errorf("legacy entry Date = %q, want empty", entries[1].Date)
	}

	issues := m.Issues()
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	var pe *ParseError
	if !errors.As(issues[0], &pe) || pe.Line != 3 {
		t.Errorf("issue = %v, want ParseError at line 3", issues[0])
	}
}

func TestLoad_Cached(t *testing.T) {
	m := newTestManifest(t)
	m.Add("demo", "1.0.0", "/p/a", "")

	// An external writer changes the file; the cache holds until Reload.
	if err := os.WriteFile(m.Path(), []byte("ext|1|/p/x||\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.IsInstalled("ext"); ok {
		t.Error("cached manifest saw external write before Reload")
	}
	if err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.IsInstalled("ext"); !ok {
		t.Error("Reload did not pick up external write")
	}
}

func TestSave_NoTempLeftovers(t *testing.T) {
	m := newTestManifest(t)
	m.Add("demo", "1.0.0", "/p/a", "")
	m.Add("demo", "1.0.0", "/p/b", "")

	entries, err := os.ReadDir(filepath.Dir(m.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only %s", names, FileName)
	}
}

func TestAdd_RejectsSeparator(t *testing.T) {
	m := newTestManifest(t)
	if err := m.Add("demo", "1|0", "/p/a", ""); err == nil {
		t.Error("expected error for field containing separator")
	}
}
