package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/awesome-taskwarrior/tw/internal/checksum"
	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/paths"
	"github.com/awesome-taskwarrior/tw/internal/registry"
)

const (
	hookBody   = "#!/usr/bin/env python3\nprint('demo')\n"
	rcBody     = "uda.demo.type=string\n"
	readmeBody = "# demo\n"
)

func sum(s string) string {
	h, err := checksum.Reader(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return h
}

func demoMeta(version string) string {
	return fmt.Sprintf(`name=demo
version=%s
description=Demo hook
tags=hook,python
files=on-add_demo.py:hook,demo.rc:config,README.md:doc
checksums=sha256:%s,%s
`, version, sum(hookBody), sum(rcBody))
}

// fakeSource is an in-memory catalog. Metadata is parsed on every query.
type fakeSource struct {
	metas      map[string]string
	installers map[string]bool
	metaErr    map[string]error
	handles    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		metas:      map[string]string{},
		installers: map[string]bool{},
		metaErr:    map[string]error{},
	}
}

func (s *fakeSource) Mode() registry.Mode { return registry.ModeLocal }
func (s *fakeSource) Describe() string    { return "test catalog" }

func (s *fakeSource) ListAvailable(context.Context) ([]string, error) {
	var names []string
	for name := range s.metas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeSource) Meta(_ context.Context, name string) (*meta.Record, error) {
	if err := s.metaErr[name]; err != nil {
		return nil, err
	}
	text, ok := s.metas[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, registry.ErrNotFound)
	}
	return meta.ParseNamed(text, name+".meta")
}

func (s *fakeSource) Installer(_ context.Context, name string) (*registry.Handle, error) {
	if !s.installers[name] {
		return nil, fmt.Errorf("installer for %s: %w", name, registry.ErrNotFound)
	}
	s.handles++
	return &registry.Handle{Path: "/catalog/installers/" + name + ".install", Helper: "/catalog/lib/tw-common.sh"}, nil
}

type runCall struct {
	Path string
	Verb installer.Verb
	Env  map[string]string
}

// fakeRunner records calls and dispatches to per-verb handlers. A verb
// without a handler succeeds without touching anything.
type fakeRunner struct {
	calls    []runCall
	handlers map[installer.Verb]func(env map[string]string) error
}

func (r *fakeRunner) Run(_ context.Context, path string, verb installer.Verb, env []string) (*installer.Output, error) {
	vars := make(map[string]string, len(env))
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		vars[k] = v
	}
	r.calls = append(r.calls, runCall{Path: path, Verb: verb, Env: vars})
	if h := r.handlers[verb]; h != nil {
		if err := h(vars); err != nil {
			return &installer.Output{ExitCode: 1}, err
		}
	}
	return &installer.Output{}, nil
}

func (r *fakeRunner) verbs() []installer.Verb {
	var verbs []installer.Verb
	for _, c := range r.calls {
		verbs = append(verbs, c.Verb)
	}
	return verbs
}

// deliverDemo writes the demo package's files the way a real installer
// would, using the directories from the environment.
func deliverDemo(hook string) func(env map[string]string) error {
	return func(env map[string]string) error {
		files := map[string]string{
			filepath.Join(env["HOOKS_DIR"], "on-add_demo.py"): hook,
			filepath.Join(env["CONFIG_DIR"], "demo.rc"):       rcBody,
			filepath.Join(env["DOCS_DIR"], "demo_README.md"):  readmeBody,
		}
		for path, body := range files {
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				return err
			}
		}
		return nil
	}
}

// removeDemo deletes what deliverDemo wrote.
func removeDemo(env map[string]string) error {
	os.Remove(filepath.Join(env["HOOKS_DIR"], "on-add_demo.py"))
	os.Remove(filepath.Join(env["CONFIG_DIR"], "demo.rc"))
	os.Remove(filepath.Join(env["DOCS_DIR"], "demo_README.md"))
	return nil
}

func exitFailure(verb installer.Verb) func(map[string]string) error {
	return func(map[string]string) error {
		return &installer.ExitError{Path: "fake", Verb: verb, Code: 1}
	}
}

type fixture struct {
	layout   paths.Layout
	manifest *manifest.Manifest
	source   *fakeSource
	runner   *fakeRunner
	mgr      *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	layout := paths.NewLayout(filepath.Join(t.TempDir(), ".task"))
	f := &fixture{
		layout: layout,
		manifest: manifest.New(layout.ManifestPath, manifest.WithClock(func() time.Time {
			return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		})),
		source: newFakeSource(),
		runner: &fakeRunner{handlers: map[installer.Verb]func(map[string]string) error{
			installer.VerbInstall: deliverDemo(hookBody),
			installer.VerbRemove:  removeDemo,
		}},
	}
	f.source.metas["demo"] = demoMeta("1.0.0")
	f.source.installers["demo"] = true
	f.mgr = New(Options{
		Source:   f.source,
		Manifest: f.manifest,
		Layout:   layout,
		Runner:   f.runner,
		TaskRC:   "/home/u/.taskrc",
	})
	return f
}

// ledger returns the raw manifest file, or "" when it does not exist.
func (f *fixture) ledger(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.layout.ManifestPath)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func (f *fixture) install(t *testing.T) {
	t.Helper()
	if _, err := f.mgr.Install(context.Background(), "demo", false); err != nil {
		t.Fatalf("Install: %v", err)
	}
}
