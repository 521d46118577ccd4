package pkgmgr

import (
	"context"
	"fmt"
	"io"

	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/paths"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"go.uber.org/zap"
)

// Options wires a Manager to its collaborators.
type Options struct {
	Source   registry.Source
	Manifest *manifest.Manifest
	Layout   paths.Layout
	Runner   installer.Runner
	// TaskRC is passed to installers as TASKRC.
	TaskRC string
	// Debug asks installers for verbose output (TW_DEBUG=1).
	Debug  bool
	Logger *zap.Logger
	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

// Manager runs package operations. It is not safe for concurrent use.
type Manager struct {
	source   registry.Source
	manifest *manifest.Manifest
	layout   paths.Layout
	runner   installer.Runner
	taskRC   string
	debug    bool
	logger   *zap.Logger
	out      io.Writer
}

// New returns a Manager for opts.
func New(opts Options) *Manager {
	m := &Manager{
		source:   opts.Source,
		manifest: opts.Manifest,
		layout:   opts.Layout,
		runner:   opts.Runner,
		taskRC:   opts.TaskRC,
		debug:    opts.Debug,
		logger:   opts.Logger,
		out:      opts.Out,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.out == nil {
		m.out = io.Discard
	}
	return m
}

// Source returns the registry the Manager reads.
func (m *Manager) Source() registry.Source { return m.source }

// PlannedFile is a declared file and where it is delivered.
type PlannedFile struct {
	Name     string    `json:"name" yaml:"name"`
	Role     meta.Role `json:"role" yaml:"role"`
	Target   string    `json:"target" yaml:"target"`
	Checksum string    `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// plan maps every declared file of rec to its target path. app is the
// catalog name; it keys delivery and tracking even when the record's
// name= says otherwise.
func (m *Manager) plan(app string, rec *meta.Record) []PlannedFile {
	files := rec.Files()
	planned := make([]PlannedFile, 0, len(files))
	for _, f := range files {
		planned = append(planned, PlannedFile{
			Name:     f.Name,
			Role:     f.Role,
			Target:   m.layout.TargetPath(app, f.Name, f.Role),
			Checksum: f.Checksum,
		})
	}
	return planned
}

// register records under app each declared file of rec that the
// installer delivered, replacing any entries left for app. It returns the
// registered paths and the targets that were not found. When files are
// declared but none was delivered the Manifest is left untouched and
// ErrNothingDelivered is returned.
func (m *Manager) register(app string, rec *meta.Record) (registered, missing []string, err error) {
	type found struct {
		path     string
		checksum string
	}
	var delivered []found
	for _, f := range rec.Files() {
		path, ok := m.layout.Locate(app, f.Name, f.Role)
		if !ok {
			missing = append(missing, path)
			m.logger.Warn("declared file not delivered", zap.String("app", app), zap.String("path", path))
			continue
		}
		if !m.layout.Contains(path) {
			m.logger.Warn("declared file resolves outside the install root", zap.String("app", app), zap.String("path", path))
			continue
		}
		delivered = append(delivered, found{path, f.Checksum})
	}
	if len(rec.FileSpecs) > 0 && len(delivered) == 0 {
		return nil, missing, fmt.Errorf("%s: %w", app, ErrNothingDelivered)
	}

	if err := m.manifest.Reload(); err != nil {
		return nil, missing, err
	}
	if _, err := m.manifest.RemoveApp(app); err != nil {
		return nil, missing, err
	}
	for _, d := range delivered {
		if err := m.manifest.Add(app, rec.Version, d.path, d.checksum); err != nil {
			return registered, missing, fmt.Errorf("registering %s: %w", d.path, err)
		}
		registered = append(registered, d.path)
	}
	return registered, missing, nil
}

// nameWarnings reports a record whose name= differs from the catalog name
// it was listed under.
func nameWarnings(app string, rec *meta.Record) []string {
	if rec.Name == app {
		return nil
	}
	return []string{fmt.Sprintf("metadata name %q differs from catalog name %q; tracking as %q", rec.Name, app, app)}
}

// runVerb obtains the installer for name and runs verb under the install
// environment. The standard directories are created before install and
// update runs. The handle is released before returning.
func (m *Manager) runVerb(ctx context.Context, name string, verb installer.Verb) (err error) {
	h, err := m.source.Installer(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil {
			m.logger.Warn("releasing installer", zap.Error(closeErr))
		}
	}()

	if verb != installer.VerbRemove {
		if err := m.layout.EnsureDirectories(); err != nil {
			return err
		}
	}

	env := m.layout.InstallerEnv(paths.InstallerOptions{
		TaskRC: m.taskRC,
		Helper: h.Helper,
		Debug:  m.debug,
	})
	m.logger.Info("running installer", zap.String("app", name), zap.String("verb", string(verb)), zap.String("installer", h.Path))
	if _, err := m.runner.Run(ctx, h.Path, verb, env); err != nil {
		return &InstallerError{App: name, Verb: verb, Err: err}
	}
	return nil
}

// lint logs schema problems in rec and returns them as strings.
func (m *Manager) lint(rec *meta.Record) []string {
	res, err := meta.Validate(rec)
	if err != nil {
		m.logger.Debug("schema validation unavailable", zap.Error(err))
		return nil
	}
	var warnings []string
	for _, issue := range res.Issues {
		warnings = append(warnings, issue.String())
		m.logger.Warn("metadata issue", zap.String("app", rec.Name), zap.String("issue", issue.String()))
	}
	return warnings
}
