package pkgmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/registry"
)

// InstallResult describes an install or its dry-run preview.
type InstallResult struct {
	App     string
	Version string
	DryRun  bool
	// Files lists every declared file and its target path.
	Files []PlannedFile
	// Registered holds the paths recorded in the Manifest.
	Registered []string
	// Missing holds declared targets the installer did not deliver.
	Missing  []string
	Warnings []string
}

// Install installs name. With dryRun set it only resolves metadata and
// reports where each declared file would go; no installer is fetched or
// run and the Manifest is not written.
func (m *Manager) Install(ctx context.Context, name string, dryRun bool) (*InstallResult, error) {
	installed, err := m.manifest.IsInstalled(name)
	if err != nil {
		return nil, err
	}
	if installed {
		return nil, fmt.Errorf("%s: %w", name, ErrAlreadyInstalled)
	}

	rec, err := m.source.Meta(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("package %s not found in %s: %w", name, m.source.Describe(), err)
		}
		return nil, err
	}

	res := &InstallResult{
		App:      name,
		Version:  rec.Version,
		DryRun:   dryRun,
		Files:    m.plan(name, rec),
		Warnings: append(nameWarnings(name, rec), m.lint(rec)...),
	}
	if dryRun {
		return res, nil
	}

	fmt.Fprintf(m.out, "Installing %s v%s...\n", name, rec.DisplayVersion())
	if err := m.runVerb(ctx, name, installer.VerbInstall); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("no installer for %s: %w", name, err)
		}
		return nil, err
	}

	res.Registered, res.Missing, err = m.register(name, rec)
	if err != nil {
		return res, err
	}
	return res, nil
}
