package pkgmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"go.uber.org/zap"
)

// UpdateResult describes a completed update.
type UpdateResult struct {
	App         string
	FromVersion string
	ToVersion   string
	// Reinstalled is set when the installer's update verb failed and the
	// package was removed and installed again instead.
	Reinstalled bool
	Registered  []string
	Missing     []string
}

// Update moves an installed package to the catalog's version. The
// installer's update verb is tried first. If it fails, or succeeds without
// delivering any declared file, the package is removed and installed
// again; when that install fails the package is left not installed.
func (m *Manager) Update(ctx context.Context, name string) (*UpdateResult, error) {
	installed, err := m.manifest.IsInstalled(name)
	if err != nil {
		return nil, err
	}
	if !installed {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	from, err := m.manifest.Version(name)
	if err != nil {
		return nil, err
	}

	rec, err := m.source.Meta(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("package %s not found in %s: %w", name, m.source.Describe(), err)
		}
		return nil, err
	}
	m.lint(rec)

	res := &UpdateResult{App: name, FromVersion: from, ToVersion: rec.Version}

	fmt.Fprintf(m.out, "Updating %s (%s -> %s)...\n", name, displayVersion(from), rec.DisplayVersion())
	err = m.runVerb(ctx, name, installer.VerbUpdate)
	if err == nil {
		res.Registered, res.Missing, err = m.register(name, rec)
		if !errors.Is(err, ErrNothingDelivered) {
			return res, err
		}
		// The update verb delivered nothing; the old entries are still
		// tracked, so take the remove and install path.
		res.Missing = nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(err, registry.ErrNotFound) {
		return nil, fmt.Errorf("no installer for %s: %w", name, err)
	}

	m.logger.Info("update verb failed, reinstalling", zap.String("app", name), zap.Error(err))
	fmt.Fprintf(m.out, "Update not supported by installer, reinstalling %s...\n", name)
	res.Reinstalled = true

	if _, err := m.Remove(ctx, name); err != nil {
		return res, fmt.Errorf("reinstalling %s: %w", name, err)
	}
	inst, err := m.Install(ctx, name, false)
	if err != nil {
		return res, fmt.Errorf("reinstalling %s: removed, install failed: %w", name, err)
	}
	res.Registered, res.Missing = inst.Registered, inst.Missing
	return res, nil
}

func displayVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
