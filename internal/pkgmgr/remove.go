package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"go.uber.org/zap"
)

// RemoveResult describes a completed removal.
type RemoveResult struct {
	App     string
	Version string
	// Purged holds the paths dropped from the Manifest.
	Purged []string
	// Fallback is set when no installer was available and tw deleted the
	// recorded files itself.
	Fallback bool
	// Skipped holds recorded paths outside the install root, which the
	// fallback never deletes.
	Skipped []string
}

// Remove uninstalls name. The package's installer runs its remove verb
// when the catalog still has one; otherwise the files recorded in the
// Manifest are deleted directly. Either way the package's entries are
// purged.
func (m *Manager) Remove(ctx context.Context, name string) (*RemoveResult, error) {
	installed, err := m.manifest.IsInstalled(name)
	if err != nil {
		return nil, err
	}
	if !installed {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	version, err := m.manifest.Version(name)
	if err != nil {
		return nil, err
	}
	res := &RemoveResult{App: name, Version: version}

	fmt.Fprintf(m.out, "Removing %s...\n", name)
	err = m.runVerb(ctx, name, installer.VerbRemove)
	switch {
	case err == nil:
	case errors.Is(err, registry.ErrNotFound):
		m.logger.Info("no installer in catalog, deleting recorded files", zap.String("app", name))
		res.Fallback = true
		if res.Skipped, err = m.deleteRecorded(name); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := m.manifest.Reload(); err != nil {
		return nil, err
	}
	if res.Purged, err = m.manifest.RemoveApp(name); err != nil {
		return nil, err
	}
	return res, nil
}

// deleteRecorded removes every file the Manifest tracks for name. Files
// already gone are fine. Paths outside the install root are left alone
// and returned.
func (m *Manager) deleteRecorded(name string) ([]string, error) {
	files, err := m.manifest.Files(name)
	if err != nil {
		return nil, err
	}
	var skipped []string
	for _, e := range files {
		if !m.layout.Contains(e.Path) {
			m.logger.Warn("not deleting file outside the install root", zap.String("path", e.Path))
			skipped = append(skipped, e.Path)
			continue
		}
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return skipped, fmt.Errorf("deleting %s: %w", e.Path, err)
		}
		m.logger.Debug("deleted", zap.String("path", e.Path))
	}
	return skipped, nil
}
