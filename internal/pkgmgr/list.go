package pkgmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"github.com/awesome-taskwarrior/tw/internal/tagfilter"
	"go.uber.org/zap"
)

// Listing is one catalog package as seen by List.
type Listing struct {
	Name             string    `json:"name"`
	Version          string    `json:"version,omitempty"`
	Type             string    `json:"type,omitempty"`
	Description      string    `json:"description,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Requires         []string  `json:"requires,omitempty"`
	Installed        bool      `json:"installed"`
	InstalledVersion string    `json:"installed_version,omitempty"`
	Skew             meta.Skew `json:"-"`
	// Err is set when the package's metadata could not be read. The
	// other fields are then empty apart from Name and Problem.
	Err     error  `json:"-"`
	Problem string `json:"error,omitempty"`
}

// List returns the catalog packages whose tags pass filter, each annotated
// with its installation state. Packages with unreadable metadata are
// returned with Err set instead of failing the whole listing.
func (m *Manager) List(ctx context.Context, filter tagfilter.Filter) ([]Listing, error) {
	names, err := m.source.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", m.source.Describe(), err)
	}

	var out []Listing
	for _, name := range names {
		rec, err := m.source.Meta(ctx, name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			m.logger.Warn("skipping unreadable metadata", zap.String("app", name), zap.Error(err))
			out = append(out, Listing{Name: name, Err: err, Problem: err.Error()})
			continue
		}
		if !filter.Matches(rec.Tags) {
			continue
		}

		l := Listing{
			Name:        name,
			Version:     rec.Version,
			Type:        rec.Type,
			Description: rec.Description,
			Tags:        rec.Tags,
			Requires:    rec.Requires,
		}
		version, installed, err := m.installedVersion(name)
		if err != nil {
			return nil, err
		}
		if installed {
			l.Installed = true
			l.InstalledVersion = version
			l.Skew = meta.CompareSkew(version, rec.Version)
		}
		out = append(out, l)
	}
	return out, nil
}

// InstalledApp is one package tracked by the Manifest.
type InstalledApp struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Files   int    `json:"files"`
}

// Installed returns every package in the Manifest, sorted by name.
func (m *Manager) Installed() ([]InstalledApp, error) {
	apps, err := m.manifest.InstalledApps()
	if err != nil {
		return nil, err
	}
	out := make([]InstalledApp, 0, len(apps))
	for _, app := range apps {
		files, err := m.manifest.Files(app)
		if err != nil {
			return nil, err
		}
		out = append(out, InstalledApp{Name: app, Version: files[0].Version, Files: len(files)})
	}
	return out, nil
}

// PackageInfo combines catalog metadata with installation state.
type PackageInfo struct {
	// Record is nil when the catalog no longer has the package.
	Record           *meta.Record     `json:"record,omitempty" yaml:"record,omitempty"`
	Installed        bool             `json:"installed" yaml:"installed"`
	InstalledVersion string           `json:"installed_version,omitempty" yaml:"installed_version,omitempty"`
	Files            []manifest.Entry `json:"files,omitempty" yaml:"files,omitempty"`
	Planned          []PlannedFile    `json:"planned,omitempty" yaml:"planned,omitempty"`
	Skew             meta.Skew        `json:"-" yaml:"-"`
}

// Info describes name. A package missing from the catalog but still in the
// Manifest is described from the Manifest alone.
func (m *Manager) Info(ctx context.Context, name string) (*PackageInfo, error) {
	rec, err := m.source.Meta(ctx, name)
	if err != nil && !errors.Is(err, registry.ErrNotFound) {
		return nil, err
	}

	version, installed, ierr := m.installedVersion(name)
	if ierr != nil {
		return nil, ierr
	}
	if rec == nil && !installed {
		return nil, fmt.Errorf("package %s not found in %s: %w", name, m.source.Describe(), err)
	}

	info := &PackageInfo{Record: rec, Installed: installed, InstalledVersion: version}
	if rec != nil {
		info.Planned = m.plan(name, rec)
	}
	if installed {
		if info.Files, err = m.manifest.Files(name); err != nil {
			return nil, err
		}
		if rec != nil {
			info.Skew = meta.CompareSkew(version, rec.Version)
		}
	}
	return info, nil
}

func (m *Manager) installedVersion(name string) (string, bool, error) {
	installed, err := m.manifest.IsInstalled(name)
	if err != nil || !installed {
		return "", false, err
	}
	version, err := m.manifest.Version(name)
	return version, true, err
}
