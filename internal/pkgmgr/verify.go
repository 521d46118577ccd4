package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/awesome-taskwarrior/tw/internal/checksum"
	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"go.uber.org/zap"
)

// FileStatus is the outcome of checking one file.
type FileStatus string

const (
	StatusOK           FileStatus = "ok"
	StatusMissing      FileStatus = "missing"
	StatusMismatch     FileStatus = "mismatch"
	StatusUnverifiable FileStatus = "unverifiable"
)

// Failed reports whether the status fails verification.
func (s FileStatus) Failed() bool {
	return s == StatusMissing || s == StatusMismatch
}

// FileCheck is the result for one file.
type FileCheck struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Status   FileStatus `json:"status"`
	Expected string     `json:"expected,omitempty"`
	Actual   string     `json:"actual,omitempty"`
}

// VerifyResult is the outcome of Verify.
type VerifyResult struct {
	App string `json:"app"`
	// FromManifest is set when the catalog had no usable metadata and the
	// Manifest's recorded checksums were used.
	FromManifest bool        `json:"from_manifest"`
	Files        []FileCheck `json:"files"`
	OK           bool        `json:"ok"`
}

// Verify checks the files of an installed package against their declared
// checksums. A missing file or a mismatch fails; a file without a checksum
// is reported unverifiable. A failed result is returned together with
// ErrVerificationFailed.
func (m *Manager) Verify(ctx context.Context, name string) (*VerifyResult, error) {
	installed, err := m.manifest.IsInstalled(name)
	if err != nil {
		return nil, err
	}
	if !installed {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}

	res := &VerifyResult{App: name, OK: true}
	rec, err := m.source.Meta(ctx, name)
	switch {
	case err == nil:
		for _, f := range rec.Files() {
			path, _ := m.layout.Locate(name, f.Name, f.Role)
			res.add(checkFile(f.Name, path, f.Checksum))
		}
	case usableWithoutCatalog(err):
		m.logger.Info("verifying against manifest", zap.String("app", name), zap.Error(err))
		res.FromManifest = true
		entries, err := m.manifest.Files(name)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			res.add(checkFile(filepath.Base(e.Path), e.Path, e.Checksum))
		}
	default:
		return nil, err
	}

	if !res.OK {
		return res, fmt.Errorf("%s: %w", name, ErrVerificationFailed)
	}
	return res, nil
}

func (r *VerifyResult) add(c FileCheck) {
	r.Files = append(r.Files, c)
	if c.Status.Failed() {
		r.OK = false
	}
}

// usableWithoutCatalog reports whether a metadata lookup failure still
// allows verification from the Manifest.
func usableWithoutCatalog(err error) bool {
	var pe *meta.ParseError
	var te *registry.TransportError
	return errors.Is(err, registry.ErrNotFound) || errors.As(err, &pe) || errors.As(err, &te)
}

func checkFile(name, path, expected string) FileCheck {
	c := FileCheck{Name: name, Path: path, Expected: expected}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.Status = StatusMissing
		return c
	}
	if expected == "" {
		c.Status = StatusUnverifiable
		return c
	}
	actual, err := checksum.File(path)
	if err != nil {
		c.Status = StatusMissing
		return c
	}
	c.Actual = actual
	if checksum.Equal(actual, expected) {
		c.Status = StatusOK
	} else {
		c.Status = StatusMismatch
	}
	return c
}
