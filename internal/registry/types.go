package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/meta"
)

// Catalog layout, shared by the local checkout and the raw remote tree.
const (
	MetaDir       = "registry.d"
	InstallersDir = "installers"
	LibDir        = "lib"
	HelperName    = "tw-common.sh"

	metaExt    = ".meta"
	installExt = ".install"
)

// ErrNotFound is returned when a package has no metadata or installer in
// the catalog.
var ErrNotFound = errors.New("not found in registry")

// Mode is the kind of catalog a Source reads.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Source is a catalog of installable packages.
type Source interface {
	Mode() Mode
	// ListAvailable returns the sorted package names in the catalog.
	ListAvailable(ctx context.Context) ([]string, error)
	// Meta returns the parsed metadata for name, ErrNotFound when the
	// catalog has none, or a *meta.ParseError when it is malformed.
	Meta(ctx context.Context, name string) (*meta.Record, error)
	// Installer returns a handle on the installer program for name. The
	// caller must Close it.
	Installer(ctx context.Context, name string) (*Handle, error)
	// Describe says where the catalog lives.
	Describe() string
}

// TransportError reports a failed remote fetch.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Handle is an installer program ready to run.
type Handle struct {
	// Path is the executable installer.
	Path string
	// Helper is the shared helper script offered to installers, or empty.
	Helper string

	cleanup func() error
}

// Close releases the handle. Temporary installers are deleted; local
// handles are left alone. Close is safe to call more than once.
func (h *Handle) Close() error {
	if h == nil || h.cleanup == nil {
		return nil
	}
	cleanup := h.cleanup
	h.cleanup = nil
	if err := cleanup(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing installer %s: %w", h.Path, err)
	}
	return nil
}

// checkName rejects names that would escape the catalog directories.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid package name %q: %w", name, ErrNotFound)
	}
	return nil
}
