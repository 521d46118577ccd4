package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/awesome-taskwarrior/tw/internal/platform"
)

// FileName is the ledger file name inside the install root.
const FileName = ".tw_manifest"

const separator = "|"

// Entry is one tracked file.
type Entry struct {
	App      string `json:"app" yaml:"app"`
	Version  string `json:"version" yaml:"version"`
	Path     string `json:"path" yaml:"path"`
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
}

func (e Entry) line() string {
	return strings.Join([]string{e.App, e.Version, e.Path, e.Checksum, e.Date}, separator)
}

// ParseError reports a malformed ledger line. Malformed lines are skipped
// on load and never written back.
type ParseError struct {
	Path string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: malformed manifest entry %q", e.Path, e.Line, e.Text)
}

// Manifest is the in-memory view of the ledger. It is not safe for
// concurrent use; one command process owns it.
type Manifest struct {
	path    string
	entries []Entry
	issues  []error
	loaded  bool
	now     func() time.Time
}

// Option configures a Manifest.
type Option func(*Manifest)

// WithClock sets the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(m *Manifest) {
		m.now = now
	}
}

// New returns a Manifest backed by the ledger at path. Nothing is read
// until the first query.
func New(path string, opts ...Option) *Manifest {
	m := &Manifest{path: path, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the ledger file path.
func (m *Manifest) Path() string {
	return m.path
}

// Load parses the ledger once. Later calls return the cached entries.
// A missing ledger is an empty one.
func (m *Manifest) Load() error {
	if m.loaded {
		return nil
	}
	return m.Reload()
}

// Reload re-reads the ledger from disk, discarding the cache.
func (m *Manifest) Reload() error {
	entries, issues, err := readLedger(m.path)
	if err != nil {
		return err
	}
	m.entries = entries
	m.issues = issues
	m.loaded = true
	return nil
}

// Issues returns the malformed lines skipped by the last load.
func (m *Manifest) Issues() []error {
	return m.issues
}

func readLedger(path string) ([]Entry, []error, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	var issues []error
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, separator)
		if len(parts) < 4 || parts[0] == "" || parts[2] == "" {
			issues = append(issues, &ParseError{Path: path, Line: lineNo, Text: line})
			continue
		}
		e := Entry{App: parts[0], Version: parts[1], Path: parts[2], Checksum: parts[3]}
		if len(parts) > 4 {
			e.Date = parts[4]
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return entries, issues, nil
}

// Add records a file for app, superseding any entry with the same
// (app, path). The whole ledger is rewritten.
func (m *Manifest) Add(app, version, path, checksum string) error {
	if err := m.Load(); err != nil {
		return err
	}
	if app == "" || path == "" {
		return fmt.Errorf("manifest entry needs an app and a path")
	}
	if strings.Contains(app+version+path+checksum, separator) {
		return fmt.Errorf("manifest fields must not contain %q", separator)
	}

	kept := m.entries[:0:0]
	for _, e := range m.entries {
		if e.App == app && e.Path == path {
			continue
		}
		kept = append(kept, e)
	}
	kept = append(kept, Entry{
		App:      app,
		Version:  version,
		Path:     path,
		Checksum: checksum,
		Date:     m.now().UTC().Format(time.RFC3339),
	})

	if err := m.save(kept); err != nil {
		return err
	}
	m.entries = kept
	return nil
}

// RemoveApp deletes every entry for app and returns the paths they tracked.
func (m *Manifest) RemoveApp(app string) ([]string, error) {
	if err := m.Load(); err != nil {
		return nil, err
	}

	var removed []string
	kept := m.entries[:0:0]
	for _, e := range m.entries {
		if e.App == app {
			removed = append(removed, e.Path)
			continue
		}
		kept = append(kept, e)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if err := m.save(kept); err != nil {
		return nil, err
	}
	m.entries = kept
	return removed, nil
}

// IsInstalled reports whether any entry exists for app.
func (m *Manifest) IsInstalled(app string) (bool, error) {
	if err := m.Load(); err != nil {
		return false, err
	}
	for _, e := range m.entries {
		if e.App == app {
			return true, nil
		}
	}
	return false, nil
}

// Version returns the version of the first entry for app, or "" if none.
func (m *Manifest) Version(app string) (string, error) {
	if err := m.Load(); err != nil {
		return "", err
	}
	for _, e := range m.entries {
		if e.App == app {
			return e.Version, nil
		}
	}
	return "", nil
}

// Files returns the entries tracked for app, in ledger order.
func (m *Manifest) Files(app string) ([]Entry, error) {
	if err := m.Load(); err != nil {
		return nil, err
	}
	var files []Entry
	for _, e := range m.entries {
		if e.App == app {
			files = append(files, e)
		}
	}
	return files, nil
}

// Entries returns a copy of all entries.
func (m *Manifest) Entries() ([]Entry, error) {
	if err := m.Load(); err != nil {
		return nil, err
	}
	return append([]Entry(nil), m.entries...), nil
}

// InstalledApps returns the sorted names of all installed apps.
func (m *Manifest) InstalledApps() ([]string, error) {
	if err := m.Load(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var apps []string
	for _, e := range m.entries {
		if !seen[e.App] {
			seen[e.App] = true
			apps = append(apps, e.App)
		}
	}
	sort.Strings(apps)
	return apps, nil
}

// save writes entries to a temporary file next to the ledger and renames
// it into place.
func (m *Manifest) save(entries []Entry) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating manifest directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary manifest: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		if _, err := w.WriteString(e.line() + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("writing temporary manifest: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temporary manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temporary manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary manifest: %w", err)
	}
	if err := platform.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting manifest permissions: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		return fmt.Errorf("replacing manifest %s: %w", m.path, err)
	}
	return nil
}
