package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/awesome-taskwarrior/tw/internal/checksum"
	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/paths"
	"github.com/awesome-taskwarrior/tw/internal/platform"
	"github.com/bmatcuk/doublestar/v4"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data holds all template variables available to the scaffold templates.
type Data struct {
	Name        string
	Version     string
	Type        string
	Description string
	Author      string
	License     string
	Repo        string // "owner/repo" on GitHub, may be empty
	Branch      string
	Tags        []string
	Requires    []string
	Files       []meta.FileSpec
	Checksums   []string
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData returns Data for name with the defaults of a new package.
func NewData(name string) *Data {
	return &Data{
		Name:    name,
		Version: "0.1.0",
		Type:    string(meta.RoleHook),
		License: "MIT",
		Branch:  "main",
	}
}

// BaseURL is the raw-file URL the package's installer downloads from.
func (d *Data) BaseURL() string {
	if d.Repo == "" {
		return ""
	}
	return "https://raw.githubusercontent.com/" + d.Repo + "/" + d.Branch
}

// Detection patterns, matched against the top level of a project.
const (
	hookPattern   = "on-{add,modify,exit,launch}*.{py,sh}"
	configPattern = "*.{rc,conf}"
)

var docNames = []string{"README.md", "USAGE.md", "INSTALL.md"}

var scriptExts = map[string]bool{".py": true, ".sh": true, ".bash": true, ".pl": true, ".rb": true}

// DetectFiles guesses the declared files of the project in dir: hooks by
// name, configs by extension, well-known docs, and any other executable
// with a shebang or script extension as a script.
func DetectFiles(dir string) ([]meta.FileSpec, error) {
	fsys := os.DirFS(dir)
	seen := map[string]bool{}
	var files []meta.FileSpec
	add := func(name string, role meta.Role) {
		if seen[name] || skipped(name) {
			return
		}
		seen[name] = true
		files = append(files, meta.FileSpec{Name: name, Role: role})
	}

	hooks, err := doublestar.Glob(fsys, hookPattern)
	if err != nil {
		return nil, fmt.Errorf("detecting hooks: %w", err)
	}
	sort.Strings(hooks)
	for _, h := range hooks {
		add(h, meta.RoleHook)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || seen[e.Name()] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if platform.IsExecutable(path) && looksLikeScript(path) {
			add(e.Name(), meta.RoleScript)
		}
	}

	configs, err := doublestar.Glob(fsys, configPattern)
	if err != nil {
		return nil, fmt.Errorf("detecting configs: %w", err)
	}
	sort.Strings(configs)
	for _, c := range configs {
		add(c, meta.RoleConfig)
	}

	for _, doc := range docNames {
		if info, err := os.Stat(filepath.Join(dir, doc)); err == nil && !info.IsDir() {
			add(doc, meta.RoleDoc)
		}
	}
	return files, nil
}

// skipped filters debug copies, backups and registry files out of
// detection.
func skipped(name string) bool {
	switch filepath.Ext(name) {
	case ".orig", ".meta", ".install":
		return true
	}
	return strings.HasPrefix(name, "debug.") || strings.HasPrefix(name, ".")
}

func looksLikeScript(path string) bool {
	if scriptExts[filepath.Ext(path)] {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 2)
	n, _ := f.Read(head)
	return n == 2 && string(head) == "#!"
}

// Checksums computes the checksum of each file, relative to dir, in order.
func Checksums(dir string, files []meta.FileSpec) ([]string, error) {
	sums := make([]string, 0, len(files))
	for _, f := range files {
		sum, err := checksum.File(filepath.Join(dir, f.Name))
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"fileList": func(files []meta.FileSpec) string {
		parts := make([]string, len(files))
		for i, f := range files {
			parts[i] = f.Name + ":" + string(f.Role)
		}
		return strings.Join(parts, ",")
	},
}

// Generate writes <name>.meta into outputDir. An existing file is never
// overwritten. The generated metadata is parsed back and schema problems
// are returned as warnings.
func Generate(data *Data, outputDir string) (*Result, error) {
	if data.Name == "" {
		return nil, errors.New("package name is required")
	}
	if len(data.Checksums) > 0 && len(data.Checksums) != len(data.Files) {
		return nil, fmt.Errorf("%d checksums for %d files", len(data.Checksums), len(data.Files))
	}

	name := data.Name + ".meta"
	outPath := filepath.Join(outputDir, name)
	if _, err := os.Stat(outPath); err == nil {
		return nil, fmt.Errorf("%s already exists in %s; remove it first", name, outputDir)
	}

	tmpl, err := template.New("meta.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/meta.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	// Parse before writing so a broken record never lands on disk.
	rec, err := meta.ParseNamed(buf.String(), name)
	if err != nil {
		return nil, fmt.Errorf("generated metadata does not parse: %w", err)
	}

	if err := os.MkdirAll(outputDir, paths.DirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), paths.FilePerm); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}

	result := &Result{OutputDir: outputDir, Files: []string{name}}
	valResult, err := meta.Validate(rec)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not validate metadata: %v", err))
	} else {
		for _, issue := range valResult.Issues {
			result.Warnings = append(result.Warnings, issue.String())
		}
	}
	return result, nil
}
