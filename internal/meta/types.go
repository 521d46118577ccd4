package meta

import (
	"slices"
	"strings"
)

// Role is the functional category of a delivered file. It decides the
// directory the file is installed into.
type Role string

// Role constants for the files= field.
const (
	RoleHook    Role = "hook"
	RoleScript  Role = "script"
	RoleConfig  Role = "config"
	RoleDoc     Role = "doc"
	RoleGeneric Role = "generic"
)

// ValidRoles contains all known roles.
var ValidRoles = []Role{RoleHook, RoleScript, RoleConfig, RoleDoc, RoleGeneric}

// Known reports whether r is one of ValidRoles.
func (r Role) Known() bool {
	return slices.Contains(ValidRoles, r)
}

// FileSpec is one entry of the files= field.
type FileSpec struct {
	Name string `json:"name" yaml:"name"`
	Role Role   `json:"role" yaml:"role"`
}

// File is a declared file paired with its expected checksum. Checksum is
// empty when the record supplies none for this position.
type File struct {
	Name     string
	Role     Role
	Checksum string
}

// Record describes one installable package. Records are values: they are
// rebuilt from the catalog on every query and never mutated after parsing.
type Record struct {
	Name        string     `json:"name" yaml:"name"`
	Version     string     `json:"version,omitempty" yaml:"version,omitempty"`
	Type        string     `json:"type,omitempty" yaml:"type,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	BaseURL     string     `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Repo        string     `json:"repo,omitempty" yaml:"repo,omitempty"`
	Author      string     `json:"author,omitempty" yaml:"author,omitempty"`
	License     string     `json:"license,omitempty" yaml:"license,omitempty"`
	Wiki        string     `json:"wiki,omitempty" yaml:"wiki,omitempty"`
	Requires    []string   `json:"requires,omitempty" yaml:"requires,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	FileSpecs   []FileSpec `json:"files,omitempty" yaml:"files,omitempty"`
	Checksums   []string   `json:"checksums,omitempty" yaml:"checksums,omitempty"`

	// Extra holds keys this package does not interpret.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Files returns the declared files with checksums paired by position.
// Surplus checksums are ignored; files past the end of the checksum list
// get an empty checksum.
func (r *Record) Files() []File {
	files := make([]File, len(r.FileSpecs))
	for i, spec := range r.FileSpecs {
		files[i] = File{Name: spec.Name, Role: spec.Role}
		if i < len(r.Checksums) {
			files[i].Checksum = r.Checksums[i]
		}
	}
	return files
}

// HasTag reports whether the record carries tag (case-insensitive).
func (r *Record) HasTag(tag string) bool {
	return slices.Contains(r.Tags, strings.ToLower(tag))
}

// TagSet returns the tags as a set.
func (r *Record) TagSet() map[string]bool {
	set := make(map[string]bool, len(r.Tags))
	for _, t := range r.Tags {
		set[t] = true
	}
	return set
}

// DisplayVersion returns the version or "unknown" when none is declared.
func (r *Record) DisplayVersion() string {
	if r.Version == "" {
		return "unknown"
	}
	return r.Version
}
