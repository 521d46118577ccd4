package meta

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseError reports a malformed .meta file.
type ParseError struct {
	Source string // file path or name, may be empty
	Line   int    // 1-based line number, 0 when not line-specific
	Msg    string
}

func (e *ParseError) Error() string {
	src := e.Source
	if src == "" {
		src = "meta"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s: line %d: %s", src, e.Line, e.Msg)
	}
	return fmt.Sprintf("parsing %s: %s", src, e.Msg)
}

// checksumPrefix is the only algorithm prefix accepted in checksums=.
const checksumPrefix = "sha256:"

// Parse parses the text of a .meta file.
//
// The grammar is line-oriented key=value. Blank lines and lines starting
// with # are ignored. A line starting with whitespace continues the value
// of the previous key, joined with a newline.
func Parse(text string) (*Record, error) {
	return parse(text, "")
}

// ParseFile reads and parses a .meta file.
func ParseFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return parse(string(data), path)
}

// ParseNamed parses text, reporting errors against source.
func ParseNamed(text, source string) (*Record, error) {
	return parse(text, source)
}

func parse(text, source string) (*Record, error) {
	fields, err := scanFields(text, source)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(fields.get("name"))
	if name == "" {
		return nil, &ParseError{Source: source, Msg: "missing required key \"name\""}
	}

	r := &Record{
		Name:        name,
		Version:     fields.get("version"),
		Type:        fields.get("type"),
		Description: fields.get("description"),
		BaseURL:     fields.get("base_url"),
		Repo:        fields.get("repo"),
		Author:      fields.get("author"),
		License:     fields.get("license"),
		Wiki:        fields.get("wiki"),
		Requires:    splitList(fields.get("requires")),
		Tags:        parseTags(fields.get("tags")),
		FileSpecs:   parseFiles(fields.get("files")),
		Checksums:   parseChecksums(fields.get("checksums")),
	}

	for _, key := range fields.order {
		if !knownKeys[key] {
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[key] = fields.values[key]
		}
	}

	return r, nil
}

var knownKeys = map[string]bool{
	"name": true, "version": true, "type": true, "description": true,
	"base_url": true, "repo": true, "author": true, "license": true,
	"wiki": true, "requires": true, "tags": true, "files": true,
	"checksums": true,
}

// fieldSet keeps raw values with first-seen key order. A repeated key
// overwrites the earlier value.
type fieldSet struct {
	values map[string]string
	order  []string
}

func (f *fieldSet) get(key string) string { return f.values[key] }

func (f *fieldSet) set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.order = append(f.order, key)
	}
	f.values[key] = value
}

func scanFields(text, source string) (*fieldSet, error) {
	fields := &fieldSet{values: make(map[string]string)}
	lastKey := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if raw[0] == ' ' || raw[0] == '\t' {
			if lastKey == "" {
				return nil, &ParseError{Source: source, Line: lineNo, Msg: "continuation line without a preceding key"}
			}
			fields.values[lastKey] += "\n" + trimmed
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return nil, &ParseError{Source: source, Line: lineNo, Msg: fmt.Sprintf("expected key=value, got %q", trimmed)}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &ParseError{Source: source, Line: lineNo, Msg: "empty key"}
		}
		fields.set(key, strings.TrimSpace(value))
		lastKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Source: source, Msg: err.Error()}
	}
	return fields, nil
}

// splitList splits a comma-separated value, trimming items and dropping empties.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseTags lower-cases and deduplicates the tags= list.
func parseTags(value string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, t := range splitList(value) {
		t = strings.ToLower(t)
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// parseFiles parses files=name:role,... A missing role defaults to generic.
func parseFiles(value string) []FileSpec {
	var specs []FileSpec
	for _, item := range splitList(value) {
		name, role, ok := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r := RoleGeneric
		if ok {
			if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
				r = Role(role)
			}
		}
		specs = append(specs, FileSpec{Name: name, Role: r})
	}
	return specs
}

// parseChecksums keeps empty positions so that pairing with files= stays
// aligned. An algorithm prefix is stripped.
func parseChecksums(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	items := strings.Split(value, ",")
	sums := make([]string, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		item = strings.TrimPrefix(item, checksumPrefix)
		sums[i] = strings.ToLower(item)
	}
	return sums
}
