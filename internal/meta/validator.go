package meta

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaName = "meta.schema.json"

//go:embed schema/meta.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation, located by metadata key.
type ValidationIssue struct {
	// Key is the metadata key at fault, e.g. "files". Empty for record-wide
	// problems.
	Key string
	// Entry names the offending list element, e.g. the file name for a bad
	// files= entry. Empty for scalar keys.
	Entry   string
	Field   string // "name" or "role" inside a files= entry
	Message string
	Keyword string
	Path    string // JSON pointer into the record, e.g. "/files/0/role"
}

func (i ValidationIssue) String() string {
	var b strings.Builder
	if i.Key != "" {
		b.WriteString(i.Key)
		if i.Entry != "" {
			fmt.Fprintf(&b, " %q", i.Entry)
		}
		if i.Field != "" {
			b.WriteString(" " + i.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("decoding metadata schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaName, doc); err != nil {
			compileErr = fmt.Errorf("registering metadata schema: %w", err)
			return
		}
		if compiledSchema, err = c.Compile(schemaName); err != nil {
			compileErr = fmt.Errorf("compiling metadata schema: %w", err)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks a parsed record against the embedded metadata schema.
// The error return is for schema compilation failures; problems with the
// record itself are returned in the ValidationResult.
func Validate(r *Record) (*ValidationResult, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding %s for validation: %w", r.Name, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s for validation: %w", r.Name, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating %s: %w", r.Name, err)
	}

	issues := collectIssues(r, ve, nil)
	if len(issues) == 0 {
		issues = []ValidationIssue{{Message: ve.Error()}}
	}
	return &ValidationResult{Issues: issues}, nil
}

// collectIssues gathers the leaf errors of ve, dropping duplicates that
// several schema branches report for the same value.
func collectIssues(r *Record, ve *jsonschema.ValidationError, issues []ValidationIssue) []ValidationIssue {
	for _, cause := range ve.Causes {
		issues = collectIssues(r, cause, issues)
	}
	if len(ve.Causes) > 0 || ve.ErrorKind == nil {
		return issues
	}

	kwPath := ve.ErrorKind.KeywordPath()
	if len(kwPath) == 0 {
		return issues
	}
	issue := ValidationIssue{
		Keyword: kwPath[len(kwPath)-1],
		Message: ve.ErrorKind.LocalizedString(printer),
	}
	if issue.Keyword == "allOf" || issue.Keyword == "$ref" {
		return issues
	}
	if loc := ve.InstanceLocation; len(loc) > 0 {
		issue.Path = "/" + strings.Join(loc, "/")
		issue.Key = loc[0]
		if len(loc) > 1 {
			issue.Entry = entryName(r, loc[0], loc[1])
		}
		if len(loc) > 2 {
			issue.Field = loc[2]
		}
	}

	for _, seen := range issues {
		if seen.Path == issue.Path && seen.Keyword == issue.Keyword && seen.Message == issue.Message {
			return issues
		}
	}
	return append(issues, issue)
}

// entryName returns the text of list element idx under key as it appears
// in the metadata file.
func entryName(r *Record, key, idx string) string {
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return idx
	}
	switch key {
	case "files":
		if i < len(r.FileSpecs) {
			return r.FileSpecs[i].Name + ":" + string(r.FileSpecs[i].Role)
		}
	case "checksums":
		if i < len(r.Checksums) {
			return r.Checksums[i]
		}
	case "tags":
		if i < len(r.Tags) {
			return r.Tags[i]
		}
	case "requires":
		if i < len(r.Requires) {
			return r.Requires[i]
		}
	}
	return idx
}
