package meta

import (
	"strings"
	"testing"
)

func TestValidate_Valid(t *testing.T) {
	r, err := Parse(sampleMetaValid)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	result, err := Validate(r)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid, got issues: %v", result.Issues)
	}
}

const sampleMetaValid = `name=demo
version=1.0.0
tags=hook,python
files=on-add_demo.py:hook,demo.rc:config
checksums=sha256:` + "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" + `
`

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		path    string
	}{
		{"unknown role", "name=demo\nfiles=a.py:plugin\n", "enum", "/files/0/role"},
		{"bad checksum", "name=demo\nfiles=a.py:hook\nchecksums=xyz\n", "pattern", "/checksums/0"},
		{"uppercase name", "name=Demo\n", "pattern", "/name"},
		{"path in filename", "name=demo\nfiles=../evil:hook\n", "pattern", "/files/0/name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			result, err := Validate(r)
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if result.Valid {
				t.Fatal("expected invalid result")
			}
			found := false
			for _, issue := range result.Issues {
				if issue.Keyword == tt.keyword && issue.Path == tt.path {
					found = true
				}
			}
			if !found {
				var got []string
				for _, issue := range result.Issues {
					got = append(got, issue.Keyword+"@"+issue.Path)
				}
				t.Errorf("no %s issue at %s, got %s", tt.keyword, tt.path, strings.Join(got, ", "))
			}
		})
	}
}

func TestValidationIssueString(t *testing.T) {
	r, err := Parse("name=demo\nfiles=on-add_demo.py:hook,demo.rc:plugin\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	result, err := Validate(r)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("got %d issues, want 1: %v", len(result.Issues), result.Issues)
	}
	issue := result.Issues[0]
	if issue.Key != "files" || issue.Entry != "demo.rc:plugin" || issue.Field != "role" {
		t.Errorf("issue = %+v", issue)
	}
	if got := issue.String(); !strings.HasPrefix(got, `files "demo.rc:plugin" role: `) {
		t.Errorf("String() = %q", got)
	}
}
