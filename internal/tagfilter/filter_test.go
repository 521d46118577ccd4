package tagfilter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, tokens ...string) Filter {
	t.Helper()
	f, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q): %v", tokens, err)
	}
	return f
}

func TestMatches(t *testing.T) {
	hookNotDeprecated := mustParse(t, "+hook", "-deprecated")

	tests := []struct {
		name   string
		filter Filter
		tags   []string
		want   bool
	}{
		{"include present", hookNotDeprecated, []string{"hook", "python"}, true},
		{"exclude present", hookNotDeprecated, []string{"hook", "deprecated"}, false},
		{"include missing", hookNotDeprecated, []string{"python"}, false},
		{"empty filter", mustParse(t), []string{"anything"}, true},
		{"empty filter no tags", mustParse(t), nil, true},
		{"all includes required", mustParse(t, "hook", "python"), []string{"hook"}, false},
		{"all includes present", mustParse(t, "hook", "python"), []string{"python", "hook", "x"}, true},
		{"exclude only", mustParse(t, "-deprecated"), nil, true},
		{"tag case ignored", mustParse(t, "Hook"), []string{"HOOK"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.tags); got != tt.want {
				t.Errorf("%s.Matches(%q) = %v, want %v", tt.filter, tt.tags, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		tokens      []string
		wantInclude []string
		wantExclude []string
	}{
		{"bare is include", []string{"hook"}, []string{"hook"}, []string{}},
		{"plus and minus", []string{"+hook", "-deprecated"}, []string{"hook"}, []string{"deprecated"}},
		{"comma separated", []string{"+hook,python,-old"}, []string{"hook", "python"}, []string{"old"}},
		{"lowercased and trimmed", []string{" Python ", "-OLD"}, []string{"python"}, []string{"old"}},
		{"empties dropped", []string{"", "+", "-", ",,"}, []string{}, []string{}},
		{"duplicates collapse", []string{"hook", "+hook"}, []string{"hook"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustParse(t, tt.tokens...)
			if diff := cmp.Diff(tt.wantInclude, f.Include()); diff != "" {
				t.Errorf("include mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantExclude, f.Exclude()); diff != "" {
				t.Errorf("exclude mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Conflict(t *testing.T) {
	_, err := Parse([]string{"+hook", "-hook"})
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("Parse error = %v, want *ConflictError", err)
	}
	if ce.Tag != "hook" {
		t.Errorf("conflict tag = %q, want hook", ce.Tag)
	}
}

func TestString(t *testing.T) {
	f := mustParse(t, "-deprecated", "python", "+hook")
	if got, want := f.String(), "+hook +python -deprecated"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := mustParse(t).String(); got != "" {
		t.Errorf("empty String() = %q, want empty", got)
	}
}
