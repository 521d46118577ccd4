// Package tagfilter implements the include/exclude tag predicate used by
// list. An empty filter matches every package.
package tagfilter

import (
	"fmt"
	"sort"
	"strings"
)

// Filter holds disjoint include and exclude token sets.
type Filter struct {
	include map[string]bool
	exclude map[string]bool
}

// ConflictError reports a tag that was both included and excluded.
type ConflictError struct {
	Tag string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("tag %q is both included and excluded", e.Tag)
}

// Parse builds a Filter from command-line tokens. "+tag" and bare "tag"
// include, "-tag" excludes. A token may hold several comma-separated tags.
func Parse(tokens []string) (Filter, error) {
	f := Filter{include: map[string]bool{}, exclude: map[string]bool{}}
	for _, token := range tokens {
		for _, raw := range strings.Split(token, ",") {
			tag := strings.ToLower(strings.TrimSpace(raw))
			target := f.include
			switch {
			case strings.HasPrefix(tag, "+"):
				tag = tag[1:]
			case strings.HasPrefix(tag, "-"):
				tag = tag[1:]
				target = f.exclude
			}
			if tag == "" {
				continue
			}
			target[tag] = true
		}
	}
	for tag := range f.include {
		if f.exclude[tag] {
			return Filter{}, &ConflictError{Tag: tag}
		}
	}
	return f, nil
}

// Empty reports whether the filter has no tokens.
func (f Filter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

// Matches reports whether a package with tags passes the filter: every
// include token present, no exclude token present.
func (f Filter) Matches(tags []string) bool {
	if f.Empty() {
		return true
	}
	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[strings.ToLower(t)] = true
	}
	for tag := range f.include {
		if !have[tag] {
			return false
		}
	}
	for tag := range f.exclude {
		if have[tag] {
			return false
		}
	}
	return true
}

// Include returns the sorted include tokens.
func (f Filter) Include() []string { return sortedKeys(f.include) }

// Exclude returns the sorted exclude tokens.
func (f Filter) Exclude() []string { return sortedKeys(f.exclude) }

// String renders the filter canonically, e.g. "+hook +python -deprecated".
func (f Filter) String() string {
	var parts []string
	for _, tag := range f.Include() {
		parts = append(parts, "+"+tag)
	}
	for _, tag := range f.Exclude() {
		parts = append(parts, "-"+tag)
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
