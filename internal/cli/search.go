package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/awesome-taskwarrior/tw/internal/tagfilter"
	"github.com/spf13/cobra"
)

var (
	searchTypeFilter     string
	searchTagFilter      string
	searchRequiresFilter string
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long: `Search the catalog for packages.

The query matches against package names and descriptions (case-insensitive substring).
Use --type to filter by package type, --tag to filter by tags and --requires
to find packages that depend on a given tool.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchTypeFilter, "type", "", "Filter by type (hook, script, config, ...)")
	searchCmd.Flags().StringVar(&searchTagFilter, "tag", "", "Filter by tags (comma-separated, matches any)")
	searchCmd.Flags().StringVar(&searchRequiresFilter, "requires", "", "Filter by dependency (e.g., python3)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	listings, err := mgr.List(cmd.Context(), tagfilter.Filter{})
	if err != nil {
		return err
	}

	// Parse tag filter into a list.
	var filterTags []string
	if searchTagFilter != "" {
		for _, t := range strings.Split(searchTagFilter, ",") {
			tag := strings.TrimSpace(t)
			if tag != "" {
				filterTags = append(filterTags, strings.ToLower(tag))
			}
		}
	}

	entries := []pkgmgr.Listing{}
	for _, l := range listings {
		if l.Err != nil {
			continue
		}
		if !matchesSearch(l, query, searchTypeFilter, filterTags, searchRequiresFilter) {
			continue
		}
		entries = append(entries, l)
	}

	if len(entries) == 0 {
		msg := "No packages found"
		if query != "" {
			msg += fmt.Sprintf(" matching %q", query)
		}
		if searchTypeFilter != "" {
			msg += fmt.Sprintf(" with --type=%s", searchTypeFilter)
		}
		if searchTagFilter != "" {
			msg += fmt.Sprintf(" with --tag=%s", searchTagFilter)
		}
		if searchRequiresFilter != "" {
			msg += fmt.Sprintf(" with --requires=%s", searchRequiresFilter)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}

	if searchJSON {
		return printJSON(cmd, entries)
	}
	return printSearchTable(cmd, entries)
}

// matchesSearch returns true if the package matches all provided filters.
// All filters are AND-combined: the package must match every non-empty filter.
func matchesSearch(l pkgmgr.Listing, query, typeFilter string, filterTags []string, requiresFilter string) bool {
	// Filter by package type (case-insensitive exact match).
	if typeFilter != "" && !strings.EqualFold(l.Type, typeFilter) {
		return false
	}

	// Filter by tags (match any).
	if len(filterTags) > 0 {
		if !matchesAnyTag(l.Tags, filterTags) {
			return false
		}
	}

	// Filter by dependency.
	if requiresFilter != "" {
		if !matchesRequirement(l.Requires, requiresFilter) {
			return false
		}
	}

	// Filter by query (substring match on name or description).
	if query != "" {
		q := strings.ToLower(query)
		if !strings.Contains(strings.ToLower(l.Name), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			return false
		}
	}

	return true
}

// matchesRequirement returns true if any dependency names filter. Version
// constraints such as "taskwarrior>=2.6" are ignored.
func matchesRequirement(requires []string, filter string) bool {
	for _, dep := range requires {
		if strings.EqualFold(requirementName(dep), filter) {
			return true
		}
	}
	return false
}

func requirementName(dep string) string {
	if i := strings.IndexAny(dep, "<>=! "); i >= 0 {
		return dep[:i]
	}
	return dep
}

// matchesAnyTag returns true if any of the package's tags match any of the filter tags.
// Comparison is case-insensitive.
func matchesAnyTag(pkgTags []string, filterTags []string) bool {
	for _, ft := range filterTags {
		for _, pt := range pkgTags {
			if strings.EqualFold(pt, ft) {
				return true
			}
		}
	}
	return false
}

func printSearchTable(cmd *cobra.Command, entries []pkgmgr.Listing) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tVERSION\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", orDash(e.Type), e.Name, orDash(e.Version), truncate(e.Description, 60))
	}
	return w.Flush()
}
