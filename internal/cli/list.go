package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/awesome-taskwarrior/tw/internal/tagfilter"
	"github.com/spf13/cobra"
)

var (
	listInstalled bool
	listJSON      bool
)

var listCmd = &cobra.Command{
	Use:   "list [tags...]",
	Short: "List catalog packages",
	Long: `List the packages in the catalog with their installation state.

Tags narrow the listing: +tag or a bare word requires the tag, -tag
excludes it. Comma-separated lists are accepted. Put -- before the tags
so exclusions are not read as flags.

  tw list hook
  tw list -- +python -deprecated
  tw list --installed`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "List installed packages from the manifest only")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	if listInstalled {
		if len(args) > 0 {
			return fmt.Errorf("tag filters cannot be combined with --installed")
		}
		return listInstalledApps(cmd, mgr)
	}

	filter, err := tagfilter.Parse(args)
	if err != nil {
		return err
	}
	listings, err := mgr.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if listJSON {
		return printJSON(cmd, listings)
	}

	for _, l := range listings {
		if l.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", l.Name, l.Err)
		}
	}

	out := cmd.OutOrStdout()
	if countReadable(listings) == 0 {
		msg := "No packages found"
		if !filter.Empty() {
			msg += fmt.Sprintf(" matching %s", filter)
		}
		fmt.Fprintln(out, msg)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tSTATUS\tDESCRIPTION")
	for _, l := range listings {
		if l.Err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Name, orDash(l.Version), listingStatus(l), truncate(l.Description, 60))
	}
	return w.Flush()
}

func listInstalledApps(cmd *cobra.Command, mgr *pkgmgr.Manager) error {
	apps, err := mgr.Installed()
	if err != nil {
		return err
	}
	if listJSON {
		return printJSON(cmd, apps)
	}
	if len(apps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No packages installed yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tFILES")
	for _, a := range apps {
		fmt.Fprintf(w, "%s\t%s\t%d\n", a.Name, orDash(a.Version), a.Files)
	}
	return w.Flush()
}

// listingStatus renders installation state and version skew.
func listingStatus(l pkgmgr.Listing) string {
	if !l.Installed {
		return "available"
	}
	if skew := l.Skew.String(); skew != "" {
		return fmt.Sprintf("installed %s (%s)", orDash(l.InstalledVersion), skew)
	}
	return "installed"
}

func countReadable(listings []pkgmgr.Listing) int {
	n := 0
	for _, l := range listings {
		if l.Err == nil {
			n++
		}
	}
	return n
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
