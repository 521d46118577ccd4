package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"uninstall"},
	Short:   "Remove an installed package",
	Long: `Remove a package by running its installer's remove step. When the
catalog no longer has an installer for it, the files recorded in the
manifest are deleted instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	res, err := mgr.Remove(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Fallback {
		fmt.Fprintln(out, "No installer in the catalog; deleted the recorded files.")
	}
	for _, path := range res.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: left %s (outside the install root)\n", path)
	}
	fmt.Fprintf(out, "Removed %s (%d files untracked)\n", res.App, len(res.Purged))
	return nil
}
