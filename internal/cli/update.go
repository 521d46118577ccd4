package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update an installed package to the catalog version",
	Long: `Update a package with its installer's update step. If that step fails the
package is removed and installed again. If the reinstall fails the package
is left uninstalled.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	res, err := mgr.Update(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, path := range res.Missing {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s was declared but not delivered\n", path)
	}
	how := ""
	if res.Reinstalled {
		how = " by reinstalling"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s -> %s%s\n",
		res.App, displayVersion(res.FromVersion), displayVersion(res.ToVersion), how)
	return nil
}
