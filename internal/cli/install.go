package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/awesome-taskwarrior/tw/internal/branding"
	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/spf13/cobra"
)

var installDryRun bool

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a package from the catalog",
	Long: `Install a package by running its installer with the install directories
in the environment. Every declared file the installer delivers is then
recorded in the manifest with its checksum.

Use --dry-run to see where each file would go without running anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show target paths without installing")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	name := args[0]
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	res, err := mgr.Install(cmd.Context(), name, installDryRun)
	if errors.Is(err, pkgmgr.ErrAlreadyInstalled) {
		return fmt.Errorf("%s is already installed (use '%s update %s')", name, branding.CLIName(), name)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	if res.DryRun {
		fmt.Fprintf(out, "Would install %s v%s from %s\n", res.App, displayVersion(res.Version), mgr.Source().Describe())
		if len(res.Files) == 0 {
			fmt.Fprintln(out, "  (no files declared)")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "  ROLE\tFILE\tTARGET")
		for _, f := range res.Files {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", f.Role, f.Name, f.Target)
		}
		return w.Flush()
	}

	for _, path := range res.Missing {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s was declared but not delivered\n", path)
	}
	fmt.Fprintf(out, "Installed %s v%s (%d files tracked)\n", res.App, displayVersion(res.Version), len(res.Registered))
	return nil
}

func displayVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
