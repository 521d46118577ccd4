package cli

import (
	"fmt"
	"time"

	"github.com/awesome-taskwarrior/tw/internal/branding"
	"github.com/awesome-taskwarrior/tw/internal/catalog"
	"github.com/awesome-taskwarrior/tw/internal/config"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	registryCmd.AddCommand(registrySyncCmd)
	rootCmd.AddCommand(registryCmd)
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Show which catalog is in use",
	Long: `Show the detected catalog. A local registry checkout (a directory with
registry.d/) is used when --registry or registry_dir names one, when tw
runs from inside one, or when 'registry sync' has created ~/.tw/registry/.
Otherwise packages come from the remote registry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := current.source()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mode:     %s\n", src.Mode())
		fmt.Fprintf(out, "Location: %s\n", src.Describe())
		if local, ok := src.(*registry.Local); ok {
			helper := local.HelperScript()
			if helper == "" {
				helper = "(none)"
			}
			fmt.Fprintf(out, "Helper:   %s\n", helper)
			if catalog.IsGitCheckout(local.Root()) {
				printFreshness(cmd, local.Root())
			}
		}

		names, err := src.ListAvailable(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing %s: %w", src.Describe(), err)
		}
		fmt.Fprintf(out, "Packages: %d\n", len(names))
		return nil
	},
}

var registrySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone or pull the local registry checkout",
	Long: `Bring the local registry checkout up to date with git.

If a local checkout is in use it is pulled. Otherwise the registry
repository is cloned into ~/.tw/registry/, which tw then uses in place of
the remote registry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := current.source()
		if err != nil {
			return err
		}
		dir := config.ManagedRegistryDir()
		if local, ok := src.(*registry.Local); ok {
			dir = local.Root()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Syncing registry at %s...\n", dir)
		res, err := catalog.Sync(cmd.Context(), dir, current.cfg.RepoURL)
		if err != nil {
			return err
		}
		verb := "Updated"
		if res.Cloned {
			verb = "Cloned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s registry at %s\n", verb, res.Dir)
		return nil
	},
}

func printFreshness(cmd *cobra.Command, dir string) {
	last := catalog.ReadFreshnessMarker(dir)
	if last.IsZero() {
		fmt.Fprintln(cmd.OutOrStdout(), "Synced:   never")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Synced:   %s\n", last.Format(time.RFC3339))
	if catalog.IsStale(dir, catalog.DefaultMaxAge) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Registry is more than 7 days old. Run '%s registry sync'.\n", branding.CLIName())
	}
}
