package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/awesome-taskwarrior/tw/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd, configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write tw configuration stored at ~/.tw/config.yaml.

Keys: task_dir, taskrc, registry_dir, remote.list_url, remote.raw_url,
remote.repo_url, shell, debug, verbose, log_level. Each can also be set in
the environment as TW_<KEY>, with dots as underscores.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, key := range config.Keys {
			value, err := config.GetFile(current.configPath, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\n", key, orDash(value))
		}
		return w.Flush()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetFile(current.configPath, key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, current.configPath)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.GetFile(current.configPath, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}
