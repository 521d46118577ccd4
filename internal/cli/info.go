package cli

import (
	"fmt"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	infoJSON bool
	infoYAML bool
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show package details and installation state",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output in JSON format")
	infoCmd.Flags().BoolVar(&infoYAML, "yaml", false, "Output in YAML format")
	infoCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	info, err := mgr.Info(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	switch {
	case infoJSON:
		return printJSON(cmd, info)
	case infoYAML:
		data, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	printInfo(cmd, args[0], info)
	return nil
}

func printInfo(cmd *cobra.Command, name string, info *pkgmgr.PackageInfo) {
	out := cmd.OutOrStdout()
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "%-13s %s\n", label+":", value)
		}
	}

	if rec := info.Record; rec != nil {
		field("Name", rec.Name)
		field("Version", rec.DisplayVersion())
		field("Type", rec.Type)
		field("Description", rec.Description)
		field("Author", rec.Author)
		field("License", rec.License)
		field("Repository", rec.Repo)
		field("Wiki", rec.Wiki)
		field("Requires", strings.Join(rec.Requires, ", "))
		field("Tags", strings.Join(rec.Tags, ", "))
	} else {
		field("Name", name)
		fmt.Fprintln(out, "Not in the catalog.")
	}

	status := "not installed"
	if info.Installed {
		status = "installed " + orDash(info.InstalledVersion)
		if skew := info.Skew.String(); skew != "" {
			status += " (" + skew + ")"
		}
	}
	field("Status", status)

	if len(info.Files) > 0 {
		fmt.Fprintln(out, "\nTracked files:")
		for _, e := range info.Files {
			fmt.Fprintf(out, "  %s\n", e.Path)
		}
	} else if len(info.Planned) > 0 {
		fmt.Fprintln(out, "\nFiles:")
		for _, f := range info.Planned {
			fmt.Fprintf(out, "  %-8s %s -> %s\n", f.Role, f.Name, f.Target)
		}
	}
}
