package cli

import (
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint <file.meta>...",
	Short: "Check metadata files for errors",
	Long: `Parse each metadata file and validate it against the metadata schema.
Exits nonzero if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		rec, err := meta.ParseFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", path, err)
			continue
		}
		res, err := meta.Validate(rec)
		if err != nil {
			return err
		}
		if res.Valid {
			fmt.Fprintf(out, "%s: ok (%s v%s)\n", path, rec.Name, rec.DisplayVersion())
			continue
		}
		failed++
		fmt.Fprintf(out, "%s: %d issue(s)\n", path, len(res.Issues))
		for _, issue := range res.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d metadata file(s) failed", failed, len(args))
	}
	return nil
}
