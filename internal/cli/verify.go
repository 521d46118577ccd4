package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/spf13/cobra"
)

var verifyJSON bool

var verifyCmd = &cobra.Command{
	Use:   "verify <name>",
	Short: "Check installed files against their checksums",
	Long: `Verify that every file of an installed package is present and matches
the checksum declared in its metadata. Files without a checksum are
reported but do not fail verification.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	res, err := mgr.Verify(cmd.Context(), args[0])
	if res == nil {
		return err
	}
	if verifyJSON {
		data, merr := json.MarshalIndent(res, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out := cmd.OutOrStdout()
	if res.FromManifest {
		fmt.Fprintln(out, "Package not in the catalog; checking recorded checksums.")
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", statusMark(f.Status), f.Name, statusText(f.Status))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	if errors.Is(err, pkgmgr.ErrVerificationFailed) {
		return err
	}
	fmt.Fprintf(out, "%s verified\n", res.App)
	return err
}

func statusMark(s pkgmgr.FileStatus) string {
	switch s {
	case pkgmgr.StatusOK:
		return "✓"
	case pkgmgr.StatusUnverifiable:
		return "?"
	default:
		return "✗"
	}
}

func statusText(s pkgmgr.FileStatus) string {
	switch s {
	case pkgmgr.StatusOK:
		return "OK"
	case pkgmgr.StatusMissing:
		return "MISSING"
	case pkgmgr.StatusMismatch:
		return "CHECKSUM MISMATCH"
	case pkgmgr.StatusUnverifiable:
		return "no checksum"
	default:
		return string(s)
	}
}
