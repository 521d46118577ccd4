package cli

import (
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/doctor"
	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	doctorFix     bool
	doctorOffline bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing install directories")
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "Skip the registry check")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the tw installation",
	Long: `Run diagnostic checks: the task and installer shell binaries, the install
directories, the rc file, the manifest and the catalog.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		layout, err := s.layout()
		if err != nil {
			return err
		}
		taskRC, err := s.taskRC()
		if err != nil {
			return err
		}

		opts := doctor.Options{
			Layout:   layout,
			Manifest: manifest.New(layout.ManifestPath),
			TaskRC:   taskRC,
			Shell:    s.cfg.Shell,
			Fix:      doctorFix,
		}
		if !doctorOffline {
			if opts.Source, err = s.source(); err != nil {
				return err
			}
		}

		rep := doctor.Run(cmd.Context(), cmd.OutOrStdout(), opts)
		if !rep.OK() {
			return fmt.Errorf("doctor found %d problem(s)", rep.Problems)
		}
		return nil
	},
}
