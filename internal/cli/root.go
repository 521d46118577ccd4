package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awesome-taskwarrior/tw/internal/branding"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagDebug    bool
	flagVerbose  bool
	flagTaskDir  string
	flagRegistry string
	flagConfig   string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs, updates, verifies and removes Taskwarrior extensions
(hooks, scripts, config fragments and docs) from a catalog of packages.

Each package is described by a .meta file and delivered by an installer
script. Installed files are tracked in ~/.task/.tw_manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSession(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagDebug, "debug", false, "Debug logging; installers run with TW_DEBUG=1")
	pf.BoolVar(&flagVerbose, "verbose", false, "Log progress details")
	pf.StringVar(&flagTaskDir, "task-dir", "", "Install root (default ~/.task)")
	pf.StringVar(&flagRegistry, "registry", "", "Use the local registry checkout at this path")
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.tw/config.yaml)")
}

// Execute runs the root command with build info injected via ldflags.
// Interrupts cancel the running operation. Any error is printed to stderr
// as a single line.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	if current != nil {
		_ = current.logger.Sync()
	}
	return err
}
