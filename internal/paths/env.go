package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kelseyhightower/envconfig"
)

// Installer environment variable names.
const (
	EnvInstallDir = "INSTALL_DIR"
	EnvHooksDir   = "HOOKS_DIR"
	EnvScriptsDir = "SCRIPTS_DIR"
	EnvConfigDir  = "CONFIG_DIR"
	EnvDocsDir    = "DOCS_DIR"
	EnvLogsDir    = "LOGS_DIR"
	EnvTaskRC     = "TASKRC"
	EnvCommon     = "TW_COMMON"
	EnvDebug      = "TW_DEBUG"
)

// ToolEnv is the part of the process environment that describes the
// tracked tool itself.
type ToolEnv struct {
	TaskRC string `envconfig:"TASKRC"`
}

// LoadToolEnv reads ToolEnv from the environment. An unset TASKRC falls
// back to ~/.taskrc.
func LoadToolEnv() (ToolEnv, error) {
	var env ToolEnv
	if err := envconfig.Process("", &env); err != nil {
		return ToolEnv{}, fmt.Errorf("reading tool environment: %w", err)
	}
	if env.TaskRC == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ToolEnv{}, fmt.Errorf("resolving home directory: %w", err)
		}
		env.TaskRC = filepath.Join(home, ".taskrc")
	}
	return env, nil
}

// InstallerOptions are the values of the installer environment that do
// not come from the layout.
type InstallerOptions struct {
	TaskRC string
	// Helper is the shared helper script path; empty in remote mode.
	Helper string
	Debug  bool
}

// InstallerEnv returns the contract variables passed to an installer,
// sorted by name.
func (l Layout) InstallerEnv(opts InstallerOptions) []string {
	vars := map[string]string{
		EnvInstallDir: l.Root,
		EnvHooksDir:   l.Hooks,
		EnvScriptsDir: l.Scripts,
		EnvConfigDir:  l.Config,
		EnvDocsDir:    l.Docs,
		EnvLogsDir:    l.Logs,
		EnvTaskRC:     opts.TaskRC,
	}
	if opts.Helper != "" {
		vars[EnvCommon] = opts.Helper
	}
	if opts.Debug {
		vars[EnvDebug] = "1"
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
