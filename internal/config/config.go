package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood in the config file. Each is also read from the
// environment as TW_<KEY> (dots replaced by underscores).
const (
	KeyTaskDir       = "task_dir"
	KeyTaskRC        = "taskrc"
	KeyRegistryDir   = "registry_dir"
	KeyRemoteListURL = "remote.list_url"
	KeyRemoteRawURL  = "remote.raw_url"
	KeyRepoURL       = "remote.repo_url"
	KeyShell         = "shell"
	KeyDebug         = "debug"
	KeyVerbose       = "verbose"
	KeyLogLevel      = "log_level"
)

// Keys lists every key in the order "config list" prints them.
var Keys = []string{
	KeyTaskDir, KeyTaskRC, KeyRegistryDir,
	KeyRemoteListURL, KeyRemoteRawURL, KeyRepoURL,
	KeyShell, KeyDebug, KeyVerbose, KeyLogLevel,
}

// Known reports whether key is a recognized config key.
func Known(key string) bool {
	return slices.Contains(Keys, key)
}

// Config is the resolved configuration for one process run.
type Config struct {
	// TaskDir is the install root (INSTALL_DIR), normally ~/.task.
	TaskDir string
	// TaskRC overrides the tracked tool's rc file path. Empty means
	// resolve from TASKRC or fall back to ~/.taskrc.
	TaskRC string
	// RegistryDir is a local registry checkout. Empty means probe next to
	// the executable.
	RegistryDir   string
	RemoteListURL string
	RemoteRawURL  string
	// RepoURL is cloned by registry sync when no checkout exists yet.
	RepoURL string
	// Shell runs installers that are not executable themselves.
	Shell    string
	Debug    bool
	Verbose  bool
	LogLevel string
}

// Dir returns the path to the tw config directory (~/.tw/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.tw/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// ManagedRegistryDir returns where registry sync keeps its own checkout
// (~/.tw/registry/).
func ManagedRegistryDir() string {
	return filepath.Join(Dir(), "registry")
}

// newViper returns a viper instance bound to path and the TW_ environment.
// A fresh instance per call keeps differing configurations independent.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault(KeyTaskDir, filepath.Join(home, ".task"))
	v.SetDefault(KeyRemoteListURL, branding.DefaultListURL())
	v.SetDefault(KeyRemoteRawURL, branding.DefaultRawURL())
	v.SetDefault(KeyRepoURL, branding.RepoURL())
	v.SetDefault(KeyShell, "bash")
	v.SetDefault(KeyLogLevel, "warn")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return v, nil
}

// LoadFile resolves the configuration from the given file and the environment.
// A missing file is not an error.
func LoadFile(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}

	return Config{
		TaskDir:       ExpandHome(v.GetString(KeyTaskDir)),
		TaskRC:        ExpandHome(v.GetString(KeyTaskRC)),
		RegistryDir:   ExpandHome(v.GetString(KeyRegistryDir)),
		RemoteListURL: v.GetString(KeyRemoteListURL),
		RemoteRawURL:  v.GetString(KeyRemoteRawURL),
		RepoURL:       v.GetString(KeyRepoURL),
		Shell:         v.GetString(KeyShell),
		Debug:         v.GetBool(KeyDebug),
		Verbose:       v.GetBool(KeyVerbose),
		LogLevel:      v.GetString(KeyLogLevel),
	}, nil
}

// GetFile returns a config value by key from the file at path, the
// environment or the defaults.
func GetFile(path, key string) (string, error) {
	if !Known(key) {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	v, err := newViper(path)
	if err != nil {
		return "", err
	}
	return v.GetString(key), nil
}

// SetFile writes a key-value pair into the config file at path. Unknown
// keys are rejected.
func SetFile(path, key, value string) error {
	if !Known(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v, err := newViper(path)
	if err != nil {
		return err
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
