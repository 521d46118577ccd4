// Package branding provides compile-time identity values for the CLI.
//
// Values come from the embedded branding.yaml so a fork can point the tool
// at its own registry repository without touching code.
package branding

import (
	_ "embed"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	GitHubRepo     string `yaml:"github_repo"`
	RegistryBranch string `yaml:"registry_branch"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is empty.
		defaults = brand{
			CLIName:        "tw",
			DisplayName:    "awesome-taskwarrior",
			Description:    "Package manager for Taskwarrior extensions",
			HomeDir:        ".tw",
			EnvPrefix:      "TW",
			GitHubRepo:     "linuxcaffe/awesome-taskwarrior",
			RegistryBranch: "main",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "tw").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME holding tw's own config.
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "TW").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// DefaultListURL returns the listing endpoint of the default remote registry.
func DefaultListURL() string {
	load()
	return "https://api.github.com/repos/" + defaults.GitHubRepo + "/contents/registry.d?ref=" + defaults.RegistryBranch
}

// DefaultRawURL returns the raw-content base of the default remote registry.
func DefaultRawURL() string {
	load()
	return "https://raw.githubusercontent.com/" + defaults.GitHubRepo + "/" + defaults.RegistryBranch
}

// RepoURL returns the git URL of the default registry repository.
func RepoURL() string {
	load()
	return "https://github.com/" + defaults.GitHubRepo + ".git"
}
