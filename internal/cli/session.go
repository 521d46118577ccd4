package cli

import (
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/config"
	"github.com/awesome-taskwarrior/tw/internal/installer"
	"github.com/awesome-taskwarrior/tw/internal/logging"
	"github.com/awesome-taskwarrior/tw/internal/manifest"
	"github.com/awesome-taskwarrior/tw/internal/paths"
	"github.com/awesome-taskwarrior/tw/internal/pkgmgr"
	"github.com/awesome-taskwarrior/tw/internal/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session is the resolved configuration and logger for one command run.
type session struct {
	cfg        config.Config
	configPath string
	logger     *zap.Logger
}

var current *session

// loadSession resolves configuration from the config file, the environment
// and the global flags, in increasing precedence.
func loadSession(cmd *cobra.Command) error {
	path := flagConfig
	if path == "" {
		path = config.FilePath()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	if flagDebug {
		cfg.Debug = true
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	if flagTaskDir != "" {
		cfg.TaskDir = config.ExpandHome(flagTaskDir)
	}
	if flagRegistry != "" {
		cfg.RegistryDir = config.ExpandHome(flagRegistry)
	}

	current = &session{
		cfg:        cfg,
		configPath: path,
		logger:     logging.NewWithWriter(cfg, cmd.ErrOrStderr()),
	}
	return nil
}

func (s *session) layout() (paths.Layout, error) {
	root := s.cfg.TaskDir
	if root == "" {
		var err error
		if root, err = paths.DefaultRoot(); err != nil {
			return paths.Layout{}, err
		}
	}
	return paths.NewLayout(root), nil
}

func (s *session) taskRC() (string, error) {
	if s.cfg.TaskRC != "" {
		return s.cfg.TaskRC, nil
	}
	env, err := paths.LoadToolEnv()
	if err != nil {
		return "", err
	}
	return env.TaskRC, nil
}

// source picks the catalog. A registry named on the command line must be
// a checkout; it never falls back to the remote catalog.
func (s *session) source() (registry.Source, error) {
	if flagRegistry != "" {
		if _, ok := registry.LocalRoot([]string{s.cfg.RegistryDir}); !ok {
			return nil, fmt.Errorf("%s is not a registry checkout (no %s/ directory)", s.cfg.RegistryDir, registry.MetaDir)
		}
	}
	src := registry.Detect(s.cfg, registry.WithLogger(s.logger))
	s.logger.Debug("registry selected", zap.String("mode", src.Mode().String()), zap.String("location", src.Describe()))
	return src, nil
}

// newManager wires a package manager for cmd from the current session.
func newManager(cmd *cobra.Command) (*pkgmgr.Manager, error) {
	s := current
	layout, err := s.layout()
	if err != nil {
		return nil, err
	}
	taskRC, err := s.taskRC()
	if err != nil {
		return nil, err
	}
	src, err := s.source()
	if err != nil {
		return nil, err
	}

	man := manifest.New(layout.ManifestPath)
	if err := man.Load(); err != nil {
		return nil, err
	}
	for _, issue := range man.Issues() {
		s.logger.Warn("skipping malformed manifest line", zap.Error(issue))
	}

	return pkgmgr.New(pkgmgr.Options{
		Source:   src,
		Manifest: man,
		Layout:   layout,
		Runner: &installer.ExecRunner{
			Shell:  s.cfg.Shell,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
			Logger: s.logger,
		},
		TaskRC: taskRC,
		Debug:  s.cfg.Debug,
		Logger: s.logger,
		Out:    cmd.OutOrStdout(),
	}), nil
}
