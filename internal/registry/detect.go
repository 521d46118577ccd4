package registry

import (
	"os"
	"path/filepath"

	"github.com/awesome-taskwarrior/tw/internal/config"
)

// Detect picks the catalog for this run. A directory containing
// registry.d/ makes the source local; otherwise the remote catalog from
// cfg is used.
//
// When cfg.RegistryDir is set only that directory is probed. Otherwise the
// directory of the executable and its parent are tried, which covers
// running tw from inside a registry checkout, followed by the checkout kept
// by registry sync.
func Detect(cfg config.Config, opts ...RemoteOption) Source {
	exe, _ := os.Executable()
	if root, ok := LocalRoot(localCandidates(cfg.RegistryDir, exe, config.ManagedRegistryDir())); ok {
		return NewLocal(root)
	}
	return NewRemote(cfg.RemoteListURL, cfg.RemoteRawURL, opts...)
}

// LocalRoot returns the first candidate that holds a registry.d directory.
func LocalRoot(candidates []string) (string, bool) {
	for _, dir := range candidates {
		info, err := os.Stat(filepath.Join(dir, MetaDir))
		if err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

func localCandidates(explicit, exe, managed string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	var dirs []string
	if exe != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir := filepath.Dir(exe)
		dirs = append(dirs, dir, filepath.Dir(dir))
	}
	if managed != "" {
		dirs = append(dirs, managed)
	}
	return dirs
}
