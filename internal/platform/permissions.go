package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// MakeExecutable adds the execute bits to path, keeping its other bits.
func MakeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return Chmod(path, info.Mode().Perm()|0111)
}

// IsExecutable reports whether path is a regular file the current user
// can run directly.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".exe", ".bat", ".cmd":
			return true
		}
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
