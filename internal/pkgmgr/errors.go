package pkgmgr

import (
	"errors"
	"fmt"

	"github.com/awesome-taskwarrior/tw/internal/installer"
)

var (
	// ErrAlreadyInstalled is returned by Install when the Manifest already
	// tracks the package. Nothing is changed.
	ErrAlreadyInstalled = errors.New("already installed")

	// ErrNotInstalled is returned by operations that need an installed
	// package.
	ErrNotInstalled = errors.New("not installed")

	// ErrVerificationFailed is returned by Verify when a file is missing
	// or its checksum does not match.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrNothingDelivered is returned when an installer exits successfully
	// but none of the declared files can be found afterwards.
	ErrNothingDelivered = errors.New("installer delivered none of the declared files")
)

// InstallerError reports an installer run that failed.
type InstallerError struct {
	App  string
	Verb installer.Verb
	Err  error
}

func (e *InstallerError) Error() string {
	return fmt.Sprintf("%s of %s failed: %v", e.Verb, e.App, e.Err)
}

func (e *InstallerError) Unwrap() error {
	return e.Err
}
