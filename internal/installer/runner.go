package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Verb is the action an installer is asked to perform.
type Verb string

const (
	VerbInstall Verb = "install"
	VerbRemove  Verb = "remove"
	VerbUpdate  Verb = "update"
)

// Output captures the result of one installer run.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ExitError reports an installer that ran and exited nonzero.
type ExitError struct {
	Path   string
	Verb   Verb
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("installer %s %s exited with status %d", e.Path, e.Verb, e.Code)
	if last := lastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

// Runner executes an installer program.
type Runner interface {
	// Run invokes the installer at path with verb. env holds KEY=VALUE
	// pairs layered over the current process environment.
	Run(ctx context.Context, path string, verb Verb, env []string) (*Output, error)
}

// ExecRunner runs installers as child processes.
type ExecRunner struct {
	// Shell interprets the installer, as in `bash <installer> <verb>`.
	// Empty runs the installer directly.
	Shell string
	// Stdout and Stderr receive the installer's output as it runs.
	// Nil discards it; it is captured either way.
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, path string, verb Verb, env []string) (*Output, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("installer not found at %s: %w", path, err)
	}

	name, args := path, []string{string(verb)}
	if r.Shell != "" {
		shell, err := exec.LookPath(r.Shell)
		if err != nil {
			return nil, fmt.Errorf("installer shell %q: %w", r.Shell, err)
		}
		name, args = shell, []string{path, string(verb)}
	}

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("running installer",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Strings("env", env),
	)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = mergeEnv(os.Environ(), env)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeTo(&stdoutBuf, r.Stdout)
	cmd.Stderr = teeTo(&stderrBuf, r.Stderr)

	err := cmd.Run()
	out := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			out.ExitCode = exitErr.ExitCode()
			logger.Debug("installer failed", zap.String("verb", string(verb)), zap.Int("exit_code", out.ExitCode))
			return out, &ExitError{Path: path, Verb: verb, Code: out.ExitCode, Stderr: out.Stderr}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("running installer %s %s: %w", path, verb, ctxErr)
		}
		return out, fmt.Errorf("running installer %s %s: %w", path, verb, err)
	}
	return out, nil
}

func teeTo(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// helperEnv names the local helper library. It is only meaningful when
// the caller sets it, so a value exported in the user's shell is never
// inherited.
const helperEnv = "TW_COMMON"

// mergeEnv layers overrides onto base. A key in overrides replaces every
// occurrence of that key in base. helperEnv is dropped from base either way.
func mergeEnv(base, overrides []string) []string {
	keys := make(map[string]bool, len(overrides)+1)
	keys[helperEnv] = true
	for _, kv := range overrides {
		if k, _, ok := strings.Cut(kv, "="); ok {
			keys[k] = true
		}
	}
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		if k, _, ok := strings.Cut(kv, "="); ok && keys[k] {
			continue
		}
		env = append(env, kv)
	}
	return append(env, overrides...)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
