package installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func requireBash(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("installer scripts need a POSIX shell")
	}
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available, skipping")
	}
}

func writeScript(t *testing.T, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.install")
	if err := os.WriteFile(path, []byte(body), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

const echoScript = `#!/usr/bin/env bash
echo "verb=$1 hooks=$HOOKS_DIR"
echo "warn" >&2
`

func TestExecRunner_ShellAndEnv(t *testing.T) {
	requireBash(t)
	// Not executable: the shell must interpret it.
	path := writeScript(t, echoScript, 0644)

	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Shell: "bash", Stdout: &stdout, Stderr: &stderr}
	out, err := r.Run(context.Background(), path, VerbInstall, []string{"HOOKS_DIR=/tmp/hooks"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "verb=install hooks=/tmp/hooks\n"
	if out.Stdout != want {
		t.Errorf("captured stdout = %q, want %q", out.Stdout, want)
	}
	if stdout.String() != want {
		t.Errorf("streamed stdout = %q, want %q", stdout.String(), want)
	}
	if strings.TrimSpace(stderr.String()) != "warn" {
		t.Errorf("streamed stderr = %q, want warn", stderr.String())
	}
	if out.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", out.ExitCode)
	}
}

func TestExecRunner_Direct(t *testing.T) {
	requireBash(t)
	path := writeScript(t, echoScript, 0755)

	out, err := (&ExecRunner{}).Run(context.Background(), path, VerbRemove, []string{"HOOKS_DIR=/h"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Stdout != "verb=remove hooks=/h\n" {
		t.Errorf("stdout = %q", out.Stdout)
	}
}

func TestExecRunner_NonzeroExit(t *testing.T) {
	requireBash(t)
	path := writeScript(t, "echo starting\necho 'no such app' >&2\nexit 3\n", 0644)

	out, err := (&ExecRunner{Shell: "bash"}).Run(context.Background(), path, VerbUpdate, nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != 3 || out.ExitCode != 3 {
		t.Errorf("exit code = %d/%d, want 3", exitErr.Code, out.ExitCode)
	}
	if exitErr.Verb != VerbUpdate {
		t.Errorf("Verb = %q, want update", exitErr.Verb)
	}
	if !strings.HasSuffix(err.Error(), ": no such app") {
		t.Errorf("error message = %q, want stderr tail", err.Error())
	}
}

func TestExecRunner_MissingInstaller(t *testing.T) {
	_, err := (&ExecRunner{Shell: "bash"}).Run(context.Background(), filepath.Join(t.TempDir(), "absent"), VerbInstall, nil)
	if err == nil {
		t.Fatal("expected error for missing installer")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Error("missing installer reported as an exit status")
	}
}

func TestExecRunner_Cancelled(t *testing.T) {
	requireBash(t)
	path := writeScript(t, "sleep 5\n", 0644)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&ExecRunner{Shell: "bash"}).Run(ctx, path, VerbInstall, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "TASKRC=/old", "HOME=/home/u", "TASKRC=/dup"}
	got := mergeEnv(base, []string{"TASKRC=/new", "HOOKS_DIR=/h"})
	want := []string{"PATH=/bin", "HOME=/home/u", "TASKRC=/new", "HOOKS_DIR=/h"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mergeEnv mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeEnv_HelperOnlyWhenSet(t *testing.T) {
	base := []string{"PATH=/bin", "TW_COMMON=/home/u/.task/lib/tw-common.sh"}

	got := mergeEnv(base, []string{"HOOKS_DIR=/h"})
	want := []string{"PATH=/bin", "HOOKS_DIR=/h"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remote env mismatch (-want +got):\n%s", diff)
	}

	got = mergeEnv(base, []string{"TW_COMMON=/repo/lib/tw-common.sh"})
	want = []string{"PATH=/bin", "TW_COMMON=/repo/lib/tw-common.sh"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("local env mismatch (-want +got):\n%s", diff)
	}
}

func TestExecRunner_DropsInheritedHelper(t *testing.T) {
	requireBash(t)
	t.Setenv("TW_COMMON", "/stale/tw-common.sh")
	path := writeScript(t, "#!/usr/bin/env bash\necho \"common=${TW_COMMON:-unset}\"\n", 0644)

	r := &ExecRunner{Shell: "bash"}
	out, err := r.Run(context.Background(), path, VerbInstall, []string{"HOOKS_DIR=/h"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(out.Stdout); got != "common=unset" {
		t.Errorf("installer saw %q, want common=unset", got)
	}
}

func TestExitError_Message(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"no stderr", "", "installer /i install exited with status 1"},
		{"last line", "first\nsecond\n", "installer /i install exited with status 1: second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &ExitError{Path: "/i", Verb: VerbInstall, Code: 1, Stderr: tt.stderr}
			if got := e.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
