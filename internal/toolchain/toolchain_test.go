package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "cargo", Args: []string{"build", "--target", "wasm32-unknown-unknown"}}
	assert.Equal(t, "cargo build --target wasm32-unknown-unknown", c.String())
}

func TestExecRunner_Run(t *testing.T) {
	requireShell(t)
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo err 1>&2"}})
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())

	err = r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "sh exited with status 3", exitErr.Error())

	var execErr *exec.ExitError
	assert.ErrorAs(t, err, &execErr)

	err = r.Run(context.Background(), Command{Name: "runwasm-definitely-missing-binary"})
	require.Error(t, err)
	assert.False(t, errors.As(err, &exitErr), "launch failures are not exit errors")
}

func TestExecRunner_Output(t *testing.T) {
	requireShell(t)
	r := NewExecRunner()
	dir := t.TempDir()

	out, err := r.Output(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd"}, Dir: dir})
	require.NoError(t, err)
	assert.Contains(t, string(out), filepath.Base(dir))

	out, err = r.Output(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo $RUNWASM_TEST"}, Env: []string{"RUNWASM_TEST=yes"}})
	require.NoError(t, err)
	assert.Equal(t, "yes\n", string(out))

	_, err = r.Output(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo broken 1>&2; exit 1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
