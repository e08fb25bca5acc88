// Package toolchain runs the external programs runwasm drives: cargo and wasm-bindgen.
//
// Callers depend on the Runner interface so tests can substitute fakes for the
// real subprocesses.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/runwasm/internal/logfields"
)

// Command describes one subprocess invocation.
type Command struct {
	Name string   // executable name or path
	Args []string // arguments, not including Name
	Dir  string   // working directory; empty means the current directory
	Env  []string // extra KEY=VALUE pairs appended to the process environment
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ExitError reports a command that started and exited with a non-zero status.
// Such commands have already printed their own diagnostics.
type ExitError struct {
	Name string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func wrapErr(name string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: name, Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Runner executes commands.
type Runner interface {
	// Run executes the command with stdout and stderr passed through to the user.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and returns its captured stdout.
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner writing passthrough output to the process streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := r.command(ctx, c)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	slog.Debug("Running command", logfields.Command(c.String()), logfields.Path(c.Dir))
	if err := cmd.Run(); err != nil {
		return wrapErr(c.Name, err)
	}
	return nil
}

// Output implements Runner. Stderr is captured and attached to the error on failure.
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := r.command(ctx, c)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	slog.Debug("Running command", logfields.Command(c.String()), logfields.Path(c.Dir))
	out, err := cmd.Output()
	if err != nil {
		err = wrapErr(c.Name, err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}
