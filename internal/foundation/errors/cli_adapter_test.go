package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"config error", ConfigError("conflicting flags").Build(), 7},
		{"template error", TemplateError("bad css").Build(), 2},
		{"resolution error", ResolutionError("metadata failed").Build(), 8},
		{"toolchain error", ToolchainError("cargo failed").Build(), 11},
		{"artifact missing", ArtifactMissingError("no binary").Build(), 11},
		{"post process", PostProcessError("bindgen").Build(), 11},
		{"server error", ServerError("listen").Build(), 12},
		{"unclassified error", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	t.Run("toolchain errors carry no extra diagnostics", func(t *testing.T) {
		err := WrapError(errors.New("exit status 101"), CategoryToolchain, "build failed due to cargo error").Build()
		if got := adapter.FormatError(err); got != "Error: build failed due to cargo error" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("cause is appended for other categories", func(t *testing.T) {
		err := WrapError(errors.New("exit status 1"), CategoryPostProcess, "wasm-bindgen failed").Build()
		if got := adapter.FormatError(err); got != "Error: wasm-bindgen failed: exit status 1" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("verbose shows the classified form", func(t *testing.T) {
		verbose := NewCLIErrorAdapter(true, slog.Default())
		err := ConfigError("conflicting usage of --profile and --release").Build()
		want := "Error: [config:error] conflicting usage of --profile and --release"
		if got := verbose.FormatError(err); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	code := adapter.Report(PostProcessError("wasm-bindgen failed").WithContext("input", "demo.wasm").Build(), &out)

	if code != 11 {
		t.Errorf("expected exit code 11, got %d", code)
	}
	if out.String() != "Error: wasm-bindgen failed\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if !bytes.Contains(logs.Bytes(), []byte("input=demo.wasm")) {
		t.Errorf("expected fatal error to be logged with context, got %q", logs.String())
	}

	if adapter.Report(nil, &out) != 0 {
		t.Error("expected nil error to report exit code 0")
	}
}
