package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureDefault(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithBuildID(ctx, "build-123")
	ctx = WithTarget(ctx, "demo")
	ctx = WithStage(ctx, "cargo")

	lc := GetContext(ctx)
	if lc.BuildID != "build-123" || lc.Target != "demo" || lc.Stage != "cargo" {
		t.Errorf("unexpected log context %+v", lc)
	}

	// Later stages replace earlier ones without losing other fields.
	lc = GetContext(WithStage(ctx, "bindgen"))
	if lc.Stage != "bindgen" || lc.BuildID != "build-123" {
		t.Errorf("unexpected log context after stage change %+v", lc)
	}
}

func TestEmptyContext(t *testing.T) {
	if lc := GetContext(context.Background()); lc != (LogContext{}) {
		t.Errorf("expected empty log context, got %+v", lc)
	}
}

func TestInfoContextIncludesAttributes(t *testing.T) {
	buf := captureDefault(t, slog.LevelInfo)

	ctx := WithStage(WithBuildID(context.Background(), "b-1"), "page")
	InfoContext(ctx, "Host page written", slog.String("path", "/tmp/index.html"))

	out := buf.String()
	for _, want := range []string{"build_id=b-1", "stage=page", "path=/tmp/index.html", `msg="Host page written"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestLevels(t *testing.T) {
	buf := captureDefault(t, slog.LevelWarn)
	ctx := context.Background()

	DebugContext(ctx, "debug line")
	InfoContext(ctx, "info line")
	WarnContext(ctx, "warn line")
	ErrorContext(ctx, "error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Errorf("expected warn/error lines, got %q", out)
	}
}
