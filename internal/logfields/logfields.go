package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID       = "build_id"
	KeyTarget        = "target"
	KeyProfile       = "profile"
	KeyStage         = "stage"
	KeyDurationMS    = "duration_ms"
	KeyWorkspaceRoot = "workspace_root"
	KeyTargetDir     = "target_dir"
	KeySource        = "source"
	KeyPath          = "path"
	KeyCommand       = "command"
	KeyAddr          = "addr"
	KeyMethod        = "method"
	KeyStatus        = "status"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr         { return slog.String(KeyBuildID, id) }
func Target(name string) slog.Attr        { return slog.String(KeyTarget, name) }
func Profile(p string) slog.Attr          { return slog.String(KeyProfile, p) }
func Stage(name string) slog.Attr         { return slog.String(KeyStage, name) }
func WorkspaceRoot(dir string) slog.Attr  { return slog.String(KeyWorkspaceRoot, dir) }
func TargetDir(dir string) slog.Attr      { return slog.String(KeyTargetDir, dir) }
func Source(s string) slog.Attr           { return slog.String(KeySource, s) }
func Path(p string) slog.Attr             { return slog.String(KeyPath, p) }
func Command(cmd string) slog.Attr        { return slog.String(KeyCommand, cmd) }
func Addr(addr string) slog.Attr          { return slog.String(KeyAddr, addr) }
func Method(m string) slog.Attr           { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr           { return slog.Int(KeyStatus, code) }
func Duration(d time.Duration) slog.Attr  { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
