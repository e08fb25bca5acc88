package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	dberrors "git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

// Environment variable names.
const (
	EnvCargo       = "CARGO"
	EnvManifestDir = "CARGO_MANIFEST_DIR"
	EnvBindgen     = "WASM_BINDGEN"
	EnvLogLevel    = "RUNWASM_LOG_LEVEL"
)

// Env holds the environment inputs. It is the only place the process
// environment is consulted; everything downstream takes explicit values.
type Env struct {
	Cargo       string
	ManifestDir string
	Bindgen     string
	LogLevel    string
}

// FromEnv collects Env using lookup, usually os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) Env {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	return Env{
		Cargo:       get(EnvCargo),
		ManifestDir: get(EnvManifestDir),
		Bindgen:     get(EnvBindgen),
		LogLevel:    get(EnvLogLevel),
	}
}

// ManifestDirOr returns the manifest directory, or fallback when unset.
func (e Env) ManifestDirOr(fallback string) string {
	if e.ManifestDir != "" {
		return e.ManifestDir
	}
	return fallback
}

// LoadDotEnv loads .env and .env.local from dir into the process environment.
// Variables already set are not overridden. It returns the files that were loaded.
func LoadDotEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, dberrors.WrapError(err, dberrors.CategoryConfig, "failed to load env file").
				WithContext("path", path).
				Build()
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLogLevel maps a level name to slog. Empty input is info; unknown names
// fall back to info and report ok=false.
func ParseLogLevel(raw string) (slog.Level, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return slog.LevelInfo, true
	}
	if raw == "warning" {
		raw = "warn"
	}
	lvl, ok := logLevels[raw]
	if !ok {
		return slog.LevelInfo, false
	}
	return lvl, true
}
