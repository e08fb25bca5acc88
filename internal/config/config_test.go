package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberrors "git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "cargo", cfg.Toolchain)
	assert.Equal(t, "wasm-bindgen", cfg.Bindgen)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.Server.LiveReload)
}

func TestParse(t *testing.T) {
	t.Setenv("RUNWASM_TEST_CARGO", "/opt/cargo")
	cfg, err := Parse([]byte(`
toolchain: ${RUNWASM_TEST_CARGO}
css: "canvas { width: 100%; }"
server:
  host: 0.0.0.0
  port: 9000
  live_reload: true
watch:
  debounce: 1s
`))
	require.NoError(t, err)
	assert.Equal(t, "/opt/cargo", cfg.Toolchain)
	assert.Equal(t, "wasm-bindgen", cfg.Bindgen)
	assert.Equal(t, "canvas { width: 100%; }", cfg.CSS)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.LiveReload)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		category dberrors.ErrorCategory
	}{
		{"bad yaml", "server: [", dberrors.CategoryConfig},
		{"port out of range", "server:\n  port: 70000\n", dberrors.CategoryConfig},
		{"negative debounce", "watch:\n  debounce: -1s\n", dberrors.CategoryConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, dberrors.HasCategory(err, tt.category))
		})
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryConfig))

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Init(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# runwasm configuration")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Server.LiveReload)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
	require.NoError(t, Init(path, true))
}

func TestInitUnwritableDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", DefaultFile)

	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryFileSystem))
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(Env{Bindgen: "/x/wasm-bindgen"})
	assert.Equal(t, "cargo", cfg.Toolchain)
	assert.Equal(t, "/x/wasm-bindgen", cfg.Bindgen)
}

func TestFromEnv(t *testing.T) {
	vars := map[string]string{
		EnvCargo:       " /bin/cargo ",
		EnvManifestDir: "/src/app",
		EnvLogLevel:    "debug",
	}
	env := FromEnv(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	assert.Equal(t, Env{Cargo: "/bin/cargo", ManifestDir: "/src/app", LogLevel: "debug"}, env)
	assert.Equal(t, "/src/app", env.ManifestDirOr("/cwd"))
	assert.Equal(t, "/cwd", Env{}.ManifestDirOr("/cwd"))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("RUNWASM_DOTENV_NEW=from-file\nRUNWASM_DOTENV_SET=from-file\n"), 0o600))
	t.Setenv("RUNWASM_DOTENV_SET", "from-process")
	t.Setenv("RUNWASM_DOTENV_NEW", "")
	require.NoError(t, os.Unsetenv("RUNWASM_DOTENV_NEW"))

	loaded, err := LoadDotEnv(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "from-file", os.Getenv("RUNWASM_DOTENV_NEW"))
	assert.Equal(t, "from-process", os.Getenv("RUNWASM_DOTENV_SET"))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
		ok   bool
	}{
		{"", slog.LevelInfo, true},
		{"DEBUG", slog.LevelDebug, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		lvl, ok := ParseLogLevel(tt.raw)
		assert.Equal(t, tt.want, lvl, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}
