package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runwasm/internal/config"
	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("runwasm"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestRunIsDefaultCommand(t *testing.T) {
	cli, kctx := parse(t, "-p", "app", "--example", "demo", "-r", "-F", "webgl,audio", "--", "--locked", "--offline")

	assert.Contains(t, kctx.Command(), "run")
	assert.Equal(t, "app", cli.Run.Package)
	assert.Equal(t, "demo", cli.Run.Example)
	assert.True(t, cli.Run.Release)
	assert.Equal(t, []string{"webgl", "audio"}, cli.Run.Features)
	assert.Equal(t, []string{"--locked", "--offline"}, cli.Run.CargoArgs)
	assert.Equal(t, config.DefaultFile, cli.Config)
}

func TestSubcommands(t *testing.T) {
	cli, kctx := parse(t, "init", "--force")
	assert.Equal(t, "init", kctx.Command())
	assert.True(t, cli.Init.Force)

	_, kctx = parse(t, "template")
	assert.Equal(t, "template", kctx.Command())
}

func TestRequestDefaults(t *testing.T) {
	cmd := &RunCmd{Package: "app"}
	req, err := cmd.request(config.Default(), config.Env{}, "/src/app")
	require.NoError(t, err)

	assert.Equal(t, "/src/app", req.ManifestDir)
	assert.Equal(t, "cargo", req.Toolchain)
	assert.Equal(t, "wasm-bindgen", req.Bindgen)
	assert.Equal(t, "localhost", req.Host)
	assert.Equal(t, 8000, req.Port)
	assert.Equal(t, 300*time.Millisecond, req.Debounce)
	assert.False(t, req.LiveReload)
	assert.Equal(t, "app", req.Build.Package)
}

func TestRequestPrecedence(t *testing.T) {
	cfg := config.Default()
	cfg.Toolchain = "/file/cargo"
	cfg.Bindgen = "/file/wasm-bindgen"
	cfg.CSS = "from-file"
	cfg.Server.Port = 9000
	cfg.Server.Host = "0.0.0.0"

	env := config.Env{Cargo: "/env/cargo", ManifestDir: "/env/crate"}

	cssFile := filepath.Join(t.TempDir(), "style.css")
	require.NoError(t, os.WriteFile(cssFile, []byte("from-flag"), 0o600))

	cmd := &RunCmd{Bin: "tool", Port: 9100, CSS: cssFile, Watch: true}
	req, err := cmd.request(cfg, env, "/cwd")
	require.NoError(t, err)

	assert.Equal(t, "/env/cargo", req.Toolchain)
	assert.Equal(t, "/file/wasm-bindgen", req.Bindgen)
	assert.Equal(t, "/env/crate", req.ManifestDir)
	assert.Equal(t, "from-flag", req.CSS)
	assert.Equal(t, "0.0.0.0", req.Host)
	assert.Equal(t, 9100, req.Port)
	assert.True(t, req.Watch)
}

func TestRequestRelativeTemplate(t *testing.T) {
	cfg := config.Default()
	cfg.Template = "page.html"
	req, err := (&RunCmd{Package: "app"}).request(cfg, config.Env{}, filepath.FromSlash("/src/app"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.FromSlash("/src/app"), "page.html"), req.TemplatePath)
}

func TestRequestInvalidPort(t *testing.T) {
	_, err := (&RunCmd{Package: "app", Port: 70000}).request(config.Default(), config.Env{}, "/cwd")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cli := &CLI{Config: config.DefaultFile}
	t.Chdir(dir)
	cfg, err := cli.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cli.Config = filepath.Join(dir, "custom.yaml")
	_, err = cli.loadConfig()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(cli.Config, []byte("server:\n  port: 8123\n"), 0o600))
	cfg, err = cli.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
}
