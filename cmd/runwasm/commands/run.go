package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/runwasm/internal/build"
	"git.home.luguber.info/inful/runwasm/internal/cli"
	"git.home.luguber.info/inful/runwasm/internal/config"
	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

// RunCmd implements the default 'run' command.
type RunCmd struct {
	Package           string   `short:"p" help:"Package with the target to run"`
	Example           string   `help:"Example to run"`
	Bin               string   `help:"Binary to run"`
	Release           bool     `short:"r" help:"Build in release mode (same as --profile=release)"`
	Profile           string   `help:"Build with the given cargo profile"`
	Features          []string `short:"F" help:"Comma separated list of features to activate"`
	AllFeatures       bool     `name:"all-features" help:"Activate all available features"`
	NoDefaultFeatures bool     `name:"no-default-features" help:"Do not activate the default feature"`

	BuildOnly  bool          `name:"build-only" help:"Build the bundle without starting the server"`
	Host       string        `help:"Host the server listens on (default localhost)"`
	Port       int           `help:"Port the server listens on (default 8000)"`
	CSS        string        `name:"css" type:"existingfile" help:"Stylesheet file inlined into the host page"`
	Template   string        `type:"existingfile" help:"Custom host page template with {{name}} and {{css}} markers"`
	Watch      bool          `short:"w" help:"Rebuild when sources change and reload the browser"`
	LiveReload bool          `name:"live-reload" help:"Inject a live reload script into served pages"`
	Metrics    bool          `help:"Expose Prometheus metrics on /metrics"`
	Debounce   time.Duration `help:"Quiet period before a watch rebuild (default 300ms)"`

	CargoArgs []string `arg:"" optional:"" name:"cargo-args" help:"Extra arguments passed to cargo build (after --)"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return errors.FileSystemError("cannot determine working directory").WithCause(err).Build()
	}
	req, err := r.request(cfg, root.Env(), cwd)
	if err != nil {
		return err
	}

	resp, err := cli.NewExecutor().ExecuteRun(g.Ctx, req).ToTuple()
	if err != nil {
		return err
	}
	if req.BuildOnly {
		fmt.Printf("Built `%s` into %s\n", resp.Target, resp.BundleDir)
	}
	return nil
}

// request merges flags, environment and config file. Flags win over the
// environment, which wins over the file.
func (r *RunCmd) request(cfg *config.Config, env config.Env, cwd string) (cli.RunRequest, error) {
	cfg.ApplyEnv(env)

	css := cfg.CSS
	if r.CSS != "" {
		data, err := os.ReadFile(r.CSS)
		if err != nil {
			return cli.RunRequest{}, errors.WrapError(err, errors.CategoryConfig, "cannot read stylesheet").
				WithContext("path", r.CSS).
				Build()
		}
		css = string(data)
	}

	req := cli.RunRequest{
		Build: build.Request{
			Package:           r.Package,
			Example:           r.Example,
			Bin:               r.Bin,
			Profile:           r.Profile,
			Release:           r.Release,
			Features:          r.Features,
			AllFeatures:       r.AllFeatures,
			NoDefaultFeatures: r.NoDefaultFeatures,
			ExtraArgs:         r.CargoArgs,
		},
		ManifestDir:  env.ManifestDirOr(cwd),
		Toolchain:    cfg.Toolchain,
		Bindgen:      cfg.Bindgen,
		CSS:          css,
		TemplatePath: firstNonEmpty(r.Template, cfg.Template),
		BuildOnly:    r.BuildOnly,
		Host:         firstNonEmpty(r.Host, cfg.Server.Host),
		Port:         cfg.Server.Port,
		LiveReload:   r.LiveReload || cfg.Server.LiveReload,
		Metrics:      r.Metrics || cfg.Server.Metrics,
		Watch:        r.Watch || cfg.Watch.Enabled,
		Debounce:     cfg.Watch.Debounce,
	}
	if r.Port != 0 {
		req.Port = r.Port
	}
	if r.Debounce != 0 {
		req.Debounce = r.Debounce
	}
	if req.TemplatePath != "" && !filepath.IsAbs(req.TemplatePath) {
		req.TemplatePath = filepath.Join(cwd, req.TemplatePath)
	}
	if req.Port < 1 || req.Port > 65535 {
		return cli.RunRequest{}, errors.ConfigError(fmt.Sprintf("invalid port %d", req.Port)).Build()
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
