// Package cli executes runwasm commands. It wires workspace resolution, the
// build service, the dev server and the watcher together and reports outcomes
// as foundation.Result values so embedders get a plain success or failure.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/runwasm/internal/bindgen"
	"git.home.luguber.info/inful/runwasm/internal/build"
	"git.home.luguber.info/inful/runwasm/internal/config"
	"git.home.luguber.info/inful/runwasm/internal/devserver"
	"git.home.luguber.info/inful/runwasm/internal/foundation"
	"git.home.luguber.info/inful/runwasm/internal/hostpage"
	"git.home.luguber.info/inful/runwasm/internal/logfields"
	"git.home.luguber.info/inful/runwasm/internal/metrics"
	"git.home.luguber.info/inful/runwasm/internal/toolchain"
	"git.home.luguber.info/inful/runwasm/internal/watch"
	"git.home.luguber.info/inful/runwasm/internal/workspace"
)

// RunRequest is a fully resolved run invocation. Flags, environment and the
// config file have already been merged by the caller.
type RunRequest struct {
	Build build.Request

	ManifestDir string
	Toolchain   string
	Bindgen     string

	CSS          string
	TemplatePath string

	BuildOnly  bool
	Host       string
	Port       int
	LiveReload bool
	Metrics    bool

	Watch    bool
	Debounce time.Duration
}

// RunResponse describes the initial build and where it is served.
type RunResponse struct {
	BuildID   string
	Target    string
	BundleDir string
	PagePath  string
	URL       string
	Duration  time.Duration
}

type InitRequest struct {
	ConfigPath string
	Force      bool
}

type InitResponse struct {
	ConfigPath string
	Created    bool
}

// Executor runs commands.
type Executor struct {
	runner toolchain.Runner
	stdout io.Writer
}

// NewExecutor returns an executor whose subprocesses inherit the process stdio.
func NewExecutor() *Executor {
	return &Executor{
		runner: toolchain.NewExecRunner(),
		stdout: os.Stdout,
	}
}

// WithRunner replaces the subprocess runner.
func (e *Executor) WithRunner(r toolchain.Runner) *Executor {
	e.runner = r
	return e
}

// WithStdout redirects user-facing console output.
func (e *Executor) WithStdout(w io.Writer) *Executor {
	e.stdout = w
	return e
}

// ExecuteRun builds the requested target and, unless BuildOnly is set, serves
// it until ctx is canceled.
func (e *Executor) ExecuteRun(ctx context.Context, req RunRequest) foundation.Result[RunResponse, error] {
	resp, err := e.run(ctx, req)
	return foundation.FromTuple(resp, err)
}

func (e *Executor) run(ctx context.Context, req RunRequest) (RunResponse, error) {
	// Option and template problems surface before any subprocess runs,
	// including the metadata query.
	if err := req.Build.Validate(); err != nil {
		return RunResponse{}, err
	}
	page, err := loadPage(req.TemplatePath, req.CSS)
	if err != nil {
		return RunResponse{}, err
	}

	var (
		recorder       metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if req.Metrics {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	resolver := workspace.NewResolver(req.Toolchain, req.ManifestDir, e.runner).
		OnResolved(func(s workspace.Source) { recorder.IncResolution(string(s)) })
	loc, err := resolver.Resolve(ctx)
	if err != nil {
		return RunResponse{}, err
	}

	svc := build.NewService(req.Toolchain, e.runner, bindgen.New(req.Bindgen, e.runner), page).
		WithRecorder(recorder)
	res, err := svc.Run(ctx, loc, req.Build)
	if err != nil {
		return RunResponse{}, err
	}

	resp := RunResponse{
		BuildID:   res.BuildID,
		Target:    res.Target,
		BundleDir: res.BundleDir,
		PagePath:  res.PagePath,
		Duration:  res.Duration,
	}
	if req.BuildOnly {
		return resp, nil
	}

	srv := devserver.New(devserver.Options{
		Dir:        res.BundleDir,
		Host:       req.Host,
		Port:       req.Port,
		LiveReload: req.LiveReload || req.Watch,
		Metrics:    metricsHandler,
		Recorder:   recorder,
	})
	srv.Reload(res.BuildID)
	resp.URL = srv.URL()

	if req.Watch {
		w := watch.New(watch.Options{
			Root:     loc.Root,
			Exclude:  []string{loc.TargetDir},
			Debounce: req.Debounce,
		}, func(ctx context.Context) {
			rebuilt, err := svc.Run(ctx, loc, req.Build)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("Rebuild failed", logfields.Target(req.Build.TargetName()), logfields.Error(err))
				}
				return
			}
			srv.Reload(rebuilt.BuildID)
		})
		if err := w.Start(ctx); err != nil {
			return resp, err
		}
	}

	_, _ = fmt.Fprintf(e.stdout, "\nServing `%s` on %s\n", res.Target, resp.URL)
	if err := srv.Run(ctx); err != nil {
		return resp, err
	}
	return resp, nil
}

func loadPage(templatePath, css string) (*hostpage.Page, error) {
	if templatePath != "" {
		return hostpage.NewFromFile(templatePath, css)
	}
	return hostpage.New("", css)
}

// ExecuteInit writes a sample configuration file.
func (e *Executor) ExecuteInit(_ context.Context, req InitRequest) foundation.Result[InitResponse, error] {
	slog.Info("Initializing configuration", logfields.Path(req.ConfigPath), slog.Bool("force", req.Force))
	if err := config.Init(req.ConfigPath, req.Force); err != nil {
		return foundation.Err[InitResponse](err)
	}
	return foundation.Ok[InitResponse, error](InitResponse{ConfigPath: req.ConfigPath, Created: true})
}

// ExecuteTemplate prints the built-in host page template.
func (e *Executor) ExecuteTemplate(_ context.Context) foundation.Result[int, error] {
	n, err := io.WriteString(e.stdout, hostpage.DefaultTemplate())
	return foundation.FromTuple(n, err)
}
