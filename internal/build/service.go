package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
	"git.home.luguber.info/inful/runwasm/internal/logfields"
	"git.home.luguber.info/inful/runwasm/internal/metrics"
	"git.home.luguber.info/inful/runwasm/internal/observability"
	"git.home.luguber.info/inful/runwasm/internal/toolchain"
	"git.home.luguber.info/inful/runwasm/internal/workspace"
)

// Stage names used for logging and metrics.
const (
	StageCompile  = "compile"
	StageVerify   = "verify"
	StageBundle   = "bundle"
	StageBindgen  = "bindgen"
	StageHostPage = "hostpage"
)

// PostProcessor turns a compiled wasm binary into browser loadable files in outDir.
type PostProcessor interface {
	Generate(ctx context.Context, input, outDir string) error
}

// PageWriter writes the host page for a target into a bundle directory.
type PageWriter interface {
	WriteFile(dir, name string) (string, error)
}

// Result describes a finished build.
type Result struct {
	BuildID   string
	Target    string
	Artifact  string
	BundleDir string
	PagePath  string
	Duration  time.Duration
}

// Service runs builds. It is safe to reuse across builds but not for
// concurrent builds of the same target.
type Service struct {
	cargo    string
	runner   toolchain.Runner
	post     PostProcessor
	page     PageWriter
	recorder metrics.Recorder
	newID    func() string
}

// NewService wires a build service. An empty cargo selects "cargo".
func NewService(cargo string, runner toolchain.Runner, post PostProcessor, page PageWriter) *Service {
	if cargo == "" {
		cargo = "cargo"
	}
	return &Service{
		cargo:    cargo,
		runner:   runner,
		post:     post,
		page:     page,
		recorder: metrics.NoopRecorder{},
		newID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Run validates req, compiles it and assembles the bundle under loc.TargetDir.
func (s *Service) Run(ctx context.Context, loc workspace.Location, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	name := req.TargetName()
	result := &Result{
		BuildID:   s.newID(),
		Target:    name,
		Artifact:  ArtifactPath(loc.TargetDir, req),
		BundleDir: BundleDir(loc.TargetDir, name),
	}

	ctx = observability.WithBuildID(ctx, result.BuildID)
	ctx = observability.WithTarget(ctx, name)
	observability.InfoContext(ctx, "Starting build",
		logfields.Profile(ProfileDirName(req.EffectiveProfile())),
		logfields.WorkspaceRoot(loc.Root))

	err := s.run(ctx, loc, req, result)
	result.Duration = time.Since(start)
	s.recorder.ObserveBuildDuration(result.Duration)

	switch {
	case err == nil:
		s.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		observability.InfoContext(ctx, "Build finished",
			logfields.Path(result.PagePath),
			logfields.Duration(result.Duration))
		return result, nil
	case ctx.Err() != nil:
		s.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
	default:
		s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
	return result, err
}

func (s *Service) run(ctx context.Context, loc workspace.Location, req Request, result *Result) error {
	if err := s.stage(ctx, StageCompile, func(ctx context.Context) error {
		return s.compile(ctx, loc, req)
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, StageVerify, func(context.Context) error {
		return verifyArtifact(result.Artifact)
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, StageBundle, func(context.Context) error {
		if err := os.MkdirAll(result.BundleDir, 0o750); err != nil {
			return errors.FileSystemError("failed to create bundle directory").WithCause(err).
				WithContext("path", result.BundleDir).
				Build()
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, StageBindgen, func(ctx context.Context) error {
		return s.post.Generate(ctx, result.Artifact, result.BundleDir)
	}); err != nil {
		return err
	}

	return s.stage(ctx, StageHostPage, func(context.Context) error {
		path, err := s.page.WriteFile(result.BundleDir, result.Target)
		result.PagePath = path
		return err
	})
}

func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, name)
	observability.DebugContext(ctx, "Stage started")

	err := fn(ctx)
	s.recorder.ObserveStageDuration(name, time.Since(stageStart))
	if err != nil {
		observability.DebugContext(ctx, "Stage failed", slog.String("error", err.Error()))
	}
	return err
}

func (s *Service) compile(ctx context.Context, loc workspace.Location, req Request) error {
	cmd := toolchain.Command{
		Name: s.cargo,
		Args: req.CargoArgs(CrossTargetDir(loc.TargetDir)),
		Dir:  loc.Root,
	}
	observability.InfoContext(ctx, "Compiling", logfields.Command(cmd.String()))

	err := s.runner.Run(ctx, cmd)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// cargo has already printed its own diagnostics.
	var exitErr *toolchain.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.ToolchainError(msgCargoFailed).
			WithCause(err).
			WithContext("exit_code", exitErr.Code).
			Build()
	}
	return errors.ToolchainError("failed to run "+s.cargo+": "+err.Error()).
		WithCause(err).
		WithContext("command", cmd.String()).
		Build()
}

func verifyArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return errArtifactMissing(path)
	}
	return nil
}
