package workspace

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
	"git.home.luguber.info/inful/runwasm/internal/logfields"
	"git.home.luguber.info/inful/runwasm/internal/toolchain"
)

const (
	// ManifestFile is the project manifest looked for in each ancestor.
	ManifestFile = "Cargo.toml"
	// TargetDirName is cargo's conventional build output directory name.
	TargetDirName = "target"
)

// Source records which strategy produced a Location.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceMetadata  Source = "metadata"
)

// Location is the resolved workspace root and target directory. Both paths are absolute.
type Location struct {
	Root      string
	TargetDir string
	Source    Source
}

// Resolver determines the Location for a manifest directory.
type Resolver struct {
	cargo       string
	manifestDir string
	runner      toolchain.Runner
	onResolved  func(Source)
}

// NewResolver creates a resolver. cargo is the toolchain executable used for the
// metadata query and manifestDir is the directory of the package being built.
func NewResolver(cargo, manifestDir string, runner toolchain.Runner) *Resolver {
	if cargo == "" {
		cargo = "cargo"
	}
	return &Resolver{
		cargo:       cargo,
		manifestDir: manifestDir,
		runner:      runner,
	}
}

// OnResolved registers a callback invoked with the winning strategy.
func (r *Resolver) OnResolved(fn func(Source)) *Resolver {
	r.onResolved = fn
	return r
}

type metadataResult struct {
	loc Location
	err error
}

// Resolve returns the workspace location. The ancestor walk takes priority; the
// metadata query result is used only when the walk finds nothing.
func (r *Resolver) Resolve(ctx context.Context) (Location, error) {
	start := time.Now()
	dir, err := filepath.Abs(r.manifestDir)
	if err != nil {
		return Location{}, errors.WrapError(err, errors.CategoryResolution, "invalid manifest directory").
			WithContext("dir", r.manifestDir).
			Build()
	}

	pending := r.startMetadataQuery(ctx, dir)

	if loc, ok := FindAncestor(dir); ok {
		// The query goroutine is abandoned; its buffered channel lets it finish unobserved.
		r.resolved(loc, start)
		return loc, nil
	}

	select {
	case res := <-pending:
		if res.err != nil {
			return Location{}, res.err
		}
		r.resolved(res.loc, start)
		return res.loc, nil
	case <-ctx.Done():
		return Location{}, errors.WrapError(ctx.Err(), errors.CategoryResolution, "workspace resolution interrupted").Build()
	}
}

func (r *Resolver) resolved(loc Location, start time.Time) {
	slog.Debug("Resolved workspace",
		logfields.WorkspaceRoot(loc.Root),
		logfields.TargetDir(loc.TargetDir),
		logfields.Source(string(loc.Source)),
		logfields.Duration(time.Since(start)))
	if r.onResolved != nil {
		r.onResolved(loc.Source)
	}
}

func (r *Resolver) startMetadataQuery(ctx context.Context, dir string) <-chan metadataResult {
	ch := make(chan metadataResult, 1)
	go func() {
		loc, err := r.queryMetadata(ctx, dir)
		ch <- metadataResult{loc: loc, err: err}
	}()
	return ch
}

func (r *Resolver) queryMetadata(ctx context.Context, dir string) (Location, error) {
	out, err := r.runner.Output(ctx, toolchain.Command{
		Name: r.cargo,
		Args: []string{"metadata", "--no-deps", "--format-version=1"},
		Dir:  dir,
	})
	if err != nil {
		return Location{}, errors.WrapError(err, errors.CategoryResolution, "cargo metadata failed").
			WithContext("dir", dir).
			Build()
	}
	return ParseMetadata(out)
}

// ParseMetadata extracts the workspace location from `cargo metadata` JSON output.
func ParseMetadata(data []byte) (Location, error) {
	var meta struct {
		WorkspaceRoot   *string `json:"workspace_root"`
		TargetDirectory *string `json:"target_directory"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return Location{}, errors.WrapError(err, errors.CategoryResolution, "cargo metadata output is not valid metadata JSON").Build()
	}
	if meta.WorkspaceRoot == nil || *meta.WorkspaceRoot == "" {
		return Location{}, errors.ResolutionError("cargo metadata output has no workspace_root").Build()
	}
	if meta.TargetDirectory == nil || *meta.TargetDirectory == "" {
		return Location{}, errors.ResolutionError("cargo metadata output has no target_directory").Build()
	}
	return Location{
		Root:      *meta.WorkspaceRoot,
		TargetDir: *meta.TargetDirectory,
		Source:    SourceMetadata,
	}, nil
}

// FindAncestor walks from dir up to the filesystem root and returns the first
// directory containing both a target directory and a Cargo.toml.
func FindAncestor(dir string) (Location, bool) {
	for {
		target := filepath.Join(dir, TargetDirName)
		if isDir(target) && exists(filepath.Join(dir, ManifestFile)) {
			return Location{Root: dir, TargetDir: target, Source: SourceHeuristic}, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Location{}, false
		}
		dir = parent
	}
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
