// Package watch rebuilds when workspace sources change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	dberrors "git.home.luguber.info/inful/runwasm/internal/foundation/errors"
	"git.home.luguber.info/inful/runwasm/internal/logfields"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is watched recursively. Paths matched by its .gitignore files are
	// skipped.
	Root string
	// Exclude lists directories whose changes are ignored, typically the
	// target directory so build output does not trigger another build.
	Exclude  []string
	Debounce time.Duration
}

// RebuildFunc performs one rebuild. Calls never overlap.
type RebuildFunc func(ctx context.Context)

// Watcher triggers RebuildFunc after source changes settle.
type Watcher struct {
	opts     Options
	rebuild  RebuildFunc
	fsw      *fsnotify.Watcher
	ignore   gitignore.Matcher
	debounce *Debouncer
	done     chan struct{}
}

// New creates a watcher. Nothing is watched until Start.
func New(opts Options, rebuild RebuildFunc) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		opts:     opts,
		rebuild:  rebuild,
		debounce: NewDebouncer(opts.Debounce),
		done:     make(chan struct{}),
	}
}

// Start registers the directory tree and begins processing events until ctx
// is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return dberrors.FileSystemError("failed to create file watcher").WithCause(err).Build()
	}
	w.fsw = fsw
	w.reloadGitignore()
	if err := w.addDirsRecursive(w.opts.Root); err != nil {
		_ = fsw.Close()
		return err
	}

	go w.rebuildLoop(ctx)
	go w.eventLoop(ctx)
	slog.Info("Watching for changes", logfields.Path(w.opts.Root))
	return nil
}

// Run is Start followed by waiting for ctx.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-w.done
	return nil
}

// Done is closed once the watcher has shut down.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.done)
	defer w.debounce.Stop()
	defer func() { _ = w.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop runs one rebuild at a time. Changes during a rebuild leave one
// signal buffered in the debouncer, which yields exactly one follow-up build.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.debounce.C():
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Base(ev.Name) == gitignoreFile {
		w.reloadGitignore()
		return
	}
	fi, err := os.Stat(ev.Name)
	isDir := err == nil && fi.IsDir()
	if w.ignored(ev.Name, isDir) {
		return
	}
	if isDir && ev.Op&fsnotify.Create == fsnotify.Create {
		_ = w.addDirsRecursive(ev.Name)
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.debounce.Trigger()
}

// reloadGitignore swaps in the current .gitignore patterns. Directories
// skipped under the old patterns stay unwatched until they are recreated.
func (w *Watcher) reloadGitignore() {
	m, err := LoadGitignore(w.opts.Root)
	if err != nil {
		slog.Warn("Failed to read .gitignore files", logfields.Path(w.opts.Root), logfields.Error(err))
		return
	}
	w.ignore = m
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	if ShouldIgnore(path) {
		return true
	}
	if gitignored(w.ignore, w.opts.Root, path, isDir) {
		return true
	}
	for _, dir := range w.opts.Exclude {
		if within(path, dir) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		return dberrors.FileSystemError("cannot watch directory").WithCause(err).
			WithContext("path", root).
			Build()
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}
