// Package watch rebuilds a file's snapshot whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/document"
	"github.com/arjunmahishi/tsls/langdef"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 100 * time.Millisecond

// Options configures Run.
type Options struct {
	// Debounce is the quiet period before a rebuild.
	// If 0, DefaultDebounce is used.
	Debounce time.Duration

	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger

	// MaxDiagnostics bounds the diagnostics kept per snapshot.
	MaxDiagnostics int
}

// Run builds path once, then rebuilds it after every change until ctx is
// cancelled. Each rebuild replaces the snapshot wholesale and is passed to
// onBuild. The parent directory is watched so that editors which replace the
// file on save are followed.
func Run(ctx context.Context, path string, language cst.Language, def *langdef.Definition, opts Options, onBuild func(*document.Snapshot)) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	file := document.NewFile(uri.File(absPath), language, def, document.Options{
		Logger:         opts.Logger,
		MaxDiagnostics: opts.MaxDiagnostics,
	})

	var version int32
	rebuild := func(ctx context.Context) error {
		source, err := os.ReadFile(absPath)
		if errors.Is(err, os.ErrNotExist) {
			opts.Logger.Debug("file gone, waiting", zap.String("file", absPath))
			return nil
		}
		if err != nil {
			return err
		}
		version++
		snap, err := file.Update(ctx, version, source)
		if err != nil {
			return err
		}
		onBuild(snap)
		return nil
	}

	if err := rebuild(ctx); err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(changes)
		return watchEvents(ctx, watcher, absPath, opts.Debounce, changes)
	})
	g.Go(func() error {
		for range changes {
			if err := rebuild(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchEvents sends on changes once events for target have been quiet for
// debounce. It returns when ctx is done or the watcher fails.
func watchEvents(ctx context.Context, watcher *fsnotify.Watcher, target string, debounce time.Duration, changes chan<- struct{}) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			pending = true
		case <-timer.C:
			pending = false
			select {
			case changes <- struct{}{}:
			default:
				// a rebuild is already queued
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
