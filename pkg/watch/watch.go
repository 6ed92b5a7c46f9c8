// Package watch rebuilds the multicall binary whenever tool sources change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/entrhq/toolbox/pkg/logging"
	"github.com/entrhq/toolbox/pkg/registry"
	"github.com/entrhq/toolbox/pkg/types"
)

const sourcePattern = "*" + registry.SourceExt

// Builder is the part of the build orchestrator the watcher needs.
type Builder interface {
	Build(ctx context.Context) (*types.Artifact, error)
}

// ResultHandler is called after every rebuild with the changed files.
type ResultHandler func(changed []string, artifact *types.Artifact, err error)

// Watcher triggers one rebuild per burst of changes to tool sources.
// Rebuilds run on the watcher goroutine, so they never overlap.
type Watcher struct {
	dir      string
	debounce time.Duration
	builder  Builder
	logger   *logging.Logger
	onResult ResultHandler
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithResultHandler receives the outcome of each rebuild.
func WithResultHandler(h ResultHandler) Option {
	return func(w *Watcher) { w.onResult = h }
}

// New creates a Watcher over the tools directory dir.
func New(dir string, debounce time.Duration, builder Builder, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		debounce: debounce,
		builder:  builder,
		logger:   logging.Discard("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. A failed rebuild is reported and watching
// continues; only watcher setup errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Infof("watching %s (debounce %s)", w.dir, w.debounce)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debugf("change: %s %s", event.Op, event.Name)
			pending[filepath.Base(event.Name)] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := drain(pending)
			w.rebuild(ctx, changed)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, changed []string) {
	w.logger.Infof("rebuilding after changes to %v", changed)

	artifact, err := w.builder.Build(ctx)
	if err != nil {
		w.logger.Errorf("rebuild failed: %v", err)
	}
	if w.onResult != nil {
		w.onResult(changed, artifact, err)
	}
}

// relevant reports whether event touches a tool source file. Chmod-only
// events and temp files from atomic writes are ignored.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	ok, err := doublestar.Match(sourcePattern, base)
	return err == nil && ok && base[0] != '.'
}

func drain(pending map[string]struct{}) []string {
	changed := make([]string, 0, len(pending))
	for name := range pending {
		changed = append(changed, name)
		delete(pending, name)
	}
	sort.Strings(changed)
	return changed
}
