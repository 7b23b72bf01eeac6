package rules

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloaderConfig controls how often the rule source is re-read.
type ReloaderConfig struct {
	Interval time.Duration // Periodic reload; zero disables the timer.
	Watch    bool          // Also reload on file change events (file sources only).
	Debounce time.Duration // Quiet period after a change event before reloading.
}

// Reloader refreshes a Store from a Source.
type Reloader struct {
	source Source
	store  *Store
	cfg    ReloaderConfig
	log    *zap.Logger
}

// NewReloader creates a Reloader.
func NewReloader(source Source, store *Store, cfg ReloaderConfig, log *zap.Logger) *Reloader {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reloader{source: source, store: store, cfg: cfg, log: log}
}

// Reload loads the source once. A table equal to the current one is not
// swapped in; a load failure leaves the current table in place.
func (r *Reloader) Reload(ctx context.Context) (changed bool, err error) {
	t, err := r.source.Load(ctx)
	if err != nil {
		r.log.Warn("rule reload failed, keeping current table",
			zap.String("source", r.source.String()),
			zap.Error(err))
		return false, err
	}
	if t.Equal(r.store.Current()) {
		return false, nil
	}
	r.store.Swap(t)
	r.log.Info("rules reloaded",
		zap.String("source", r.source.String()),
		zap.Int("categories", t.Len()))
	return true, nil
}

// Run reloads on the configured interval and on file events until ctx ends.
// It always returns nil; reload failures are logged.
func (r *Reloader) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.cfg.Interval > 0 {
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	target := ""
	if fs, ok := r.source.(*FileSource); ok && r.cfg.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			r.log.Warn("rule file watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
			target = filepath.Clean(fs.Path)
			// Watch the directory: editors often replace the file instead of writing it.
			if err := w.Add(filepath.Dir(target)); err != nil {
				r.log.Warn("cannot watch rule file directory", zap.String("path", target), zap.Error(err))
			} else {
				events = w.Events
				watchErrs = w.Errors
				r.log.Debug("watching rule file", zap.String("path", target))
			}
		}
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			r.Reload(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debounce = time.After(r.cfg.Debounce)
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			r.log.Warn("rule file watcher error", zap.Error(err))
		case <-debounce:
			debounce = nil
			r.Reload(ctx)
		}
	}
}
