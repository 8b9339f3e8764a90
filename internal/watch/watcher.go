// Package watch reloads a format's rule files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/mtg-metagame/internal/rules"
)

// DefaultDebounce is how long the watcher waits after the last change before
// reloading, so an editor's burst of writes causes one reload.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives each successfully reloaded bundle.
type ReloadFunc func(*rules.Bundle)

// Config configures a Watcher.
type Config struct {
	Dir      string
	Format   string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher keeps the latest good rule bundle of one format. A reload that
// fails leaves the previous bundle in place.
type Watcher struct {
	dir      string
	format   string
	debounce time.Duration
	logger   *slog.Logger
	onReload ReloadFunc

	current atomic.Pointer[rules.Bundle]
	reloads atomic.Int64
}

var ruleFiles = map[string]bool{
	rules.ArchetypesFile: true,
	rules.FallbacksFile:  true,
	rules.ColorsFileYAML: true,
	rules.ColorsFileJSON: true,
}

// New loads the format once and returns a watcher holding that bundle. The
// initial load must succeed.
func New(config Config, onReload ReloadFunc) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	w := &Watcher{
		dir:      config.Dir,
		format:   config.Format,
		debounce: config.Debounce,
		logger:   config.Logger,
		onReload: onReload,
	}

	bundle, err := rules.Load(w.dir, w.format, rules.Options{Logger: w.logger})
	if err != nil {
		return nil, fmt.Errorf("failed to load initial rules: %w", err)
	}
	w.current.Store(bundle)
	return w, nil
}

// Current returns the most recent successfully loaded bundle.
func (w *Watcher) Current() *rules.Bundle {
	return w.current.Load()
}

// Reloads returns the number of successful reloads since New.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

// Run watches the format directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) (err error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Watch the directory rather than the files so atomic saves that replace
	// a file are still seen.
	formatDir := filepath.Join(w.dir, w.format)
	if err := fsw.Add(formatDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", formatDir, err)
	}
	w.logger.Info("Watching rules", "dir", formatDir, "debounce", w.debounce)

	var (
		timer   *time.Timer
		pending <-chan time.Time
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
			if !ruleFiles[filepath.Base(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("Rule file changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	bundle, err := rules.Load(w.dir, w.format, rules.Options{Logger: w.logger})
	if err != nil {
		w.logger.Error("Rule reload failed, keeping previous rules", "format", w.format, "error", err)
		return
	}

	w.current.Store(bundle)
	w.reloads.Add(1)
	w.logger.Info("Rules reloaded", "format", w.format, "archetypes", len(bundle.RuleSet.Archetypes))

	if w.onReload != nil {
		w.onReload(bundle)
	}
}
