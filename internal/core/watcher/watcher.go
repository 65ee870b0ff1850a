package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/neilberkman/storycards/internal/core/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is processed
const DefaultSettle = 2 * time.Second

// ProcessFunc handles one settled document
type ProcessFunc func(ctx context.Context, path string) error

// Watcher processes documents dropped into a directory, one at a time
type Watcher struct {
	dir     string
	accept  []string
	process ProcessFunc
	settle  time.Duration
	watcher *fsnotify.Watcher
	log     *slog.Logger
	stats   *Stats

	// Last event time per path, waiting to settle
	pending map[string]time.Time
	// Modification time of each processed path
	done map[string]time.Time
}

// Stats tracks watcher activity
type Stats struct {
	StartTime     time.Time
	Processed     int
	Errors        int
	LastProcessed time.Time
}

// New watches dir for files whose extension is in accept
func New(dir string, accept []string, process ProcessFunc) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch path does not exist: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path is not a directory: %s", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		accept:  accept,
		process: process,
		settle:  DefaultSettle,
		watcher: fw,
		log:     logger.ComponentLogger("watcher"),
		stats:   &Stats{StartTime: time.Now()},
		pending: make(map[string]time.Time),
		done:    make(map[string]time.Time),
	}, nil
}

// SetSettle changes the quiet period before a file is processed
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Stats returns current watcher statistics
func (w *Watcher) Stats() Stats {
	return *w.stats
}

// Run blocks until ctx is done. Files already in the directory are left
// alone; only new or rewritten files are processed.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()
	w.log.Info("watching", "dir", w.dir, "accept", w.accept)

	tick := w.settle / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopping", "processed", w.stats.Processed, "errors", w.stats.Errors)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if w.shouldProcessEvent(event) {
				w.log.Debug("file event", "op", event.Op.String(), "path", event.Name)
				w.pending[event.Name] = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			w.log.Warn("watcher error", "error", err)
			w.stats.Errors++

		case now := <-ticker.C:
			w.processSettled(ctx, now)
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !w.accepted(event.Name) {
		return false
	}
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}

func (w *Watcher) accepted(path string) bool {
	base := filepath.Base(path)
	// Editors and browsers write partial downloads to dotfiles
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, a := range w.accept {
		if ext == a {
			return true
		}
	}
	return false
}

// processSettled runs process for every pending file that has been quiet
// for the settle period
func (w *Watcher) processSettled(ctx context.Context, now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.settle {
			continue
		}
		delete(w.pending, path)

		info, err := os.Stat(path)
		if err != nil {
			// Gone before it settled
			continue
		}
		if mod, ok := w.done[path]; ok && mod.Equal(info.ModTime()) {
			continue
		}

		if err := w.process(ctx, path); err != nil {
			w.log.Error("processing failed", "path", path, "error", err)
			w.stats.Errors++
			continue
		}

		w.done[path] = info.ModTime()
		w.stats.Processed++
		w.stats.LastProcessed = time.Now()
		w.log.Info("processed", "path", path)
	}
}
