// Package watch ingests PDF files as they appear in watched
// directories. It implements a driving adapter following hexagonal
// architecture principles.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docent-labs/docent/internal/core/ports/driving"
	"github.com/docent-labs/docent/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// ingested. Editors and downloads write files in bursts; debouncing
// collapses the burst into one ingestion.
const DefaultDebounce = 500 * time.Millisecond

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("watch: ingest service is required")

// Config holds watcher configuration.
type Config struct {
	// Paths are the directories to watch. At least one is required.
	Paths []string

	// Debounce is the quiet period before a changed file is ingested.
	// Zero means DefaultDebounce.
	Debounce time.Duration

	// Extensions are the file extensions to ingest, lowercase with
	// leading dot. Empty means .pdf only.
	Extensions []string

	// Output receives progress lines. Nil means os.Stdout.
	Output io.Writer
}

// Watcher watches directories and feeds new or changed files into the
// ingestion pipeline.
type Watcher struct {
	ingest driving.IngestService
	cfg    Config

	mu     sync.Mutex
	timers map[string]*time.Timer

	// pending carries debounced paths back into the run loop so all
	// ingestion happens on one goroutine with the run context.
	pending chan string

	// done is closed when Run returns so late timer callbacks do not
	// block on a pending channel nothing drains anymore.
	done chan struct{}
}

// New creates a watcher for the given directories.
func New(ingest driving.IngestService, cfg Config) (*Watcher, error) {
	if ingest == nil {
		return nil, ErrMissingIngestService
	}
	if len(cfg.Paths) == 0 {
		return nil, errors.New("watch: at least one directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".pdf"}
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return &Watcher{
		ingest:  ingest,
		cfg:     cfg,
		timers:  make(map[string]*time.Timer),
		pending: make(chan string, 16),
		done:    make(chan struct{}),
	}, nil
}

// Run watches until the context is cancelled. Failures on individual
// files are reported and watching continues; only watcher-level
// failures end the run. Run may be called at most once per Watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	defer w.stopTimers()
	defer close(w.done)

	for _, dir := range w.cfg.Paths {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watching %s: not a directory", dir)
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug("watching %s", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.relevantChange(event) {
				w.debounce(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case path := <-w.pending:
			w.ingestFile(ctx, path)
		}
	}
}

// relevantChange reports whether the event should trigger ingestion:
// a create or write of a file with a supported extension.
func (w *Watcher) relevantChange(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, supported := range w.cfg.Extensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// debounce (re)arms the per-path timer. The path is queued for
// ingestion once it has been quiet for the debounce period.
func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.cfg.Debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.enqueue(path)
	})
}

// enqueue hands a settled path to the run loop. A callback firing
// after Run has returned gives up instead of blocking on a channel
// nothing drains.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	select {
	case w.pending <- path:
	case <-w.done:
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// ingestFile ingests one settled file.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		// The file may have been removed before it settled.
		fmt.Fprintf(w.cfg.Output, "%s: %v\n", filepath.Base(path), err)
		return
	}
	defer f.Close()

	result, err := w.ingest.IngestStream(ctx, f, filepath.Base(path), "")
	if err != nil {
		fmt.Fprintf(w.cfg.Output, "%s: %v\n", filepath.Base(path), err)
		return
	}

	fmt.Fprintf(w.cfg.Output, "Ingested %s: %d pages, %d/%d chunks indexed\n",
		filepath.Base(path), result.PagesCount, result.ChunksIndexed, result.ChunksTotal)
}
