// Package watch re-runs an analysis whenever a topic file is saved.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle. Many editors produce several events for a single save.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called with the trimmed file content each time the topic file
// settles after a save.
type Handler func(ctx context.Context, topic string)

// Watcher watches one topic file.
type Watcher struct {
	path     string
	debounce time.Duration
	initial  bool
	logger   *logging.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialRun calls the handler once for the file's current content
// before waiting for changes.
func WithInitialRun(enabled bool) Option {
	return func(w *Watcher) {
		w.initial = enabled
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for the file at path. The file's directory must
// exist; the file itself may be created later.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve topic file: %w", err)
	}
	info, err := os.Stat(filepath.Dir(abs))
	if err != nil || !info.IsDir() {
		return nil, errors.NewInvalidInputError("topic file directory does not exist").
			WithField("file").
			WithValue(path)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled. Handler calls never overlap: a save
// that lands while the handler runs is picked up once it returns.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	// Watch the directory rather than the file: editors that save by
	// renaming a temp file over the original would otherwise drop the watch.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching topic file", "path", w.path)

	if w.initial {
		w.fire(ctx, fn)
	}

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	for {
		select {
		case <-ctx.Done():
			debounceTimer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			w.fire(ctx, fn)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

func (w *Watcher) fire(ctx context.Context, fn Handler) {
	topic, err := ReadTopic(w.path)
	if err != nil {
		w.logger.Warn("topic file unreadable", "path", w.path, "error", err.Error())
		return
	}
	if topic == "" {
		w.logger.Debug("topic file is blank, skipping", "path", w.path)
		return
	}
	w.logger.Info("topic file changed", "path", w.path, "topic_len", len(topic))
	fn(ctx, topic)
}

// ReadTopic returns the trimmed content of the file at path.
func ReadTopic(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
