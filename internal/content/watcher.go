package content

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/logging"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Reloader is anything that can rebuild itself from the content directory.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher reloads content when a source document in dir changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   Reloader
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher starts watching dir. Run must be called to process events.
func NewWatcher(dir string, target Reloader, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}

	err = fsw.Add(dir)
	if err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsw:      fsw,
		target:   target,
		logger:   logging.OrNop(logger).Named("watcher"),
		debounce: debounce,
	}, nil
}

// Run processes file events until ctx is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", zap.Error(err))
		}
	}()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !IsSourceFile(filepath.Base(ev.Name)) {
				continue
			}
			w.logger.Debug("content changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := w.target.Reload(ctx); err != nil {
				w.logger.Warn("reload after change failed", zap.Error(err))
			}
		}
	}
}
