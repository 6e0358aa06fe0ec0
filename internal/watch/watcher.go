// Package watch re-stages staged files as they change on disk, keeping
// the captured fingerprints current until the next commit. Single
// process only, like every other repository operation.
package watch

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"minivc/internal/repo"
)

// Watcher observes the directories of staged files and re-stages a file
// whenever it is written or recreated. The staged set is read from the
// index on every event, so entries cleared by a commit stop being
// re-staged immediately.
type Watcher struct {
	repo    *repo.Repository
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
}

// New builds a watcher over the directories of the repository's
// currently staged files and starts its event loop.
func New(r *repo.Repository, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		repo:    r,
		watcher: fsw,
		logger:  logger,
		done:    make(chan struct{}),
	}

	if err := w.watchStagedDirs(); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.watchLoop()

	return w, nil
}

// watchStagedDirs watches each staged file's parent directory.
func (w *Watcher) watchStagedDirs() error {
	entries, err := w.repo.Staged()
	if err != nil {
		return err
	}

	dirs := make(map[string]bool)
	for _, e := range entries {
		dirs[filepath.Dir(filepath.Join(w.repo.Root, e.Path))] = true
	}

	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	rel, err := filepath.Rel(w.repo.Root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.Clean(rel)

	if !w.isStaged(rel) {
		return
	}

	entry, err := w.repo.Stage(rel)
	if err != nil {
		w.logger.Warn("re-staging failed",
			zap.String("path", rel),
			zap.Error(err))
		return
	}

	w.logger.Info("re-staged",
		zap.String("path", entry.Path),
		zap.String("sha", entry.SHA))
}

// isStaged consults the persisted index rather than a snapshot, so a
// commit that cleared the index is respected on the next event.
func (w *Watcher) isStaged(rel string) bool {
	entries, err := w.repo.Staged()
	if err != nil {
		w.logger.Warn("reading staging index", zap.Error(err))
		return false
	}
	for _, e := range entries {
		if e.Path == rel {
			return true
		}
	}
	return false
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
