package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads store whenever the file at path is written or recreated,
// until ctx is done. A document that fails to load is logged and the
// previous snapshot kept.
//
// The parent directory is watched so editors that replace the file by
// renaming are followed.
func Watch(ctx context.Context, path string, store *Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("catalog")

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("catalog: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: watch %s: %w", path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", path, err)
	}
	logger.Info("watching catalog", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := store.Load(abs); err != nil {
				logger.Warn("catalog reload failed, keeping previous", zap.String("path", abs), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher", zap.Error(err))
		}
	}
}
