package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/fairpay/pkg/logger"
)

// Watch monitors path and calls onChange with the reloaded Config each time
// the file is written. It runs until ctx is cancelled.
//
// A reload that fails (e.g. invalid YAML) is logged and skipped; onChange is
// not called.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return err
	}
	log.Info(ctx, "watching config for changes", logger.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// editors often save via rename, so Create counts too
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFrom(ctx, path)
			if err != nil {
				log.Error(ctx, "config reload failed; keeping previous config", logger.String("path", path), logger.Error(err))
				continue
			}
			log.Info(ctx, "config reloaded", logger.String("path", path))
			onChange(cfg)

			// re-add in case an atomic save replaced the inode
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, "config watcher error", logger.Error(err))
		}
	}
}
