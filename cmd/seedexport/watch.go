package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/export"
	"github.com/Faultbox/seedexport/internal/logger"
)

// settle is how long the scene file must stay quiet before a re-export.
// Editors often write a file in several steps.
const settle = 300 * time.Millisecond

func cmdWatch(ctx context.Context, args []string) error {
	cfg, rest, err := setup("watch", args)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(rest[0])
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: a save by rename replaces the watched inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	rerun := func() {
		if _, err := exportScene(ctx, cfg, path); err != nil && !errors.Is(err, export.ErrCancelled) {
			logger.Error("export failed", zap.Error(err))
		}
	}
	rerun()
	fmt.Printf("watching %s (Ctrl+C to stop)\n", path)

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug("scene changed", zap.String("op", event.Op.String()))
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			rerun()
		}
	}
}
