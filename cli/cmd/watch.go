package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/tfmt/log"
)

// debounce is the quiet period after the last change before watch runs
// again.
const debounce = 100 * time.Millisecond

// watch calls run once, then again after any of files is written or
// created, until ctx is done. Bursts of events within [debounce] cause a
// single run.
//
// The parent directories are watched rather than the files, so a file
// replaced by rename keeps being watched.
func watch(ctx context.Context, files []string, run func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)

	for _, file := range files {
		if file == stdinSource {
			continue
		}

		abs, err := filepath.Abs(file)
		if err != nil {
			return ErrWatch.With(slog.String("file", file)).Wrap(err)
		}

		watched[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			return ErrWatch.With(slog.String("dir", dir)).Wrap(err)
		}

		dirs[dir] = true
	}

	if len(watched) == 0 {
		return ErrWatch.With(slog.String("reason", "no template or data files to watch"))
	}

	log.InfoContext(ctx, "watching for changes", slog.Int("files", len(watched)))

	run(ctx)

	trigger := make(chan struct{}, 1)

	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !watched[filepath.Clean(event.Name)] ||
				event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			log.TraceContext(ctx, "file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			run(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
