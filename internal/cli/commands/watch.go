package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// watch re-analyzes .sql files as they change, until the context is
// canceled. Watches are registered on the directory arguments (and the
// parent directories of file arguments) so newly created files are picked
// up too.
func (r *analyzeRunner) watch(ctx context.Context, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, arg := range args {
		dir := arg
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			dir = filepath.Dir(arg)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	r.logger.Info("watching for changes", slog.Int("paths", len(args)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".sql") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.logger.Debug("file changed", slog.String("file", event.Name))
			if err := r.analyzeFile(ctx, event.Name); err != nil {
				fmt.Fprintf(r.stderr, "%s: %v\n", event.Name, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}
