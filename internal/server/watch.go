package server

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/san-kum/cradle/internal/config"
)

// WatchSettings reloads the default settings whenever the yaml file at path
// is written. Running sessions keep the cradle they started with. The
// watcher stops with ctx.
func (s *Server) WatchSettings(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// editors often replace the file, so watch the directory
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := config.Load(path)
				if err != nil {
					slog.Warn("settings reload failed", "path", path, "error", err)
					continue
				}
				s.SetSettings(cfg)
				settingsReloads.Inc()
				slog.Info("settings reloaded", "path", path, "bobs", cfg.Cradle.BobCount)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("settings watcher error", "error", err)

			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
