package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/pmitra96/castleverde/logger"
)

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Config)
}

// NewWatcher watches the directory holding path, so editors that replace the
// file on save are still seen.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{path: filepath.Clean(path), watcher: w, onChange: onChange}, nil
}

// Watch blocks until Close is called.
func (w *Watcher) Watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				logger.Info("Config file changed", "path", event.Name)
				w.Reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("Config watcher error", "error", err)
		}
	}
}

// Reload reads the file again and passes the result on. A file that fails
// to load or validate is logged and ignored.
func (w *Watcher) Reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logger.Error("Error reloading config", "path", w.path, "error", err)
		return
	}
	w.onChange(cfg)
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
