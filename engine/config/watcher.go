package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	w    *fsnotify.Watcher
	path string

	onChange func(Config)
	onError  func(error)

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// Watch starts watching the config file at path. Every write or re-create of the file is
// loaded and validated; valid configs are passed to onChange and failures to onError.
// The parent directory is watched so editors that replace the file by rename are followed.
// Callbacks run on the watcher's goroutine.
//
// Parameters:
//   - path: the config file path
//   - onChange: called with each successfully reloaded config
//   - onError: called with reload and watcher errors (may be nil)
//
// Returns:
//   - *Watcher: the running watcher
//   - error: an error if the watch could not be started
func Watch(path string, onChange func(Config), onError func(error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	if onError == nil {
		logger := common.NewLogger("config")
		onError = func(err error) {
			logger.Error("config reload failed", "path", abs, "err", err)
		}
	}

	w := &Watcher{
		w:        fw,
		path:     abs,
		onChange: onChange,
		onError:  onError,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.onError(err)
				continue
			}
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.onError(fmt.Errorf("config: watch %s: %w", w.path, err))
		}
	}
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for its goroutine to exit. It is safe to call more than once.
//
// Returns:
//   - error: the error from closing the underlying watcher
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.w.Close()
		<-w.done
	})
	return w.closeErr
}
