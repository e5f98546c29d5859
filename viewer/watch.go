package viewer

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/smasonuk/lsystree"
)

// Watcher reloads a config file whenever it changes on disk. Only the latest
// decoded config is kept; the game loop picks it up with Configs.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	configs chan *lsystree.Config
	errs    chan error
	done    chan struct{}
	wg      sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched so editors that
// replace the file on save are still seen.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		configs: make(chan *lsystree.Config, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) Configs() <-chan *lsystree.Config { return w.configs }

func (w *Watcher) Errors() <-chan error { return w.errs }

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := lsystree.LoadConfig(w.path)
			if err != nil {
				lsystree.Logger().Warn("config reload failed", "path", w.path, "err", err)
				sendLatest(w.errs, err)
				continue
			}
			lsystree.Logger().Debug("config reloaded", "path", w.path)
			sendLatest(w.configs, cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			sendLatest(w.errs, err)
		}
	}
}

// sendLatest replaces any value still waiting in ch with v.
func sendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
