package reload

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/knadh/koanf/providers/file"
)

// DefaultDebounce is the quiet period after the last change before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls cb once after each burst of changes to any of the files at paths
// until ctx is canceled. Paths that do not exist are not watched.
// A directory counts as changed when an entry is created, removed or renamed.
//
// Calls of cb never overlap. Errors returned by cb are logged.
// Watch returns after the watches were set up.
func Watch(ctx context.Context, paths []string, debounce time.Duration, cb func() error) error {
	if ctx.Err() != nil {
		return nil
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := logr.FromContextOrDiscard(ctx)
	w := &watcher{log: log, debounce: debounce, cb: cb, ctx: ctx}

	for _, path := range paths {
		fi, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.V(1).Info("not watching missing file", "path", path)
			continue
		}
		if err == nil && fi.IsDir() {
			if err = w.watchDir(path); err != nil {
				w.unwatch()
				return err
			}
			continue
		}
		p := file.Provider(path)
		if err := p.Watch(w.changed(path)); err != nil {
			w.unwatch()
			return err
		}
		w.providers = append(w.providers, p)
	}

	go func() {
		<-ctx.Done()
		w.unwatch()
	}()
	return nil
}

type watcher struct {
	ctx      context.Context
	log      logr.Logger
	debounce time.Duration
	cb       func() error

	providers []*file.File
	dirs      []*fsnotify.Watcher

	mu    sync.Mutex // guards timer
	timer *time.Timer
	run   sync.Mutex // serializes cb
}

func (w *watcher) changed(path string) func(any, error) {
	log := w.log.WithValues("path", path)
	return func(_ any, err error) {
		if w.ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Info("failed watching file", "error", err)
			return
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timer = time.AfterFunc(w.debounce, func() {
			if w.ctx.Err() != nil {
				return
			}
			w.run.Lock()
			defer w.run.Unlock()

			log.Info("auto-reloading")
			start := time.Now()
			if err := w.cb(); err != nil {
				log.Info("failed to reload", "error", err)
				return
			}
			log.Info("reloaded successfully", "duration", time.Since(start).Round(time.Millisecond).String())
		})
	}
}

func (w *watcher) unwatch() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	for _, p := range w.providers {
		_ = p.Unwatch()
	}
	for _, d := range w.dirs {
		_ = d.Close()
	}
}

// watchDir watches the entries of dir, not the contents of its files.
func (w *watcher) watchDir(dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err = fw.Add(dir); err != nil {
		_ = fw.Close()
		return err
	}
	w.dirs = append(w.dirs, fw)

	changed := w.changed(dir)
	go func() {
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
					changed(nil, nil)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				changed(nil, err)
			}
		}
	}()
	return nil
}
