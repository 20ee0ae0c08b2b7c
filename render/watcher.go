// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"cogentcore.org/webgpudemo/base/errors"
	"github.com/fsnotify/fsnotify"
)

// Watcher watches an asset file for changes. It only records that
// a change happened: reloading is done by the render loop, between
// frames, on the main thread.
type Watcher struct {
	// Path is the watched file.
	Path string

	watcher *fsnotify.Watcher
	changed atomic.Bool
	done    chan bool
}

// NewWatcher starts watching the file at path. The directory is
// watched, as editors and exporters often replace files instead of
// writing them in place.
func NewWatcher(path string) (*Watcher, error) {
	path = filepath.Clean(path)
	fw, err := fsnotify.NewWatcher()
	if errors.Log(err) != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); errors.Log(err) != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{Path: path, watcher: fw, done: make(chan bool)}
	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	watch := w.watcher
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-watch.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename:
				slog.Debug("render: asset changed", "path", w.Path, "op", event.Op)
				w.changed.Store(true)
			}
		case err, ok := <-watch.Errors:
			if !ok {
				return
			}
			slog.Warn("render: watching asset", "path", w.Path, "err", err)
		}
	}
}

// Notify marks the file as changed.
func (w *Watcher) Notify() {
	w.changed.Store(true)
}

// Changed returns whether the file changed since the last call.
func (w *Watcher) Changed() bool {
	return w.changed.Swap(false)
}

// Close stops watching.
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
