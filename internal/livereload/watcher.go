package livereload

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of filesystem events (editors often touch a
// file several times per save) into a single reload.
const debounceDelay = 100 * time.Millisecond

// Watcher watches a directory tree and broadcasts to a Hub on changes.
type Watcher struct {
	fsw  *fsnotify.Watcher
	hub  *Hub
	done chan struct{}
}

// NewWatcher watches dir recursively and starts delivering change events to
// hub until Close is called.
func NewWatcher(dir string, hub *Hub) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addRecursive(fsw, dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, hub: hub, done: make(chan struct{})}
	go w.run()
	return w, nil
}

// Close stops watching. The final broadcast, if one is pending, is dropped.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	var debounce <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				// New directories need their own watch to stay recursive.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(w.fsw, ev.Name); err != nil {
						log.Printf("livereload: watch %s: %v", ev.Name, err)
					}
				}
			}
			debounce = time.After(debounceDelay)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("livereload: watch error: %v", err)
		case <-debounce:
			debounce = nil
			w.hub.Broadcast()
		}
	}
}

func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
