package packfile

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/entropic-dev/eos/internal/storepath"
)

// Watcher notifies a long-lived composite reader when compaction
// publishes a new pack pair, so it can pick up the new index without
// polling. It reports the name carried by every Create or Rename event
// for a .idx file in <root>/pack, whether the file was renamed into
// place or written there directly. It does not report .pack files,
// since the index is what LoadAll keys discovery on and compaction
// renames it into place after the pack.
type Watcher struct {
	fs     *fsnotify.Watcher
	ready  chan string
	errors chan error
	done   chan struct{}
}

// NewWatcher starts watching <root>/pack for newly published indexes.
// The directory must already exist.
func NewWatcher(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "packfile: could not start watcher")
	}

	dir := filepath.Join(root, storepath.PackDir)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "packfile: could not watch %s", dir)
	}

	w := &Watcher{
		fs:     fw,
		ready:  make(chan string, 16),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.ready)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			isNew := ev.Op&(fsnotify.Create|fsnotify.Rename) != 0
			if isNew && strings.HasSuffix(ev.Name, storepath.IndexExt) {
				select {
				case w.ready <- ev.Name:
				case <-w.done:
					return
				}
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// Ready receives the path of each newly published index file.
func (w *Watcher) Ready() <-chan string {
	return w.ready
}

// Errors receives watch errors reported by the underlying fsnotify
// watcher. The channel is buffered by one; excess errors are dropped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
