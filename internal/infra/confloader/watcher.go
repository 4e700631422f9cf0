package confloader

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before a change is
// reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports writes to a fixed set of files on a channel.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      *slog.Logger
	debounce time.Duration
	files    map[string]bool
	changes  chan string

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewWatcher watches files. Each file's directory must exist; the file
// itself may appear later. A debounce of zero reports every event.
func NewWatcher(log *slog.Logger, debounce time.Duration, files ...string) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fsw,
		log:      log,
		debounce: debounce,
		files:    make(map[string]bool, len(files)),
		changes:  make(chan string, len(files)+1),
		pending:  make(map[string]*time.Timer),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err == nil {
			// Directories, so rename-on-save still shows up as a create.
			err = fsw.Add(filepath.Dir(abs))
		}
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		log.Debug("watching", "file", abs)
	}
	return w, nil
}

// Changes delivers the path of each watched file that settled after a
// write. A reader that falls behind sees bursts coalesced.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run forwards events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.touch(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) touch(name string) {
	abs, err := filepath.Abs(name)
	if err != nil || !w.files[abs] {
		return
	}
	if w.debounce <= 0 {
		w.emit(abs)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[abs]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[abs] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, abs)
		w.mu.Unlock()
		w.emit(abs)
	})
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.changes <- path:
	default:
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	w.stopped = true
	for _, t := range w.pending {
		t.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	if err := w.fs.Close(); err != nil {
		w.log.Warn("closing watcher", "error", err)
	}
}
