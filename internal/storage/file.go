package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/fsnotify/fsnotify"
)

const (
	fileExt    = ".json"
	tempPrefix = ".tmp-"
)

// File keeps one file per key inside a directory.
//
// Writes go through a temp file and a rename so readers never see a partial value. Change
// notifications come from an fsnotify watcher on the directory: they arrive asynchronously and
// include writes made by other processes sharing the directory.
type File struct {
	dir    string
	logger *log.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
	watchers watchers
}

var (
	_ Storage    = (*File)(nil)
	_ Observable = (*File)(nil)
)

// NewFile creates dir if needed and returns a [File] storage rooted there.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: storage dir is empty", shared.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", shared.ErrStorage, dir, err)
	}
	return &File{dir: dir, logger: shared.DiscardLogger()}, nil
}

// SetLogger sets the logger used to report watcher failures.
func (f *File) SetLogger(l *log.Logger) {
	if l != nil {
		f.logger = l
	}
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

// keyOf maps a file name back to its key; ok is false for temp and foreign files.
func keyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, tempPrefix) || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

func (f *File) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, key, err)
	}
	return string(data), true, nil
}

func (f *File) Set(key, value string) error {
	tmp, err := os.CreateTemp(f.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", shared.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

func (f *File) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to delete %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Watch implements [Observable]. The directory watcher starts with the first listener.
//
// If the watcher cannot be started the listener is still registered but will never fire.
func (f *File) Watch(fn Listener) func() {
	cancel := f.watchers.add(fn)
	if err := f.startWatcher(); err != nil {
		f.logger.Warn("file watcher unavailable", "dir", f.dir, "error", err)
	}
	return cancel
}

func (f *File) startWatcher() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return err
	}

	f.watcher = w
	f.done = make(chan struct{})
	go f.loop(w, f.done)
	return nil
}

func (f *File) loop(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if key, ok := keyOf(event.Name); ok {
				f.watchers.notify(key)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Warn("file watcher error", "dir", f.dir, "error", err)
		}
	}
}

// Close stops the directory watcher, if any.
func (f *File) Close() error {
	f.mu.Lock()
	w, done := f.watcher, f.done
	f.watcher, f.done = nil, nil
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}
