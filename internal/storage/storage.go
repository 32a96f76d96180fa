// Package storage provides the string-keyed slots that hold cinewave's session and watchlist.
//
// A [Storage] is the injected replacement for browser local storage: every value is a serialized
// string under a fixed key and the storage is the only source of truth. Backends that can report
// writes implement [Observable]; [File] also reports writes made by other processes.
package storage

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/shared"
)

// Storage is a string-keyed slot store.
type Storage interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (value string, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Listener receives the key whose value changed.
type Listener func(key string)

// Observable is implemented by storages that can report changes.
type Observable interface {
	// Watch registers fn for change notifications until cancel is called.
	Watch(fn Listener) (cancel func())
}

// Open returns the backend selected by cfg.
//
// The returned close function releases database handles and watchers.
func Open(cfg *shared.Config, logger *log.Logger) (Storage, func() error, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return NewMemory(), func() error { return nil }, nil
	case "file":
		f, err := NewFile(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		f.SetLogger(logger)
		return f, f.Close, nil
	case "sqlite":
		db, err := shared.OpenMigrated(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		return NewSQLite(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrUnknownBackend, cfg.Storage.Backend)
	}
}

// watchers fans change notifications out to registered listeners.
type watchers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]Listener
}

func (w *watchers) add(fn Listener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fns == nil {
		w.fns = make(map[int]Listener)
	}
	id := w.nextID
	w.nextID++
	w.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.fns, id)
			w.mu.Unlock()
		})
	}
}

// notify calls every listener outside the lock so listeners may read the storage.
func (w *watchers) notify(key string) {
	w.mu.Lock()
	fns := make([]Listener, 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
