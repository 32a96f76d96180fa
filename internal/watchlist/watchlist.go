// Package watchlist implements the "watch later" list.
//
// The list is a JSON array of [models.WatchlistItem] snapshots stored under one [storage.Storage]
// key. The storage is the only source of truth: every call reads the slot, and every mutation
// rewrites the whole array.
package watchlist

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/storage"
)

// StorageKey is the slot holding the serialized list.
const StorageKey = "cinewave-watchlist"

// Store is the watchlist store.
type Store struct {
	storage storage.Storage
	logger  *log.Logger

	// mu serializes read-modify-write cycles within the process.
	mu sync.Mutex
	// writing is set while this store writes the slot; storage notifications arriving meanwhile
	// are replayed by the writer once mu is released.
	writing  atomic.Bool
	deferred atomic.Bool

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func([]models.WatchlistItem)
	unwatch   func()
}

// NewStore creates a [Store] backed by st. A nil logger discards output.
func NewStore(st storage.Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Store{storage: st, logger: logger, listeners: make(map[int]func([]models.WatchlistItem))}
}

// Add appends item unless an item with the same id is already present.
//
// It reports false without writing when the id exists.
func (s *Store) Add(item models.WatchlistItem) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	s.mu.Lock()
	items := s.load()
	if indexOf(items, item.ID) >= 0 {
		s.mu.Unlock()
		s.logger.Debug("already in watchlist", "id", item.ID)
		return false, nil
	}

	items = append(items, item)
	err := s.save(items)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.logger.Info("added to watchlist", "id", item.ID, "title", item.Title)
	s.changed()
	return true, nil
}

// Remove drops the item with id. An absent id reports false and writes nothing.
func (s *Store) Remove(id int) (bool, error) {
	s.mu.Lock()
	items := s.load()
	i := indexOf(items, id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}

	items = slices.Delete(items, i, i+1)
	err := s.save(items)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.logger.Info("removed from watchlist", "id", id)
	s.changed()
	return true, nil
}

// Contains reports whether an item with id is in the list.
func (s *Store) Contains(id int) bool {
	return indexOf(s.load(), id) >= 0
}

// All returns the list in insertion order. The slice is freshly decoded and owned by the caller.
func (s *Store) All() []models.WatchlistItem {
	return s.load()
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.load())
}

// Get returns the item with id.
func (s *Store) Get(id int) (models.WatchlistItem, bool) {
	items := s.load()
	if i := indexOf(items, id); i >= 0 {
		return items[i], true
	}
	return models.WatchlistItem{}, false
}

// Clear removes every item.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.writing.Store(true)
	err := s.storage.Delete(StorageKey)
	s.writing.Store(false)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	s.changed()
	return nil
}

// OnChange registers fn to receive the list after each change.
//
// Listeners run after the store's lock is released, so they may call Add or Remove.
func (s *Store) OnChange(fn func([]models.WatchlistItem)) (cancel func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	if obs, ok := s.storage.(storage.Observable); ok && s.unwatch == nil {
		s.unwatch = obs.Watch(func(key string) {
			if key != StorageKey {
				return
			}
			if s.writing.Load() {
				s.deferred.Store(true)
				return
			}
			s.broadcast()
		})
	}
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			if len(s.listeners) == 0 && s.unwatch != nil {
				s.unwatch()
				s.unwatch = nil
			}
			s.lmu.Unlock()
		})
	}
}

// load decodes the slot. Missing, unreadable or malformed data yields an empty list.
func (s *Store) load() []models.WatchlistItem {
	raw, found, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn("watchlist slot unreadable", "error", err)
		return []models.WatchlistItem{}
	}
	if !found || raw == "" {
		return []models.WatchlistItem{}
	}

	var items []models.WatchlistItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("watchlist slot malformed, treating as empty", "error", err)
		return []models.WatchlistItem{}
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return items
}

func (s *Store) save(items []models.WatchlistItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: failed to encode watchlist: %v", shared.ErrStorage, err)
	}
	s.writing.Store(true)
	err = s.storage.Set(StorageKey, string(data))
	s.writing.Store(false)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// changed notifies listeners after a local write, once mu is released. Observable storage that
// reports changes asynchronously is left to deliver its own notification.
func (s *Store) changed() {
	_, observable := s.storage.(storage.Observable)
	if s.deferred.Swap(false) || !observable {
		s.broadcast()
	}
}

func (s *Store) broadcast() {
	s.lmu.Lock()
	fns := make([]func([]models.WatchlistItem), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(s.load())
	}
}

func indexOf(items []models.WatchlistItem, id int) int {
	return slices.IndexFunc(items, func(it models.WatchlistItem) bool { return it.ID == id })
}
