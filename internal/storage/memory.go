package storage

import "sync"

// Memory is an in-process [Storage], used by tests and the "memory" backend.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers watchers
}

var (
	_ Storage    = (*Memory)(nil)
	_ Observable = (*Memory)(nil)
)

// NewMemory creates an empty [Memory] storage.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()

	m.watchers.notify(key)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.watchers.notify(key)
	}
	return nil
}

// Watch implements [Observable]; listeners run synchronously on the writing goroutine.
func (m *Memory) Watch(fn Listener) func() {
	return m.watchers.add(fn)
}

// Keys returns the stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
