package pipeline

import (
	"sync"

	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/timeframe"
)

// DataStore resolves the names a configuration references into live sources
// and time frames.
type DataStore interface {
	Source(name string) (source.Handle, bool)
	TimeFrame(name string) (timeframe.TimeFrame, bool)
}

// MemoryStore is an in-memory DataStore. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	sources map[string]source.Handle
	frames  map[string]timeframe.TimeFrame
}

// NewMemoryStore creates an empty data store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources: make(map[string]source.Handle),
		frames:  make(map[string]timeframe.TimeFrame),
	}
}

// AddSource registers a source handle under a name, replacing any previous
// entry.
func (m *MemoryStore) AddSource(name string, h source.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[name] = h
}

// AddTimeFrame registers a time frame under a name, replacing any previous
// entry.
func (m *MemoryStore) AddTimeFrame(name string, f timeframe.TimeFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[name] = f
}

// Source implements DataStore.
func (m *MemoryStore) Source(name string) (source.Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.sources[name]
	return h, ok
}

// TimeFrame implements DataStore.
func (m *MemoryStore) TimeFrame(name string) (timeframe.TimeFrame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.frames[name]
	return f, ok
}
