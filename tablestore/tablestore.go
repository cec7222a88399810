// Package tablestore keeps built tables addressable: each stored view gets
// a stable identifier and descriptive metadata so pipelines and callers can
// retrieve results by id or name.
package tablestore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/table"
)

// Info is the stored table's metadata.
type Info struct {
	ID          string
	Name        string
	Description string
	RowCount    int
	ColumnCount int
	CreatedAt   time.Time
}

type record struct {
	info Info
	view *table.TableView
}

// Store is an in-memory catalog of built tables. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]record
	byName map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]record),
		byName: make(map[string]string),
	}
}

// Put stores a built view under the given id, generating one when empty.
// Returns the effective id. Ids and non-empty names must be unique.
func (s *Store) Put(id, name, description string, view *table.TableView) (string, error) {
	if view == nil {
		return "", errors.WrapConfig(errors.ErrNilSource, "Store", "Put", "view check")
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[id]; dup {
		return "", errors.WrapConfig(
			fmt.Errorf("table %q: %w", id, errors.ErrDuplicateTable),
			"Store", "Put", "id uniqueness check")
	}
	if name != "" {
		if _, dup := s.byName[name]; dup {
			return "", errors.WrapConfig(
				fmt.Errorf("table %q: %w", name, errors.ErrDuplicateTable),
				"Store", "Put", "name uniqueness check")
		}
	}

	s.byID[id] = record{
		info: Info{
			ID:          id,
			Name:        name,
			Description: description,
			RowCount:    view.RowCount(),
			ColumnCount: view.ColumnCount(),
			CreatedAt:   time.Now(),
		},
		view: view,
	}
	if name != "" {
		s.byName[name] = id
	}
	return id, nil
}

// Get retrieves a stored view by id.
func (s *Store) Get(id string) (*table.TableView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec.view, ok
}

// GetByName retrieves a stored view by its table name.
func (s *Store) GetByName(name string) (*table.TableView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.byID[id].view, true
}

// Describe returns the metadata of a stored table.
func (s *Store) Describe(id string) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec.info, ok
}

// List returns the metadata of every stored table, sorted by id.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]Info, 0, len(s.byID))
	for _, rec := range s.byID {
		infos = append(infos, rec.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Remove drops a stored table; reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	if rec.info.Name != "" {
		delete(s.byName, rec.info.Name)
	}
	return true
}

// Len is the number of stored tables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
