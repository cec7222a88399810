// Package entity provides stable identifiers for per-timestamp geometric
// items (polylines, points). An ID names one concrete item independent of its
// storage position, so table rows can be round-tripped back to source
// geometry after entity expansion.
package entity

import (
	"fmt"
	"sync"
)

// ID is a stable handle naming one geometric or logical item.
// The zero value means "no entity".
type ID uint64

// Registry mints stable identifiers for the items a source owns at a given
// timestamp. Line and Point sources consult it so that repeated queries for
// the same (source, timestamp, ordinal) always yield the same ID.
type Registry interface {
	// IDsAt returns count identifiers for the items source owns at the given
	// native time index, in the source's own enumeration order. IDs are
	// allocated on first request and stable afterward.
	IDsAt(sourceName string, timeIndex int64, count int) []ID
}

// MemoryRegistry is the in-process Registry implementation.
// Registration is guarded; lookups after population are read-mostly.
type MemoryRegistry struct {
	mu   sync.Mutex
	next ID
	ids  map[string][]ID
}

// NewMemoryRegistry creates an empty registry. The first allocated ID is 1;
// 0 is reserved as the "no entity" sentinel.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{next: 1, ids: make(map[string][]ID)}
}

// IDsAt implements Registry.
func (r *MemoryRegistry) IDsAt(sourceName string, timeIndex int64, count int) []ID {
	if count <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s/%d", sourceName, timeIndex)
	existing := r.ids[key]
	for len(existing) < count {
		existing = append(existing, r.next)
		r.next++
	}
	r.ids[key] = existing

	out := make([]ID, count)
	copy(out, existing[:count])
	return out
}
