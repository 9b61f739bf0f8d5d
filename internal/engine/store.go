// internal/engine/store.go
package engine

import (
	"sort"
	"sync"
)

// SnapshotStore is the shared table of published records, keyed by normalized
// symbol. The monitor loop is the only writer; the API layer reads consistent
// copies. A single mutex guards every operation and is never held across a
// network call.
type SnapshotStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewSnapshotStore returns an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{records: make(map[string]Record)}
}

// Upsert replaces the record for its symbol. Last writer wins per symbol.
func (s *SnapshotStore) Upsert(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Symbol] = rec
}

// Snapshot returns a consistent copy of every record, sorted by symbol.
// Callers never observe a partially-updated cycle.
func (s *SnapshotStore) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len reports the number of published records.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear drops every record. Called when the market-open gate closes.
func (s *SnapshotStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
}
