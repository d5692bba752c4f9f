// In-memory thought history.
//
// Information Hiding:
// - Slice storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Mutations are serialized; reads see copy-on-read snapshots

package storage

import (
	"sync"

	"github.com/google/uuid"
	"github.com/richinex/seqthink/model"
)

// MemoryHistory implements History with an in-memory slice.
// Data is lost when the process terminates unless exported to a
// session file or mirrored into the SQLite archive.
type MemoryHistory struct {
	mu        sync.RWMutex
	sessionID string
	records   []model.ThoughtRecord
}

// NewMemoryHistory creates an empty history with a fresh session ID.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		sessionID: uuid.New().String(),
		records:   make([]model.ThoughtRecord, 0),
	}
}

// SessionID returns the identifier for this history's session.
// The ID is stable across Clear and Replace; a session is bounded by
// the lifetime of the MemoryHistory instance.
func (h *MemoryHistory) SessionID() string {
	return h.sessionID
}

// Append adds a record to the end of the sequence.
func (h *MemoryHistory) Append(record model.ThoughtRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
}

// All returns a copy of the sequence in insertion order.
func (h *MemoryHistory) All() []model.ThoughtRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Make a copy to avoid external mutations
	copied := make([]model.ThoughtRecord, len(h.records))
	copy(copied, h.records)
	return copied
}

// Replace swaps the entire sequence for the given records.
func (h *MemoryHistory) Replace(records []model.ThoughtRecord) {
	copied := make([]model.ThoughtRecord, len(records))
	copy(copied, records)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = copied
}

// Clear empties the sequence.
func (h *MemoryHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

// Len returns the number of records.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
