package state

import (
	"sync"
	"time"
)

// HistoryEntry records one write call.
type HistoryEntry struct {
	// Timestamp is when the write was applied.
	Timestamp time.Time

	// Before is the full tree prior to the write.
	Before map[string]any

	// After is the full tree after the write.
	After map[string]any
}

// History is a capped FIFO of write records.
// When full, the oldest entry is evicted.
type History struct {
	mu         sync.Mutex
	entries    []HistoryEntry
	maxEntries int
}

// NewHistory creates a history holding at most maxEntries entries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultHistorySize
	}
	return &History{maxEntries: maxEntries}
}

// Push appends an entry, evicting from the front when over capacity.
func (h *History) Push(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if len(h.entries) > h.maxEntries {
		excess := len(h.entries) - h.maxEntries
		h.entries = append(h.entries[:0:0], h.entries[excess:]...)
	}
}

// Entries returns the entries oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]HistoryEntry, len(h.entries))
	copy(result, h.entries)
	return result
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// MaxEntries returns the capacity.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// Clear removes every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
