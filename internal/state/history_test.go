package state

import (
	"testing"
	"time"
)

func TestHistory_Capped(t *testing.T) {
	s := New(map[string]any{"n": 0}, WithHistorySize(3))

	for i := 1; i <= 5; i++ {
		s.Set("n", i)
	}

	entries := s.History()
	if len(entries) != 3 {
		t.Fatalf("history len = %d, want 3", len(entries))
	}
	// Oldest two writes (n=1, n=2) were evicted.
	for i, want := range []int{3, 4, 5} {
		if got := entries[i].After["n"]; got != want {
			t.Errorf("entries[%d].After[n] = %v, want %d", i, got, want)
		}
		if got := entries[i].Before["n"]; got != want-1 {
			t.Errorf("entries[%d].Before[n] = %v, want %d", i, got, want-1)
		}
	}
}

func TestHistory_OneEntryPerCall(t *testing.T) {
	s := New(nil)

	s.SetMany([]Update{{Path: "a", Value: 1}, {Path: "b", Value: 2}})
	s.Set("c", 3)

	if n := len(s.History()); n != 2 {
		t.Errorf("history len = %d, want 2", n)
	}
}

func TestHistory_SnapshotsAreIndependent(t *testing.T) {
	s := New(map[string]any{"prefs": map[string]any{"x": 1}})

	s.Set("prefs.x", 2)
	s.Set("prefs.x", 3)

	entries := s.History()
	first := entries[0].After["prefs"].(map[string]any)["x"]
	if first != 2 {
		t.Errorf("first entry After.prefs.x = %v, want 2", first)
	}
}

func TestHistory_Timestamp(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := New(nil, WithClock(func() time.Time { return fixed }))
	s.Set("a", 1)

	if got := s.History()[0].Timestamp; !got.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", got, fixed)
	}
}

func TestHistory_Clear(t *testing.T) {
	s := New(nil)
	s.Set("a", 1)
	s.ClearHistory()

	if n := len(s.History()); n != 0 {
		t.Errorf("history len after clear = %d", n)
	}
}

func TestHistory_DefaultSize(t *testing.T) {
	h := NewHistory(0)
	if h.MaxEntries() != DefaultHistorySize {
		t.Errorf("MaxEntries() = %d, want %d", h.MaxEntries(), DefaultHistorySize)
	}

	for i := 0; i < DefaultHistorySize+10; i++ {
		h.Push(HistoryEntry{})
	}
	if h.Len() != DefaultHistorySize {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistorySize)
	}
}
