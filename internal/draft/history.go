package draft

import (
	"alcyxob/team-workouts/internal/domain"
	"time"
)

// DefaultHistoryLimit is the number of snapshots kept when no limit is configured.
const DefaultHistoryLimit = 20

// HistoryEntry is one immutable snapshot in the undo log.
type HistoryEntry struct {
	Draft     *domain.WorkoutDraft
	CreatedAt time.Time
}

// History is a bounded, linear undo/redo log. The cursor always points at the
// entry that represents the currently visible draft. History is not safe for
// concurrent use; Store serializes access to it.
type History struct {
	entries []HistoryEntry
	cursor  int
	limit   int
}

// NewHistory creates a log seeded with initial. A limit below 1 uses DefaultHistoryLimit.
func NewHistory(initial *domain.WorkoutDraft, at time.Time, limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	h := &History{limit: limit}
	h.Reset(initial, at)
	return h
}

// Push records a new snapshot. Entries after the cursor (the redo branch) are
// discarded first; the oldest entry is dropped once the limit is exceeded.
func (h *History) Push(d *domain.WorkoutDraft, at time.Time) {
	if h.cursor < len(h.entries)-1 {
		// clear the tail so pruned snapshots can be collected
		for i := h.cursor + 1; i < len(h.entries); i++ {
			h.entries[i] = HistoryEntry{}
		}
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, HistoryEntry{Draft: d.Clone(), CreatedAt: at})
	h.cursor = len(h.entries) - 1

	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
		h.cursor -= over
	}
}

// Undo moves the cursor back and returns a copy of that snapshot.
func (h *History) Undo() (*domain.WorkoutDraft, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Draft.Clone(), true
}

// Redo moves the cursor forward and returns a copy of that snapshot.
func (h *History) Redo() (*domain.WorkoutDraft, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Draft.Clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }
func (h *History) Limit() int    { return h.limit }

// Current returns a copy of the snapshot under the cursor.
func (h *History) Current() *domain.WorkoutDraft {
	return h.entries[h.cursor].Draft.Clone()
}

// Entries returns copies of every entry, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = HistoryEntry{Draft: e.Draft.Clone(), CreatedAt: e.CreatedAt}
	}
	return out
}

// Reset discards every entry and starts over from d.
func (h *History) Reset(d *domain.WorkoutDraft, at time.Time) {
	h.entries = []HistoryEntry{{Draft: d.Clone(), CreatedAt: at}}
	h.cursor = 0
}
