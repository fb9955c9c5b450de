package draft

import (
	"alcyxob/team-workouts/internal/clock"
	"alcyxob/team-workouts/internal/domain"
	"time"
)

// Store owns the current draft, its baseline and the dirty/save metadata.
// Every mutation that goes through ApplyPatch is recorded in the History.
// Store is not safe for concurrent use; Session serializes access to it.
type Store struct {
	clock    clock.Clock
	current  *domain.WorkoutDraft
	baseline *domain.WorkoutDraft
	history  *History

	dirty       bool
	version     int
	lastSavedAt time.Time
}

// NewStore initializes a draft of type t with defaults, merges initial (if any)
// into it and makes the result the baseline and the first history entry.
func NewStore(t domain.DocumentType, initial *domain.DraftPatch, clk clock.Clock, historyLimit int) (*Store, error) {
	if clk == nil {
		clk = clock.Real()
	}
	d, err := domain.NewWorkoutDraft(t, clk.Now())
	if err != nil {
		return nil, err
	}
	if initial != nil {
		if d, err = initial.Apply(d); err != nil {
			return nil, err
		}
	}
	return newStoreFrom(d, clk, historyLimit), nil
}

// NewStoreFromDraft opens an existing workout for editing. The draft becomes the baseline.
func NewStoreFromDraft(d *domain.WorkoutDraft, clk clock.Clock, historyLimit int) (*Store, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if !d.DocumentType.Valid() {
		return nil, domain.ErrUnknownDocumentType
	}
	if err := d.CheckContent(); err != nil {
		return nil, err
	}
	return newStoreFrom(d.Clone(), clk, historyLimit), nil
}

func newStoreFrom(d *domain.WorkoutDraft, clk clock.Clock, historyLimit int) *Store {
	return &Store{
		clock:    clk,
		current:  d,
		baseline: d.Clone(),
		history:  NewHistory(d, clk.Now(), historyLimit),
	}
}

// Draft returns a deep copy of the current draft.
func (s *Store) Draft() *domain.WorkoutDraft { return s.current.Clone() }

// Baseline returns a deep copy of the last saved (or initially loaded) draft.
func (s *Store) Baseline() *domain.WorkoutDraft { return s.baseline.Clone() }

func (s *Store) DocumentType() domain.DocumentType { return s.current.DocumentType }

// Version increases on every change to the current draft.
func (s *Store) Version() int { return s.version }

func (s *Store) Dirty() bool            { return s.dirty }
func (s *Store) LastSavedAt() time.Time { return s.lastSavedAt }
func (s *Store) History() *History      { return s.history }

// ApplyPatch merges p into the current draft, marks it dirty and pushes the
// result onto the history. An empty patch changes nothing.
func (s *Store) ApplyPatch(p domain.DraftPatch) error {
	if p.IsEmpty() {
		return nil
	}
	next, err := p.Apply(s.current)
	if err != nil {
		return err
	}
	s.current = next
	s.dirty = true
	s.version++
	s.history.Push(next, s.clock.Now())
	return nil
}

// ReplaceDraft swaps in d without merging and without touching history.
// Undo and redo restore snapshots through here.
func (s *Store) ReplaceDraft(d *domain.WorkoutDraft) error {
	if d.DocumentType != s.current.DocumentType {
		return domain.ErrContentMismatch
	}
	if err := d.CheckContent(); err != nil {
		return err
	}
	s.current = d.Clone()
	s.dirty = true
	s.version++
	return nil
}

// Undo restores the previous snapshot. It reports false when there is nothing to undo.
func (s *Store) Undo() bool {
	d, ok := s.history.Undo()
	if !ok {
		return false
	}
	return s.ReplaceDraft(d) == nil
}

// Redo re-applies the next snapshot. It reports false when there is nothing to redo.
func (s *Store) Redo() bool {
	d, ok := s.history.Redo()
	if !ok {
		return false
	}
	return s.ReplaceDraft(d) == nil
}

func (s *Store) CanUndo() bool { return s.history.CanUndo() }
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// HasUnsavedChanges compares the current draft with the baseline structurally.
func (s *Store) HasUnsavedChanges() bool {
	return !s.current.Equal(s.baseline)
}

// ResetToBaseline discards every edit and collapses history to a single entry.
func (s *Store) ResetToBaseline() {
	s.current = s.baseline.Clone()
	s.dirty = false
	s.version++
	s.history.Reset(s.current, s.clock.Now())
}

func (s *Store) MarkDirty() { s.dirty = true }
func (s *Store) MarkClean() { s.dirty = false }

// MarkSaved records that saved (captured at savedVersion) has been persisted.
// The baseline moves to saved; the dirty flag is only cleared when nothing
// changed while the save was in flight.
func (s *Store) MarkSaved(saved *domain.WorkoutDraft, savedVersion int, at time.Time) {
	s.baseline = saved.Clone()
	s.lastSavedAt = at
	if s.version == savedVersion {
		s.dirty = false
	}
}
