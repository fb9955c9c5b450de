package service

import (
	"alcyxob/team-workouts/internal/clock"
	"alcyxob/team-workouts/internal/config"
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/draft"
	"alcyxob/team-workouts/internal/validation"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

var (
	ErrDraftNotFound     = errors.New("draft session not found")
	ErrDraftAccessDenied = errors.New("access denied to this draft session")
)

// reapSaveTimeout bounds the last-chance save of an idle session.
const reapSaveTimeout = 10 * time.Second

// StartDraftInput describes a new editing session. A non-nil WorkoutID opens
// that saved workout for editing and DocumentType is ignored.
type StartDraftInput struct {
	DocumentType domain.DocumentType
	UseTemplate  bool
	WorkoutID    primitive.ObjectID
	// Initial is applied over the defaults (or over the template, as an undoable edit).
	Initial *domain.DraftPatch
}

// DraftView is what callers see of a session.
type DraftView struct {
	ID        string
	WorkoutID primitive.ObjectID // nil until the first successful save
	draft.State
}

type DraftService interface {
	Start(ctx context.Context, coachID primitive.ObjectID, in StartDraftInput) (*DraftView, error)
	State(coachID primitive.ObjectID, id string) (*DraftView, error)
	Patch(coachID primitive.ObjectID, id string, p domain.DraftPatch) (*DraftView, error)
	Undo(coachID primitive.ObjectID, id string) (*DraftView, error)
	Redo(coachID primitive.ObjectID, id string) (*DraftView, error)
	Reset(coachID primitive.ObjectID, id string) (*DraftView, error)
	Validate(ctx context.Context, coachID primitive.ObjectID, id string) (domain.ValidationResult, error)
	Save(ctx context.Context, coachID primitive.ObjectID, id string) (*DraftView, error)
	SetAutoSave(coachID primitive.ObjectID, id string, enabled bool) (*DraftView, error)
	AddPlayer(coachID primitive.ObjectID, id, playerID string) (*DraftView, error)
	RemovePlayer(coachID primitive.ObjectID, id, playerID string) (*DraftView, error)
	AddTeam(coachID primitive.ObjectID, id, teamID string) (*DraftView, error)
	RemoveTeam(coachID primitive.ObjectID, id, teamID string) (*DraftView, error)
	// Cancel ends the session. Without force it fails with draft.ErrUnsavedChanges
	// when there is something to lose.
	Cancel(coachID primitive.ObjectID, id string, force bool) error
	// ReapIdle closes sessions untouched for longer than the idle timeout and
	// reports how many were closed.
	ReapIdle(ctx context.Context) int
	Close() error
}

// DraftDeps are the collaborators every session is built with.
type DraftDeps struct {
	Workouts  WorkoutService
	Medical   validation.MedicalLookup
	Players   draft.PlayerDirectory
	Teams     draft.TeamDirectory
	Validator draft.Validator
	Clock     clock.Clock // defaults to the real clock
}

type draftEntry struct {
	id      string
	coachID primitive.ObjectID
	session *draft.Session

	mu        sync.Mutex
	workoutID primitive.ObjectID
	lastUsed  time.Time
}

func (e *draftEntry) savedID() primitive.ObjectID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workoutID
}

func (e *draftEntry) view() *DraftView {
	return &DraftView{ID: e.id, WorkoutID: e.savedID(), State: e.session.State()}
}

type draftService struct {
	deps  DraftDeps
	cfg   config.DraftsConfig
	clock clock.Clock

	mu       sync.Mutex
	sessions map[string]*draftEntry
}

// NewDraftService creates the in-memory session registry.
func NewDraftService(deps DraftDeps, cfg config.DraftsConfig) DraftService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &draftService{
		deps:     deps,
		cfg:      cfg,
		clock:    clk,
		sessions: make(map[string]*draftEntry),
	}
}

func (s *draftService) Start(ctx context.Context, coachID primitive.ObjectID, in StartDraftInput) (*DraftView, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	e := &draftEntry{id: uuid.NewString(), coachID: coachID, lastUsed: s.clock.Now()}
	opts := s.sessionOptions(e)

	var (
		sess *draft.Session
		err  error
	)
	switch {
	case in.WorkoutID != primitive.NilObjectID:
		w, gerr := s.deps.Workouts.GetWorkout(ctx, coachID, in.WorkoutID)
		if gerr != nil {
			return nil, gerr
		}
		e.workoutID = w.ID
		sess, err = draft.OpenSession(w.Draft, opts)
	case in.UseTemplate:
		tmpl := domain.Template(in.DocumentType)
		sess, err = draft.NewSession(in.DocumentType, &tmpl, opts)
	default:
		sess, err = draft.NewSession(in.DocumentType, in.Initial, opts)
		in.Initial = nil
	}
	if err != nil {
		return nil, err
	}
	e.session = sess

	if in.Initial != nil && !in.Initial.IsEmpty() {
		if err := sess.ApplyPatch(*in.Initial); err != nil {
			_ = sess.Close()
			return nil, err
		}
	}

	s.mu.Lock()
	s.sessions[e.id] = e
	s.mu.Unlock()
	log.Printf("INFO: Draft session %s started by coach %s (%s)", e.id, coachID.Hex(), sess.DocumentType())
	return e.view(), nil
}

// sessionOptions builds the session configuration. The saver creates the
// workout on the first save and updates the same record afterwards.
func (s *draftService) sessionOptions(e *draftEntry) draft.Options {
	return draft.Options{
		Saver: draft.SaverFunc(func(ctx context.Context, d *domain.WorkoutDraft) error {
			w, err := s.deps.Workouts.SaveDraft(ctx, e.coachID, e.savedID(), d)
			if err != nil {
				return err
			}
			e.mu.Lock()
			e.workoutID = w.ID
			e.mu.Unlock()
			return nil
		}),
		Validator:        s.deps.Validator,
		Medical:          s.deps.Medical,
		Players:          s.deps.Players,
		Teams:            s.deps.Teams,
		Clock:            s.clock,
		HistoryLimit:     s.cfg.HistoryLimit,
		AutoSaveDelay:    s.cfg.AutoSaveDelay,
		AutoSaveDisabled: !s.cfg.AutoSaveEnabled,
		SavedResetDelay:  s.cfg.SavedResetDelay,
		ValidateOnChange: s.cfg.ValidateOnChange,
		OnStatusChange: func(st domain.SaveStatus) {
			if st == domain.SaveError {
				log.Printf("WARN: Draft session %s failed to save", e.id)
			}
		},
	}
}

// lookup finds the caller's session and marks it as used.
func (s *draftService) lookup(coachID primitive.ObjectID, id string) (*draftEntry, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	if e.coachID != coachID {
		return nil, ErrDraftAccessDenied
	}
	e.mu.Lock()
	e.lastUsed = s.clock.Now()
	e.mu.Unlock()
	return e, nil
}

func (s *draftService) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *draftService) State(coachID primitive.ObjectID, id string) (*DraftView, error) {
	e, err := s.lookup(coachID, id)
	if err != nil {
		return nil, err
	}
	return e.view(), nil
}

func (s *draftService) Patch(coachID primitive.ObjectID, id string, p domain.DraftPatch) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { return sess.ApplyPatch(p) })
}

// Undo with nothing to undo is not an error; the unchanged view is returned.
func (s *draftService) Undo(coachID primitive.ObjectID, id string) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { sess.Undo(); return nil })
}

func (s *draftService) Redo(coachID primitive.ObjectID, id string) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { sess.Redo(); return nil })
}

func (s *draftService) Reset(coachID primitive.ObjectID, id string) (*DraftView, error) {
	return s.edit(coachID, id, (*draft.Session).ResetToBaseline)
}

func (s *draftService) SetAutoSave(coachID primitive.ObjectID, id string, enabled bool) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error {
		if enabled {
			sess.EnableAutoSave()
		} else {
			sess.DisableAutoSave()
		}
		return nil
	})
}

func (s *draftService) AddPlayer(coachID primitive.ObjectID, id, playerID string) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { return sess.AddPlayer(playerID) })
}

func (s *draftService) RemovePlayer(coachID primitive.ObjectID, id, playerID string) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { return sess.RemovePlayer(playerID) })
}

func (s *draftService) AddTeam(coachID primitive.ObjectID, id, teamID string) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { return sess.AddTeam(teamID) })
}

func (s *draftService) RemoveTeam(coachID primitive.ObjectID, id, teamID string) (*DraftView, error) {
	return s.edit(coachID, id, func(sess *draft.Session) error { return sess.RemoveTeam(teamID) })
}

func (s *draftService) edit(coachID primitive.ObjectID, id string, op func(*draft.Session) error) (*DraftView, error) {
	e, err := s.lookup(coachID, id)
	if err != nil {
		return nil, err
	}
	if err := op(e.session); err != nil {
		return nil, err
	}
	return e.view(), nil
}

func (s *draftService) Validate(ctx context.Context, coachID primitive.ObjectID, id string) (domain.ValidationResult, error) {
	e, err := s.lookup(coachID, id)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return e.session.Validate(ctx)
}

func (s *draftService) Save(ctx context.Context, coachID primitive.ObjectID, id string) (*DraftView, error) {
	e, err := s.lookup(coachID, id)
	if err != nil {
		return nil, err
	}
	if err := e.session.Save(ctx); err != nil {
		return nil, err
	}
	return e.view(), nil
}

func (s *draftService) Cancel(coachID primitive.ObjectID, id string, force bool) error {
	e, err := s.lookup(coachID, id)
	if err != nil {
		return err
	}
	if err := e.session.Cancel(force); err != nil {
		return err
	}
	s.remove(id)
	log.Printf("INFO: Draft session %s cancelled", id)
	return nil
}

func (s *draftService) ReapIdle(ctx context.Context) int {
	timeout := s.cfg.SessionIdleTimeout
	if timeout <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-timeout)

	var idle []*draftEntry
	s.mu.Lock()
	for id, e := range s.sessions {
		e.mu.Lock()
		stale := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if stale {
			idle = append(idle, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range idle {
		if e.session.HasUnsavedChanges() {
			saveCtx, cancel := context.WithTimeout(ctx, reapSaveTimeout)
			if err := e.session.Save(saveCtx); err != nil {
				log.Printf("WARN: Idle draft session %s closed with unsaved changes: %v", e.id, err)
			}
			cancel()
		}
		if err := e.session.Close(); err != nil {
			log.Printf("ERROR: closing draft session %s: %v", e.id, err)
		}
		log.Printf("INFO: Draft session %s reaped after %s idle", e.id, timeout)
	}
	return len(idle)
}

// Close tears down every open session. Unsaved edits are discarded.
func (s *draftService) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*draftEntry)
	s.mu.Unlock()

	var err error
	for _, e := range sessions {
		err = multierr.Append(err, e.session.Close())
	}
	if n := len(sessions); n > 0 {
		log.Printf("INFO: Closed %d draft session(s)", n)
	}
	return err
}
