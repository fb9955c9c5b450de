package draft

import (
	"alcyxob/team-workouts/internal/clock"
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/validation"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

var (
	ErrSessionClosed  = errors.New("draft session is closed")
	ErrUnsavedChanges = errors.New("draft has unsaved changes")
	ErrNoSaver        = errors.New("draft session requires a saver")
)

// DefaultSavedResetDelay is how long the saved status is shown before going back to idle.
const DefaultSavedResetDelay = 2 * time.Second

// ValidationError is returned by Save when the draft fails structural validation.
type ValidationError struct {
	Result domain.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workout draft is invalid: %d error(s)", len(e.Result.Errors))
}

// Saver persists a draft. A returned error leaves the session dirty so the save can be retried.
type Saver interface {
	Save(ctx context.Context, d *domain.WorkoutDraft) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, d *domain.WorkoutDraft) error

func (f SaverFunc) Save(ctx context.Context, d *domain.WorkoutDraft) error { return f(ctx, d) }

// Validator is satisfied by *validation.Engine.
type Validator interface {
	Validate(ctx context.Context, d *domain.WorkoutDraft, in validation.Input) domain.ValidationResult
	ValidateStructure(d *domain.WorkoutDraft) domain.ValidationResult
}

// Options configures a Session. Saver is required; everything else has a default.
type Options struct {
	Saver     Saver
	Validator Validator
	Medical   validation.MedicalLookup
	Players   PlayerDirectory
	Teams     TeamDirectory
	Clock     clock.Clock

	HistoryLimit     int
	AutoSaveDelay    time.Duration
	AutoSaveDisabled bool
	SavedResetDelay  time.Duration
	ValidateOnChange bool

	// Hooks run outside the session lock, in the order the events happened.
	// OnValidated for a change-triggered validation runs on a background
	// goroutine that Close waits for, so it must not call Close or Cancel
	// itself; start them on a new goroutine instead.
	OnValidated    func(version int, res domain.ValidationResult)
	OnStatusChange func(status domain.SaveStatus)
	OnCancel       func()
}

// State is a point-in-time view of a session.
type State struct {
	Draft             *domain.WorkoutDraft
	Status            domain.SaveStatus
	Dirty             bool
	HasUnsavedChanges bool
	CanUndo           bool
	CanRedo           bool
	Version           int
	HistoryLength     int
	LastSavedAt       time.Time
	LastSaveError     string
	AutoSaveEnabled   bool
	AutoSavePending   bool
	Validation        *domain.ValidationResult
	ValidatedVersion  int
	Closed            bool
}

// Session is one editing session over a workout draft. It ties the Store,
// the History, the AutoSaver and the validation engine together behind plain
// method calls. All methods are safe for concurrent use.
//
// At most one save runs at a time. A manual Save waits for an in-flight save
// and then cancels the pending automatic one; an automatic save that finds a
// save in flight re-arms its timer instead of racing it.
type Session struct {
	mu        sync.Mutex
	store     *Store
	clock     clock.Clock
	saver     Saver
	validator Validator
	medical   validation.MedicalLookup
	players   PlayerDirectory
	teams     TeamDirectory
	autosave  *AutoSaver

	validateOnChange bool
	savedResetDelay  time.Duration
	resetTimer       clock.Timer

	status           domain.SaveStatus
	lastSaveErr      error
	validation       *domain.ValidationResult
	validatedVersion int

	saveSlot chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
	bg       conc.WaitGroup

	onValidated func(int, domain.ValidationResult)
	onStatus    func(domain.SaveStatus)
	onCancel    func()
	events      []func()
}

// NewSession starts editing a new workout of type t with initial merged over the defaults.
func NewSession(t domain.DocumentType, initial *domain.DraftPatch, opts Options) (*Session, error) {
	if opts.Saver == nil {
		return nil, ErrNoSaver
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	store, err := NewStore(t, initial, clk, opts.HistoryLimit)
	if err != nil {
		return nil, err
	}
	return newSession(store, clk, opts), nil
}

// OpenSession starts editing an existing workout; d becomes the baseline.
func OpenSession(d *domain.WorkoutDraft, opts Options) (*Session, error) {
	if opts.Saver == nil {
		return nil, ErrNoSaver
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	store, err := NewStoreFromDraft(d, clk, opts.HistoryLimit)
	if err != nil {
		return nil, err
	}
	return newSession(store, clk, opts), nil
}

func newSession(store *Store, clk clock.Clock, opts Options) *Session {
	v := opts.Validator
	if v == nil {
		v = validation.NewEngine(validation.DefaultConfig())
	}
	resetDelay := opts.SavedResetDelay
	if resetDelay <= 0 {
		resetDelay = DefaultSavedResetDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		store:            store,
		clock:            clk,
		saver:            opts.Saver,
		validator:        v,
		medical:          opts.Medical,
		players:          opts.Players,
		teams:            opts.Teams,
		validateOnChange: opts.ValidateOnChange,
		savedResetDelay:  resetDelay,
		status:           domain.SaveIdle,
		saveSlot:         make(chan struct{}, 1),
		ctx:              ctx,
		cancel:           cancel,
		onValidated:      opts.OnValidated,
		onStatus:         opts.OnStatusChange,
		onCancel:         opts.OnCancel,
	}
	s.autosave = NewAutoSaver(clk, opts.AutoSaveDelay, !opts.AutoSaveDisabled, s.autoSave)
	return s
}

// unlock releases the session lock and then runs the hooks queued while it was held.
func (s *Session) unlock() {
	events := s.events
	s.events = nil
	s.mu.Unlock()
	for _, f := range events {
		f()
	}
}

// --- Editing ---

// ApplyPatch merges p into the draft, records history, restarts the autosave
// countdown and, if enabled, schedules validation.
func (s *Session) ApplyPatch(p domain.DraftPatch) error {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrSessionClosed
	}
	before := s.store.Version()
	if err := s.store.ApplyPatch(p); err != nil {
		return err
	}
	if s.store.Version() != before {
		s.changedLocked(true)
	}
	return nil
}

func (s *Session) AddPlayer(id string) error    { return s.assign(s.store.AddPlayer, id) }
func (s *Session) RemovePlayer(id string) error { return s.assign(s.store.RemovePlayer, id) }
func (s *Session) AddTeam(id string) error      { return s.assign(s.store.AddTeam, id) }
func (s *Session) RemoveTeam(id string) error   { return s.assign(s.store.RemoveTeam, id) }

func (s *Session) assign(op func(string) (bool, error), id string) error {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrSessionClosed
	}
	changed, err := op(id)
	if err != nil {
		return err
	}
	if changed {
		s.changedLocked(true)
	}
	return nil
}

// Undo restores the previous snapshot. It reports false when there was nothing to undo.
// Undo is a direct mutation, so the pending autosave is cancelled rather than restarted.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return false
	}
	s.autosave.Cancel()
	ok := s.store.Undo()
	if ok {
		s.changedLocked(false)
	}
	return ok
}

// Redo re-applies the next snapshot. It reports false when there was nothing to redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return false
	}
	s.autosave.Cancel()
	ok := s.store.Redo()
	if ok {
		s.changedLocked(false)
	}
	return ok
}

// ResetToBaseline throws away every edit since the last save (or since opening).
func (s *Session) ResetToBaseline() error {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.autosave.Cancel()
	s.store.ResetToBaseline()
	s.changedLocked(false)
	return nil
}

func (s *Session) changedLocked(debounce bool) {
	if debounce {
		s.autosave.Touch()
	}
	if s.validateOnChange {
		s.validateAsyncLocked()
	}
}

// --- Validation ---

// Validate runs the full pipeline, including the medical stage, against the
// current draft and records the result.
func (s *Session) Validate(ctx context.Context) (domain.ValidationResult, error) {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return domain.ValidationResult{}, ErrSessionClosed
	}
	d, v := s.store.Draft(), s.store.Version()
	s.unlock()

	res := s.runValidation(ctx, d)
	s.recordValidation(v, res)
	return res, nil
}

// LastValidation returns the newest recorded result and the draft version it was computed for.
func (s *Session) LastValidation() (domain.ValidationResult, int, bool) {
	s.mu.Lock()
	defer s.unlock()
	if s.validation == nil {
		return domain.ValidationResult{}, 0, false
	}
	return *s.validation, s.validatedVersion, true
}

func (s *Session) validateAsyncLocked() {
	d, v, ctx := s.store.Draft(), s.store.Version(), s.ctx
	s.bg.Go(func() {
		res := s.runValidation(ctx, d)
		s.recordValidation(v, res)
	})
}

func (s *Session) runValidation(ctx context.Context, d *domain.WorkoutDraft) domain.ValidationResult {
	in := validation.Input{Medical: s.medical}
	players, teams, err := resolveRoster(ctx, d, s.players, s.teams)
	if err != nil {
		log.Printf("WARN: could not resolve roster for validation: %v", err)
	} else {
		in.Players, in.Teams = players, teams
	}
	return s.validator.Validate(ctx, d, in)
}

// recordValidation keeps res unless a result for a newer draft version is already stored.
func (s *Session) recordValidation(version int, res domain.ValidationResult) {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return
	}
	s.storeValidationLocked(version, res, false)
}

// storeValidationLocked records res for version. A structural-only result
// never replaces a stored result for the same version, which may carry
// medical warnings.
func (s *Session) storeValidationLocked(version int, res domain.ValidationResult, structural bool) {
	if s.validation != nil {
		if version < s.validatedVersion || (structural && version == s.validatedVersion) {
			return
		}
	}
	s.validation = &res
	s.validatedVersion = version
	if s.onValidated != nil {
		cb := s.onValidated
		s.events = append(s.events, func() { cb(version, res) })
	}
}

// --- Persistence ---

// Save persists the current draft. It cancels the pending autosave, waits for
// any save already in flight and refuses to save a structurally invalid draft
// (returning *ValidationError).
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return ErrSessionClosed
	}
	s.autosave.Cancel()
	s.unlock()

	select {
	case s.saveSlot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrSessionClosed
	}
	defer s.releaseSlot()

	// an autosave may have been armed by a patch while we waited
	s.autosave.Cancel()
	return s.persist(ctx, true)
}

func (s *Session) releaseSlot() { <-s.saveSlot }

func (s *Session) autoSave() {
	select {
	case s.saveSlot <- struct{}{}:
	default:
		s.autosave.Touch()
		return
	}
	defer s.releaseSlot()
	if err := s.persist(s.ctx, false); err != nil && !errors.Is(err, ErrSessionClosed) {
		log.Printf("WARN: autosave failed: %v", err)
	}
}

// persist must be called with the save slot held.
func (s *Session) persist(ctx context.Context, manual bool) error {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return ErrSessionClosed
	}
	if !manual && (!s.autosave.Enabled() || !s.store.Dirty() || !s.store.HasUnsavedChanges()) {
		s.unlock()
		return nil
	}
	d, v := s.store.Draft(), s.store.Version()
	if manual {
		if res := s.validator.ValidateStructure(d); !res.IsValid {
			s.storeValidationLocked(v, res, true)
			s.unlock()
			return &ValidationError{Result: res}
		}
	}
	s.stopResetTimerLocked()
	s.setStatusLocked(domain.SaveSaving)
	s.unlock()

	err := s.saver.Save(ctx, d)

	s.mu.Lock()
	defer s.unlock()
	if err != nil {
		s.lastSaveErr = err
		s.setStatusLocked(domain.SaveError)
		return fmt.Errorf("save workout draft: %w", err)
	}
	s.lastSaveErr = nil
	s.store.MarkSaved(d, v, s.clock.Now())
	s.setStatusLocked(domain.SaveSaved)
	if !s.closed {
		s.resetTimer = s.clock.AfterFunc(s.savedResetDelay, s.resetStatus)
	}
	return nil
}

func (s *Session) resetStatus() {
	s.mu.Lock()
	defer s.unlock()
	s.resetTimer = nil
	if s.status == domain.SaveSaved && !s.closed {
		s.setStatusLocked(domain.SaveIdle)
	}
}

func (s *Session) stopResetTimerLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *Session) setStatusLocked(st domain.SaveStatus) {
	if s.status == st {
		return
	}
	s.status = st
	if s.onStatus != nil {
		cb := s.onStatus
		s.events = append(s.events, func() { cb(st) })
	}
}

// EnableAutoSave turns automatic saving on. If there are unsaved changes a
// countdown starts straight away.
func (s *Session) EnableAutoSave() {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return
	}
	s.autosave.Enable()
	if s.store.Dirty() && s.store.HasUnsavedChanges() {
		s.autosave.Touch()
	}
}

// DisableAutoSave turns automatic saving off and cancels the pending countdown.
// An automatic save that has not reached the saver by the time it returns is dropped.
func (s *Session) DisableAutoSave() {
	s.mu.Lock()
	defer s.unlock()
	s.autosave.Disable()
}

// --- Lifecycle ---

// Cancel ends the session without saving. Unless force is set it refuses with
// ErrUnsavedChanges when there is something to lose, so the caller can ask
// for confirmation first. Cancelling a closed session does nothing.
func (s *Session) Cancel(force bool) error {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return nil
	}
	if !force && s.store.HasUnsavedChanges() {
		s.unlock()
		return ErrUnsavedChanges
	}
	s.shutdownLocked()
	s.unlock()

	err := s.waitBackground()
	if s.onCancel != nil {
		s.onCancel()
	}
	return err
}

// Close tears the session down: timers are cancelled, in-flight work is told
// to stop and background validations are waited for. It must not be called
// from an OnValidated hook.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return nil
	}
	s.shutdownLocked()
	s.unlock()
	return s.waitBackground()
}

func (s *Session) shutdownLocked() {
	s.closed = true
	s.autosave.Stop()
	s.stopResetTimerLocked()
	s.cancel()
}

func (s *Session) waitBackground() error {
	if r := s.bg.WaitAndRecover(); r != nil {
		return r.AsError()
	}
	return nil
}

// --- Queries ---

func (s *Session) Draft() *domain.WorkoutDraft {
	s.mu.Lock()
	defer s.unlock()
	return s.store.Draft()
}

func (s *Session) DocumentType() domain.DocumentType {
	s.mu.Lock()
	defer s.unlock()
	return s.store.DocumentType()
}

func (s *Session) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.unlock()
	return s.store.HasUnsavedChanges()
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.unlock()
	return !s.closed && s.store.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.unlock()
	return !s.closed && s.store.CanRedo()
}

func (s *Session) Status() domain.SaveStatus {
	s.mu.Lock()
	defer s.unlock()
	return s.status
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.unlock()
	return s.closed
}

// State returns a consistent snapshot of everything a caller may want to render.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.unlock()
	st := State{
		Draft:             s.store.Draft(),
		Status:            s.status,
		Dirty:             s.store.Dirty(),
		HasUnsavedChanges: s.store.HasUnsavedChanges(),
		CanUndo:           !s.closed && s.store.CanUndo(),
		CanRedo:           !s.closed && s.store.CanRedo(),
		Version:           s.store.Version(),
		HistoryLength:     s.store.History().Len(),
		LastSavedAt:       s.store.LastSavedAt(),
		AutoSaveEnabled:   s.autosave.Enabled(),
		AutoSavePending:   s.autosave.Pending(),
		ValidatedVersion:  s.validatedVersion,
		Closed:            s.closed,
	}
	if s.lastSaveErr != nil {
		st.LastSaveError = s.lastSaveErr.Error()
	}
	if s.validation != nil {
		res := *s.validation
		st.Validation = &res
	}
	return st
}
