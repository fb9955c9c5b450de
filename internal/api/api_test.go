package api

import (
	"alcyxob/team-workouts/internal/config"
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/repository"
	"alcyxob/team-workouts/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memUsers) Create(ctx context.Context, u *domain.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	m.users[u.Email] = *u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

type memWorkouts struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout
}

func (m *memWorkouts) Create(ctx context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.ID = primitive.NewObjectID()
	w.Version = 1
	stored := *w
	stored.Draft = w.Draft.Clone()
	m.workouts[w.ID] = stored
	return w.ID, nil
}

func (m *memWorkouts) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.Draft = w.Draft.Clone()
	return &w, nil
}

func (m *memWorkouts) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Workout
	for _, w := range m.workouts {
		if w.CoachID == coachID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memWorkouts) Update(ctx context.Context, w *domain.Workout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.workouts[w.ID]
	if !ok || stored.CoachID != w.CoachID {
		return repository.ErrNotFound
	}
	stored.Draft = w.Draft.Clone()
	stored.Version++
	w.Version = stored.Version
	m.workouts[w.ID] = stored
	return nil
}

func (m *memWorkouts) SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error {
	return nil
}

type memMedical struct {
	mu      sync.Mutex
	records map[string]domain.MedicalRecord
}

func (m *memMedical) Lookup(ctx context.Context, ids []string) ([]domain.MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MedicalRecord
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memMedical) Upsert(ctx context.Context, r domain.MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.PlayerID] = r
	return nil
}

type testServer struct {
	router  *gin.Engine
	medical *memMedical
	drafts  service.DraftService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	medical := &memMedical{records: map[string]domain.MedicalRecord{}}
	workouts := service.NewWorkoutService(&memWorkouts{workouts: map[primitive.ObjectID]domain.Workout{}}, medical, nil)
	drafts := service.NewDraftService(service.DraftDeps{Workouts: workouts, Medical: medical}, config.DraftsConfig{
		HistoryLimit:    20,
		SavedResetDelay: time.Minute,
	})
	t.Cleanup(func() { _ = drafts.Close() })

	router := gin.New()
	auth := service.NewAuthService(&memUsers{users: map[string]domain.User{}}, testSecret, time.Hour)
	SetupRoutes(router, testSecret, auth, drafts, workouts)
	return &testServer{router: router, medical: medical, drafts: drafts}
}

func tokenFor(t *testing.T, id primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := &service.JWTClaims{
		UserID: id.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestAuthRequiredAndRoles(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(t, http.MethodPost, "/api/v1/drafts", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", w.Code)
	}
	viewer := tokenFor(t, primitive.NewObjectID(), domain.RoleViewer)
	if w := ts.do(t, http.MethodPost, "/api/v1/drafts", viewer, map[string]any{"documentType": "strength"}); w.Code != http.StatusForbidden {
		t.Errorf("viewer starting a draft: %d", w.Code)
	}
	coach := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)
	if w := ts.do(t, http.MethodPut, "/api/v1/medical/p1", coach, map[string]any{"status": "injured"}); w.Code != http.StatusForbidden {
		t.Errorf("coach editing medical: %d", w.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)
	reg := map[string]any{"name": "Ana", "email": "ana@club.test", "password": "correct horse", "role": "coach"}

	if w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", reg); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
	if w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", reg); w.Code != http.StatusConflict {
		t.Errorf("duplicate register: %d", w.Code)
	}
	bad := map[string]any{"name": "X", "email": "x@club.test", "password": "longenough", "role": "trainer"}
	if w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", bad); w.Code != http.StatusBadRequest {
		t.Errorf("unknown role: %d", w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "ana@club.test", "password": "correct horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
	login := decode[LoginResponse](t, w)
	if me := ts.do(t, http.MethodGet, "/api/v1/me", login.Token, nil); me.Code != http.StatusOK {
		t.Errorf("/me with issued token: %d", me.Code)
	}
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	coach := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)

	w := ts.do(t, http.MethodPost, "/api/v1/drafts", coach, map[string]any{"documentType": "conditioning", "useTemplate": true})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", w.Code, w.Body)
	}
	started := decode[DraftResponse](t, w)
	base := "/api/v1/drafts/" + started.ID
	if started.TotalSeconds == 0 {
		t.Error("template should have a computed duration")
	}

	patch := map[string]any{
		"name": "Shuttle intervals",
		"date": "2026-09-14",
		"conditioning": map[string]any{"intervals": []map[string]any{
			{"name": "Shuttle", "durationSeconds": 30, "restSeconds": 30, "repeats": 6},
		}},
	}
	w = ts.do(t, http.MethodPatch, base, coach, patch)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body)
	}
	patched := decode[DraftResponse](t, w)
	if !patched.HasUnsavedChanges || !patched.CanUndo || patched.TotalSeconds != 360 {
		t.Errorf("after patch: %+v", patched)
	}

	w = ts.do(t, http.MethodPost, base+"/save", coach, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("save without assignments: %d %s", w.Code, w.Body)
	}
	invalid := decode[struct {
		Validation domain.ValidationResult `json:"validation"`
	}](t, w)
	if !invalid.Validation.HasError(domain.CodeNoAssignments, "assignments") {
		t.Errorf("validation = %+v", invalid.Validation)
	}

	if w = ts.do(t, http.MethodPost, base+"/teams/t1", coach, nil); w.Code != http.StatusOK {
		t.Fatalf("add team: %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, base+"/save", coach, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body)
	}
	saved := decode[DraftResponse](t, w)
	if saved.WorkoutID == "" || saved.HasUnsavedChanges || saved.Status != domain.SaveSaved || saved.LastSavedAt == nil {
		t.Errorf("after save: %+v", saved)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/workouts/"+saved.WorkoutID, coach, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get workout: %d", w.Code)
	}
	if got := decode[WorkoutResponse](t, w); got.Draft.Name != "Shuttle intervals" || got.Version != 1 {
		t.Errorf("stored workout = %+v", got)
	}
	other := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)
	if w = ts.do(t, http.MethodGet, "/api/v1/workouts/"+saved.WorkoutID, other, nil); w.Code != http.StatusForbidden {
		t.Errorf("other coach reading workout: %d", w.Code)
	}
	if w = ts.do(t, http.MethodGet, "/api/v1/workouts/"+saved.WorkoutID+"/archive", coach, nil); w.Code != http.StatusNotImplemented {
		t.Errorf("archive without storage: %d", w.Code)
	}

	if w = ts.do(t, http.MethodDelete, base, coach, nil); w.Code != http.StatusNoContent {
		t.Errorf("cancel clean draft: %d", w.Code)
	}
	if w = ts.do(t, http.MethodGet, base, coach, nil); w.Code != http.StatusNotFound {
		t.Errorf("cancelled draft still served: %d", w.Code)
	}
}

func TestCancelWithUnsavedChangesNeedsForce(t *testing.T) {
	ts := newTestServer(t)
	coach := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)
	w := ts.do(t, http.MethodPost, "/api/v1/drafts", coach, map[string]any{"documentType": "agility"})
	base := "/api/v1/drafts/" + decode[DraftResponse](t, w).ID

	ts.do(t, http.MethodPost, base+"/players/p9", coach, nil)
	if w = ts.do(t, http.MethodDelete, base, coach, nil); w.Code != http.StatusConflict {
		t.Errorf("cancel with unsaved changes: %d", w.Code)
	}
	if w = ts.do(t, http.MethodDelete, base+"?force=true", coach, nil); w.Code != http.StatusNoContent {
		t.Errorf("forced cancel: %d", w.Code)
	}
}

func TestPatchRejectsBadContent(t *testing.T) {
	ts := newTestServer(t)
	coach := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)
	w := ts.do(t, http.MethodPost, "/api/v1/drafts", coach, map[string]any{"documentType": "strength"})
	base := "/api/v1/drafts/" + decode[DraftResponse](t, w).ID

	cases := []struct {
		name string
		body map[string]any
	}{
		{"two payloads", map[string]any{"strength": map[string]any{"exercises": []any{}}, "agility": map[string]any{"drills": []any{}}}},
		{"wrong variant", map[string]any{"agility": map[string]any{"drills": []any{}}}},
		{"bad date", map[string]any{"date": "14/09/2026"}},
		{"bad intensity", map[string]any{"intensity": "extreme"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := ts.do(t, http.MethodPatch, base, coach, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, body %s", w.Code, w.Body)
			}
		})
	}

	if w := ts.do(t, http.MethodPost, "/api/v1/drafts", coach, map[string]any{"documentType": "yoga"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown document type: %d", w.Code)
	}
}

func TestUndoRedoAndAutoSaveToggle(t *testing.T) {
	ts := newTestServer(t)
	coach := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)
	w := ts.do(t, http.MethodPost, "/api/v1/drafts", coach, map[string]any{"documentType": "hybrid"})
	base := "/api/v1/drafts/" + decode[DraftResponse](t, w).ID

	ts.do(t, http.MethodPatch, base, coach, map[string]any{"name": "A"})
	ts.do(t, http.MethodPatch, base, coach, map[string]any{"name": "B"})

	undone := decode[DraftResponse](t, ts.do(t, http.MethodPost, base+"/undo", coach, nil))
	if undone.Draft.Name != "A" || !undone.CanRedo {
		t.Errorf("after undo: name=%q canRedo=%v", undone.Draft.Name, undone.CanRedo)
	}
	redone := decode[DraftResponse](t, ts.do(t, http.MethodPost, base+"/redo", coach, nil))
	if redone.Draft.Name != "B" {
		t.Errorf("after redo: name=%q", redone.Draft.Name)
	}
	reset := decode[DraftResponse](t, ts.do(t, http.MethodPost, base+"/reset", coach, nil))
	if reset.Draft.Name != "" || reset.HasUnsavedChanges || reset.CanUndo {
		t.Errorf("after reset: %+v", reset)
	}

	off := decode[DraftResponse](t, ts.do(t, http.MethodPut, base+"/autosave", coach, map[string]any{"enabled": false}))
	if off.AutoSaveEnabled {
		t.Error("autosave still enabled")
	}
	if w := ts.do(t, http.MethodPut, base+"/autosave", coach, map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing enabled flag: %d", w.Code)
	}
}

func TestValidateReportsMedicalWarnings(t *testing.T) {
	ts := newTestServer(t)
	medicalStaff := tokenFor(t, primitive.NewObjectID(), domain.RoleMedical)
	report := map[string]any{
		"status":       "injured",
		"restrictions": []map[string]any{{"category": "body_part", "value": "shoulder"}},
	}
	if w := ts.do(t, http.MethodPut, "/api/v1/medical/p1", medicalStaff, report); w.Code != http.StatusNoContent {
		t.Fatalf("put medical: %d %s", w.Code, w.Body)
	}

	coach := tokenFor(t, primitive.NewObjectID(), domain.RoleCoach)
	w := ts.do(t, http.MethodPost, "/api/v1/drafts", coach, map[string]any{
		"documentType": "strength",
		"initial": map[string]any{
			"name":              "Upper body",
			"assignedPlayerIds": []string{"p1"},
			"strength":          map[string]any{"exercises": []map[string]any{{"name": "Shoulder press", "sets": 3, "reps": 8}}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", w.Code, w.Body)
	}
	id := decode[DraftResponse](t, w).ID

	w = ts.do(t, http.MethodPost, "/api/v1/drafts/"+id+"/validate", coach, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("validate: %d", w.Code)
	}
	res := decode[domain.ValidationResult](t, w)
	if !res.IsValid || !res.HasWarning(domain.CodeMedicalBodyPart, "") {
		t.Errorf("result = %+v", res)
	}
}
