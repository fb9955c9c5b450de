package service

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validStrengthDraft(t *testing.T) *domain.WorkoutDraft {
	t.Helper()
	d, err := domain.NewWorkoutDraft(domain.DocumentStrength, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	d.Name = "Lower body"
	d.DurationMinutes = 45
	d.AssignedPlayerIDs = []string{"p1"}
	d.Content = &domain.StrengthContent{Exercises: []domain.StrengthExercise{{Name: "Deadlift", Sets: 3, Reps: 5}}}
	return d
}

func TestSaveDraftCreatesThenUpdatesAndArchives(t *testing.T) {
	repo := newFakeWorkoutRepo()
	archive := &fakeStorage{}
	svc := NewWorkoutService(repo, &fakeMedicalRepo{}, archive).(*workoutService)
	tick := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { tick = tick.Add(time.Second); return tick }
	coach := primitive.NewObjectID()
	ctx := context.Background()

	w, err := svc.SaveDraft(ctx, coach, primitive.NilObjectID, validStrengthDraft(t))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if w.ID == primitive.NilObjectID || w.Version != 1 {
		t.Fatalf("created workout = %+v", w)
	}

	d := validStrengthDraft(t)
	d.Name = "Lower body (v2)"
	w2, err := svc.SaveDraft(ctx, coach, w.ID, d)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if w2.ID != w.ID || w2.Version != 2 {
		t.Errorf("update = id %s version %d, want %s version 2", w2.ID.Hex(), w2.Version, w.ID.Hex())
	}
	if repo.creates != 1 || repo.updates != 1 {
		t.Errorf("creates=%d updates=%d", repo.creates, repo.updates)
	}
	if len(archive.objects) != 2 {
		t.Fatalf("archived %d objects, want 2", len(archive.objects))
	}

	stored, _ := repo.GetByID(ctx, w.ID)
	if !strings.HasPrefix(stored.ArchiveKey, "workouts/"+w.ID.Hex()+"/") {
		t.Errorf("archive key = %q", stored.ArchiveKey)
	}
	var archived struct {
		Draft struct {
			Name string `json:"name"`
		} `json:"draft"`
	}
	if err := json.Unmarshal(archive.objects[stored.ArchiveKey], &archived); err != nil {
		t.Fatal(err)
	}
	if archived.Draft.Name != "Lower body (v2)" {
		t.Errorf("newest archive holds %q", archived.Draft.Name)
	}

	url, err := svc.ArchiveURL(ctx, coach, w.ID)
	if err != nil || !strings.Contains(url, stored.ArchiveKey) {
		t.Errorf("ArchiveURL = %q, %v", url, err)
	}
}

func TestSaveDraftSurvivesArchiveFailure(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewWorkoutService(repo, &fakeMedicalRepo{}, &fakeStorage{putErr: errors.New("bucket gone")})
	coach := primitive.NewObjectID()

	w, err := svc.SaveDraft(context.Background(), coach, primitive.NilObjectID, validStrengthDraft(t))
	if err != nil {
		t.Fatalf("save should not fail on archive errors: %v", err)
	}
	if w.ArchiveKey != "" {
		t.Errorf("ArchiveKey = %q, want empty", w.ArchiveKey)
	}
	if _, err := svc.ArchiveURL(context.Background(), coach, w.ID); !errors.Is(err, ErrNoArchive) {
		t.Errorf("ArchiveURL err = %v, want ErrNoArchive", err)
	}
}

func TestWorkoutAccessIsScopedToCoach(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewWorkoutService(repo, &fakeMedicalRepo{}, nil)
	owner, other := primitive.NewObjectID(), primitive.NewObjectID()
	ctx := context.Background()

	w, err := svc.SaveDraft(ctx, owner, primitive.NilObjectID, validStrengthDraft(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetWorkout(ctx, other, w.ID); !errors.Is(err, ErrWorkoutAccessDenied) {
		t.Errorf("GetWorkout by other coach: %v", err)
	}
	if _, err := svc.SaveDraft(ctx, other, w.ID, validStrengthDraft(t)); !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("update by other coach: %v", err)
	}
	if _, err := svc.GetWorkout(ctx, owner, primitive.NewObjectID()); !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("missing workout: %v", err)
	}
	if _, err := svc.ArchiveURL(ctx, owner, w.ID); !errors.Is(err, storage.ErrDisabled) {
		t.Errorf("ArchiveURL without storage: %v", err)
	}

	list, err := svc.ListWorkouts(ctx, other)
	if err != nil || list == nil || len(list) != 0 {
		t.Errorf("ListWorkouts(other) = %v, %v", list, err)
	}
}

func TestUpdateMedicalReport(t *testing.T) {
	medical := &fakeMedicalRepo{}
	svc := NewWorkoutService(newFakeWorkoutRepo(), medical, nil)
	ctx := context.Background()

	err := svc.UpdateMedicalReport(ctx, domain.MedicalRecord{PlayerID: "p1", Status: "broken"})
	if !errors.Is(err, ErrInvalidMedical) {
		t.Errorf("invalid status: err = %v", err)
	}
	rec := domain.MedicalRecord{
		PlayerID:     "p1",
		Status:       domain.MedicalInjured,
		Restrictions: []domain.Restriction{{Category: domain.RestrictBodyPart, Value: "knee"}},
	}
	if err := svc.UpdateMedicalReport(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if got := medical.records["p1"]; got.Status != domain.MedicalInjured || len(got.Restrictions) != 1 {
		t.Errorf("stored record = %+v", got)
	}
}
