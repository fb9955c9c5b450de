package service

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/repository"
	"alcyxob/team-workouts/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("access denied to this workout")
	ErrNoArchive           = errors.New("workout has no archived copy")
	ErrInvalidMedical      = errors.New("medical report requires a valid status")
)

type WorkoutService interface {
	// SaveDraft creates the workout when id is nil, otherwise updates it.
	// The returned workout carries the stored ID and version.
	SaveDraft(ctx context.Context, coachID, id primitive.ObjectID, d *domain.WorkoutDraft) (*domain.Workout, error)
	GetWorkout(ctx context.Context, coachID, id primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, coachID primitive.ObjectID) ([]domain.Workout, error)
	ArchiveURL(ctx context.Context, coachID, id primitive.ObjectID) (string, error)
	UpdateMedicalReport(ctx context.Context, record domain.MedicalRecord) error
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	medicalRepo repository.MedicalRepository
	archive     storage.FileStorage // nil disables archiving
	now         func() time.Time
}

// NewWorkoutService wires the workout store. archive may be nil.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, medicalRepo repository.MedicalRepository, archive storage.FileStorage) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		medicalRepo: medicalRepo,
		archive:     archive,
		now:         time.Now,
	}
}

func (s *workoutService) SaveDraft(ctx context.Context, coachID, id primitive.ObjectID, d *domain.WorkoutDraft) (*domain.Workout, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	w := &domain.Workout{ID: id, CoachID: coachID, Draft: d.Clone()}

	if id == primitive.NilObjectID {
		newID, err := s.workoutRepo.Create(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("create workout: %w", err)
		}
		w.ID = newID
		log.Printf("INFO: Workout %s created by coach %s", newID.Hex(), coachID.Hex())
	} else {
		if err := s.workoutRepo.Update(ctx, w); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrWorkoutNotFound
			}
			return nil, fmt.Errorf("update workout: %w", err)
		}
	}

	s.archiveWorkout(ctx, w)
	return w, nil
}

// archiveWorkout writes the saved record to object storage. The database is
// the source of truth, so a failed archive is logged and not returned.
func (s *workoutService) archiveWorkout(ctx context.Context, w *domain.Workout) {
	if s.archive == nil {
		return
	}
	body, err := json.Marshal(w)
	if err != nil {
		log.Printf("WARN: could not encode workout %s for archive: %v", w.ID.Hex(), err)
		return
	}
	key := storage.WorkoutArchiveKey(w.ID.Hex(), s.now())
	if err := s.archive.PutObject(ctx, key, "application/json", body); err != nil {
		log.Printf("WARN: archive of workout %s failed: %v", w.ID.Hex(), err)
		return
	}
	if err := s.workoutRepo.SetArchiveKey(ctx, w.ID, key); err != nil {
		log.Printf("WARN: could not record archive key for workout %s: %v", w.ID.Hex(), err)
		return
	}
	w.ArchiveKey = key
}

func (s *workoutService) GetWorkout(ctx context.Context, coachID, id primitive.ObjectID) (*domain.Workout, error) {
	w, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if w.CoachID != coachID {
		return nil, ErrWorkoutAccessDenied
	}
	return w, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, coachID primitive.ObjectID) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

// ArchiveURL returns a short-lived download link for the newest archive.
func (s *workoutService) ArchiveURL(ctx context.Context, coachID, id primitive.ObjectID) (string, error) {
	if s.archive == nil {
		return "", storage.ErrDisabled
	}
	w, err := s.GetWorkout(ctx, coachID, id)
	if err != nil {
		return "", err
	}
	if w.ArchiveKey == "" {
		return "", ErrNoArchive
	}
	return s.archive.GeneratePresignedDownloadURL(ctx, w.ArchiveKey, storage.DefaultPresignedURLExpiry)
}

func (s *workoutService) UpdateMedicalReport(ctx context.Context, record domain.MedicalRecord) error {
	switch record.Status {
	case domain.MedicalHealthy, domain.MedicalInjured, domain.MedicalLimited:
	default:
		return ErrInvalidMedical
	}
	if record.PlayerID == "" {
		return errors.New("player ID is required")
	}
	if err := s.medicalRepo.Upsert(ctx, record); err != nil {
		return err
	}
	log.Printf("INFO: Medical report for player %s set to %s", record.PlayerID, record.Status)
	return nil
}
