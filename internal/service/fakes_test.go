package service

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]*domain.Workout
	creates  int
	updates  int
	failNext error
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.Workout)}
}

func (r *fakeWorkoutRepo) takeErr() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return primitive.NilObjectID, err
	}
	r.creates++
	w.ID = primitive.NewObjectID()
	w.Version = 1
	stored := *w
	stored.Draft = w.Draft.Clone()
	r.workouts[w.ID] = &stored
	return w.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *w
	out.Draft = w.Draft.Clone()
	return &out, nil
}

func (r *fakeWorkoutRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.CoachID == coachID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return err
	}
	stored, ok := r.workouts[w.ID]
	if !ok || stored.CoachID != w.CoachID {
		return repository.ErrNotFound
	}
	r.updates++
	stored.Draft = w.Draft.Clone()
	stored.Version++
	w.Version = stored.Version
	return nil
}

func (r *fakeWorkoutRepo) SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.ArchiveKey = key
	return nil
}

type fakeMedicalRepo struct {
	records map[string]domain.MedicalRecord
}

func (r *fakeMedicalRepo) Lookup(ctx context.Context, ids []string) ([]domain.MedicalRecord, error) {
	var out []domain.MedicalRecord
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMedicalRepo) Upsert(ctx context.Context, rec domain.MedicalRecord) error {
	if r.records == nil {
		r.records = make(map[string]domain.MedicalRecord)
	}
	r.records[rec.PlayerID] = rec
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeStorage) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = body
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://archive.test/" + key, nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (primitive.ObjectID, error) {
	if r.users == nil {
		r.users = make(map[string]*domain.User)
	}
	if _, ok := r.users[u.Email]; ok {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	stored := *u
	r.users[u.Email] = &stored
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}
