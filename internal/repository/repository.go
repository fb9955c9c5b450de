package repository

import (
	"alcyxob/team-workouts/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDuplicate    = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutRepository stores saved workouts.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Workout, error)
	// Update replaces the draft fields and bumps Version. Only the owning coach may update.
	Update(ctx context.Context, workout *domain.Workout) error
	SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error
}

// PlayerRepository is the read side of the roster. Unknown ids are skipped.
type PlayerRepository interface {
	PlayersByIDs(ctx context.Context, ids []string) ([]domain.Player, error)
}

// TeamRepository is the read side of team membership.
type TeamRepository interface {
	TeamsByIDs(ctx context.Context, ids []string) ([]domain.Team, error)
}

// MedicalRepository holds the latest medical report per player.
type MedicalRepository interface {
	Lookup(ctx context.Context, playerIDs []string) ([]domain.MedicalRecord, error)
	Upsert(ctx context.Context, record domain.MedicalRecord) error
}
