package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a persisted workout: the draft fields plus ownership and timestamps.
type Workout struct {
	ID         primitive.ObjectID `json:"id"`
	CoachID    primitive.ObjectID `json:"coachId"`
	Draft      *WorkoutDraft      `json:"draft"`
	Version    int                `json:"version"` // incremented on every save
	ArchiveKey string             `json:"-"`       // newest JSON archive, empty when archiving is off
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}
