package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between staff roles
type Role string

const (
	RoleCoach   Role = "coach"   // builds and assigns workouts
	RoleMedical Role = "medical" // maintains medical reports
	RoleViewer  Role = "viewer"
)

// User is a staff account (coach, medical staff or read-only viewer).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	TeamIDs      []string           `bson:"teamIds,omitempty" json:"teamIds,omitempty"` // teams this staff member works with
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

// CanEditWorkouts reports whether the user may open draft sessions.
func (u *User) CanEditWorkouts() bool {
	return u.Role == RoleCoach
}
