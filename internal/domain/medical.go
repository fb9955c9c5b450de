package domain

// MedicalStatus is a player's current availability as reported by the medical staff.
type MedicalStatus string

const (
	MedicalHealthy MedicalStatus = "healthy"
	MedicalInjured MedicalStatus = "injured"
	MedicalLimited MedicalStatus = "limited"
)

// RestrictionCategory says how a restriction is matched against workout content.
type RestrictionCategory string

const (
	RestrictBodyPart  RestrictionCategory = "body_part" // Value is matched against exercise names
	RestrictIntensity RestrictionCategory = "intensity" // heart-rate / intensity ceiling
	RestrictActivity  RestrictionCategory = "activity"  // Value is matched against drill names and patterns
)

type Restriction struct {
	Category     RestrictionCategory `bson:"category" json:"category"`
	Value        string              `bson:"value,omitempty" json:"value,omitempty"`
	MaxHeartRate int                 `bson:"maxHeartRate,omitempty" json:"maxHeartRate,omitempty"`
}

// MedicalRecord is the latest medical report for one player.
type MedicalRecord struct {
	PlayerID     string        `bson:"playerId" json:"playerId"`
	Status       MedicalStatus `bson:"status" json:"status"`
	Restrictions []Restriction `bson:"restrictions,omitempty" json:"restrictions,omitempty"`
}

// Restricted reports whether the record should be checked against a workout.
func (m MedicalRecord) Restricted() bool {
	return m.Status == MedicalInjured || m.Status == MedicalLimited
}
