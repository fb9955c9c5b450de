package domain

// Player is read-only roster data used to name players in messages.
type Player struct {
	ID      string   `bson:"_id" json:"id"`
	Name    string   `bson:"name" json:"name"`
	TeamIDs []string `bson:"teamIds,omitempty" json:"teamIds,omitempty"`
}

// Team is read-only roster data. PlayerIDs lists the current members.
type Team struct {
	ID        string   `bson:"_id" json:"id"`
	Name      string   `bson:"name" json:"name"`
	PlayerIDs []string `bson:"playerIds,omitempty" json:"playerIds,omitempty"`
}
