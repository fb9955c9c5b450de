package domain

// SaveStatus tracks persistence of one editing session.
type SaveStatus string

const (
	SaveIdle   SaveStatus = "idle"
	SaveSaving SaveStatus = "saving"
	SaveSaved  SaveStatus = "saved" // falls back to idle after a short delay
	SaveError  SaveStatus = "error"
)
