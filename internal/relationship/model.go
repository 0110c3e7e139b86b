package relationship

import (
	"time"

	"github.com/google/uuid"
)

// Relationship is a row in the relationships table, keyed by
// (device_id, companion_type).
type Relationship struct {
	ID                uuid.UUID `json:"id"`
	DeviceID          string    `json:"device_id"`
	CompanionType     string    `json:"companion_type"`
	AgentGender       string    `json:"agent_gender"`
	TrustLevel        int       `json:"trust_level"`
	AffectionXP       int       `json:"affection_xp"`
	MessageCount      int       `json:"message_count"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Progress is the outcome of an XP-granting operation.
type Progress struct {
	TrustLevel  int  `json:"trustLevel"`
	AffectionXP int  `json:"affectionXp"`
	NextLevelXP int  `json:"nextLevelXp"`
	LeveledUp   bool `json:"leveledUp"`
}

// Snapshot is the client-facing relationship shape.
type Snapshot struct {
	TrustLevel        int       `json:"trustLevel"`
	AffectionXP       int       `json:"affectionXp"`
	NextLevelXP       int       `json:"nextLevelXp"`
	MessageCount      int       `json:"messageCount"`
	LastInteractionAt time.Time `json:"lastInteractionAt"`
	Label             string    `json:"label"`
	DisplayLevel      int       `json:"displayLevel"`
}

// DefaultSnapshot is the level-1 stranger shell returned for pairs that have
// never chatted. Reads do not create rows.
func DefaultSnapshot() Snapshot {
	label, display := Info(1)
	return Snapshot{
		TrustLevel:        1,
		AffectionXP:       0,
		NextLevelXP:       NextLevelXP(1),
		MessageCount:      0,
		LastInteractionAt: time.Now(),
		Label:             label,
		DisplayLevel:      display,
	}
}
