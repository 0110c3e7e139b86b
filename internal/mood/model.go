package mood

import (
	"time"

	"github.com/google/uuid"
)

// Impact classifies how a message landed with a companion.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// State is the four-band classification of a mood value.
type State string

const (
	StateIrritated State = "irritated"
	StateNeutral   State = "neutral"
	StatePleased   State = "pleased"
	StateDelighted State = "delighted"
)

// ClassifyState maps a mood value in [-100,100] to its band.
// Boundaries: irritated <= -25 < neutral < 25 <= pleased < 60 <= delighted.
func ClassifyState(value int) State {
	switch {
	case value <= -25:
		return StateIrritated
	case value < 25:
		return StateNeutral
	case value < 60:
		return StatePleased
	default:
		return StateDelighted
	}
}

// Mood is a row in the companion_moods table.
type Mood struct {
	ID            uuid.UUID `json:"id"`
	DeviceID      string    `json:"device_id"`
	CompanionType string    `json:"companion_type"`
	AgentGender   string    `json:"agent_gender"`
	MoodValue     int       `json:"mood_value"` // -100 to 100
	Energy        int       `json:"energy"`     // 0 to 100
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot is the client-facing mood shape.
type Snapshot struct {
	Value  int    `json:"value"`
	State  State  `json:"state"`
	Energy int    `json:"energy"`
}

// DefaultSnapshot is returned for a never-seen (device, companion) pair.
func DefaultSnapshot() Snapshot {
	return Snapshot{Value: 0, State: StateNeutral, Energy: 50}
}
