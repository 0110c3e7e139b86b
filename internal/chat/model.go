package chat

import (
	"github.com/mindtype-app/mindtype-server/internal/companion"
	"github.com/mindtype-app/mindtype-server/internal/mood"
)

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message     string            `json:"message" validate:"required"`
	Agents      []companion.Agent `json:"agents" validate:"required,min=1,dive"`
	IsGroupChat bool              `json:"isGroupChat"`
	DeviceID    string            `json:"deviceId"`
}

// SoloResponse is returned for 1:1 chat: the reply plus the relationship and
// mood state after this message.
type SoloResponse struct {
	Content      string        `json:"content"`
	TrustLevel   int           `json:"trustLevel"`
	AffectionXP  int           `json:"affectionXp"`
	NextLevelXP  int           `json:"nextLevelXp"`
	LeveledUp    bool          `json:"leveledUp"`
	Label        string        `json:"label"`
	DisplayLevel int           `json:"displayLevel"`
	Mood         mood.Snapshot `json:"mood"`
}

// GroupTurn is one companion's contribution to a group round.
type GroupTurn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Name    string `json:"name"`
}

// GroupResponse is returned for group chat: one turn per requested agent, in
// request order.
type GroupResponse struct {
	Responses []GroupTurn `json:"responses"`
}

// Fallback replies when the model returns nothing usable.
const (
	soloFallback  = "I'm not sure how to respond to that."
	groupFallback = "..."
)
