package challenge

import (
	"time"

	"github.com/google/uuid"
)

const (
	// CompletionTarget is the number of distinct companions the user must
	// chat with during the week.
	CompletionTarget = 3

	// RewardBonusXP is granted to every chatted companion on claim.
	RewardBonusXP = 500

	rewardMessage = "500 Bonus XP granted to all companions"
)

// Challenge tracks one device's progress for one calendar week.
type Challenge struct {
	ID                uuid.UUID `json:"id"`
	DeviceID          string    `json:"deviceId"`
	WeekStart         time.Time `json:"weekStart"`
	CompanionsChatted []string  `json:"uniqueAgentsChatted"`
	Claimed           bool      `json:"isClaimed"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Complete reports whether the challenge goal has been met.
func (c *Challenge) Complete() bool {
	return len(c.CompanionsChatted) >= CompletionTarget
}

// ClaimResult is returned to the client on a successful claim.
type ClaimResult struct {
	Success bool   `json:"success"`
	Reward  string `json:"reward"`
}
