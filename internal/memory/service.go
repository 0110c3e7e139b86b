package memory

import (
	"context"
	"unicode/utf8"

	"github.com/mindtype-app/mindtype-server/internal/mood"
)

// Service coordinates emotional and fact memory around a conversation.
type Service struct {
	emotional EmotionalRepository
	facts     FactRepository
}

func NewService(emotional EmotionalRepository, facts FactRepository) *Service {
	return &Service{emotional: emotional, facts: facts}
}

// RecordIfSignificant stores an emotional memory when the message carried a
// non-neutral impact at intensity >= 2. Returns whether a memory was written.
func (s *Service) RecordIfSignificant(ctx context.Context, deviceID, companionType, message string, impact mood.Impact, intensity int) (bool, error) {
	if impact == mood.ImpactNeutral || intensity < SignificanceThreshold {
		return false, nil
	}

	mem := &EmotionalMemory{
		DeviceID:      deviceID,
		CompanionType: companionType,
		Content:       truncate(message, ExcerptMaxLen),
		Impact:        impact,
		Intensity:     intensity,
	}
	if err := s.emotional.Create(ctx, mem); err != nil {
		return false, err
	}
	return true, nil
}

// RecentEmotional returns up to `limit` most recent emotional memories.
func (s *Service) RecentEmotional(ctx context.Context, deviceID, companionType string, limit int) ([]EmotionalMemory, error) {
	return s.emotional.ListRecent(ctx, deviceID, companionType, limit)
}

// StoreFact persists one extracted fact.
func (s *Service) StoreFact(ctx context.Context, fact *FactMemory) error {
	return s.facts.Create(ctx, fact)
}

// RecentFacts returns up to `limit` most recent facts about the user.
func (s *Service) RecentFacts(ctx context.Context, deviceID, companionType string, limit int) ([]FactMemory, error) {
	return s.facts.ListRecent(ctx, deviceID, companionType, limit)
}

// truncate cuts s to at most max bytes without splitting a rune mid-sequence,
// so the excerpt stays valid UTF-8 for the database.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
