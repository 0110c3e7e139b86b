package mood

import (
	"context"
	"fmt"
)

// Service owns the mood ledger: lazy creation and post-message updates.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the pair's mood, creating it at (0, 50) on first contact.
func (s *Service) GetOrCreate(ctx context.Context, deviceID, companionType, agentGender string) (*Mood, error) {
	m, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	m = &Mood{
		DeviceID:      deviceID,
		CompanionType: companionType,
		AgentGender:   agentGender,
		MoodValue:     0,
		Energy:        50,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating mood: %w", err)
	}
	return m, nil
}

// Update persists the analyzer's verdict: the new mood value plus an energy
// shift of +5 on positive impact, -5 on negative, 0 on neutral, clamped to
// [0,100]. A missing row is a no-op, matching the create-on-chat lifecycle.
func (s *Service) Update(ctx context.Context, deviceID, companionType string, newMoodValue int, impact Impact) error {
	m, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}

	delta := 0
	switch impact {
	case ImpactPositive:
		delta = 5
	case ImpactNegative:
		delta = -5
	}

	energy := clamp(m.Energy+delta, 0, 100)
	return s.repo.Update(ctx, deviceID, companionType, newMoodValue, energy)
}

// Snapshot returns the client-facing mood, defaulting to neutral/0/50 for a
// never-seen pair without creating a row.
func (s *Service) Snapshot(ctx context.Context, deviceID, companionType string) (Snapshot, error) {
	m, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return Snapshot{}, err
	}
	if m == nil {
		return DefaultSnapshot(), nil
	}
	return Snapshot{Value: m.MoodValue, State: ClassifyState(m.MoodValue), Energy: m.Energy}, nil
}
