package relationship

import (
	"context"
	"fmt"
	"time"

	"github.com/mindtype-app/mindtype-server/internal/metrics"
)

// Service owns the relationship ledger. All trust mutations flow through it:
// lazy creation, decay-on-fetch, per-message gains and bulk reward grants.
//
// Concurrent messages for the same (device, companion) pair race on the
// read-modify-write below; last writer wins. Accepted: the damage is a lost
// +10 under double-texting, and the mobile client serializes sends anyway.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetOrCreate returns the pair's relationship with any pending decay applied
// and persisted. First contact creates the row at trust level 1 with zero XP.
//
// Decay runs before anything reads or grants against the row: one trust level
// per full 24h since the last interaction, floored at level 1, XP forfeited.
func (s *Service) GetOrCreate(ctx context.Context, deviceID, companionType, agentGender string) (*Relationship, error) {
	rel, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return nil, err
	}

	if rel == nil {
		rel = &Relationship{
			DeviceID:      deviceID,
			CompanionType: companionType,
			AgentGender:   agentGender,
			TrustLevel:    1,
			AffectionXP:   0,
			MessageCount:  0,
		}
		if err := s.repo.Create(ctx, rel); err != nil {
			return nil, fmt.Errorf("creating relationship: %w", err)
		}
		return rel, nil
	}

	hoursSince := s.now().Sub(rel.LastInteractionAt).Hours()
	if newLevel, decayed := ApplyDecay(rel.TrustLevel, hoursSince); decayed {
		rel.TrustLevel = newLevel
		rel.AffectionXP = 0
		if err := s.repo.UpdateProgress(ctx, rel.ID, rel.TrustLevel, rel.AffectionXP); err != nil {
			return nil, fmt.Errorf("persisting decay: %w", err)
		}
	}

	return rel, nil
}

// RecordInteraction grants the per-message XP, advancing trust level as
// thresholds are crossed, and stamps the interaction time. The caller must
// have fetched the row through GetOrCreate first so decay is already settled;
// a missing row yields the level-1 default rather than an error.
func (s *Service) RecordInteraction(ctx context.Context, deviceID, companionType string) (Progress, error) {
	rel, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return Progress{}, err
	}
	if rel == nil {
		return Progress{TrustLevel: 1, AffectionXP: 0, NextLevelXP: NextLevelXP(1)}, nil
	}

	newLevel, newXP, leveledUp := ApplyXP(rel.TrustLevel, rel.AffectionXP, XPGainPerMessage)
	if leveledUp {
		metrics.TrustLevelUpsTotal.Inc()
	}

	err = s.repo.RecordInteraction(ctx, rel.ID, newLevel, newXP, rel.MessageCount+1, s.now())
	if err != nil {
		return Progress{}, err
	}

	return Progress{
		TrustLevel:  newLevel,
		AffectionXP: newXP,
		NextLevelXP: NextLevelXP(newLevel),
		LeveledUp:   leveledUp,
	}, nil
}

// GrantBonusXP applies a bulk XP reward through the same leveling arithmetic
// as ordinary gains. Missing rows are skipped silently: the weekly claim
// iterates companion types and a row may have been created on another device.
func (s *Service) GrantBonusXP(ctx context.Context, deviceID, companionType string, amount int) error {
	rel, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return err
	}
	if rel == nil {
		return nil
	}

	newLevel, newXP, leveledUp := ApplyXP(rel.TrustLevel, rel.AffectionXP, amount)
	if leveledUp {
		metrics.TrustLevelUpsTotal.Inc()
	}
	return s.repo.UpdateProgress(ctx, rel.ID, newLevel, newXP)
}

// Snapshot returns the client-facing relationship state, or the level-1
// default shell for a never-seen pair. The read path never creates rows.
func (s *Service) Snapshot(ctx context.Context, deviceID, companionType string) (Snapshot, error) {
	rel, err := s.repo.Get(ctx, deviceID, companionType)
	if err != nil {
		return Snapshot{}, err
	}
	if rel == nil {
		return DefaultSnapshot(), nil
	}

	label, display := Info(rel.TrustLevel)
	return Snapshot{
		TrustLevel:        rel.TrustLevel,
		AffectionXP:       rel.AffectionXP,
		NextLevelXP:       NextLevelXP(rel.TrustLevel),
		MessageCount:      rel.MessageCount,
		LastInteractionAt: rel.LastInteractionAt,
		Label:             label,
		DisplayLevel:      display,
	}, nil
}
