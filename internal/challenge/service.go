package challenge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mindtype-app/mindtype-server/internal/metrics"
)

var (
	ErrNotFound       = errors.New("challenge not found")
	ErrNotComplete    = errors.New("challenge not complete")
	ErrAlreadyClaimed = errors.New("reward already claimed")
)

// BonusGranter awards XP to one device+companion relationship.
type BonusGranter interface {
	GrantBonusXP(ctx context.Context, deviceID, companionType string, amount int) error
}

// Service tracks weekly-challenge participation and pays out rewards.
type Service struct {
	repo   Repository
	bonus  BonusGranter
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, bonus BonusGranter, logger *slog.Logger) *Service {
	return &Service{repo: repo, bonus: bonus, logger: logger, now: time.Now}
}

// RecordParticipation marks a companion as chatted-with this week. Repeat
// chats with the same companion are no-ops.
func (s *Service) RecordParticipation(ctx context.Context, deviceID, companionType string) error {
	weekStart := WeekStart(s.now())

	ch, err := s.repo.Get(ctx, deviceID, weekStart)
	if err != nil {
		return err
	}
	if ch == nil {
		return s.repo.Create(ctx, &Challenge{
			DeviceID:          deviceID,
			WeekStart:         weekStart,
			CompanionsChatted: []string{companionType},
		})
	}

	for _, t := range ch.CompanionsChatted {
		if t == companionType {
			return nil
		}
	}
	return s.repo.UpdateChatted(ctx, ch.ID, append(ch.CompanionsChatted, companionType))
}

// Get returns this week's challenge, or an unsaved zero-progress shell when
// the device has not chatted yet. Reads never create rows.
func (s *Service) Get(ctx context.Context, deviceID string) (*Challenge, error) {
	weekStart := WeekStart(s.now())

	ch, err := s.repo.Get(ctx, deviceID, weekStart)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return &Challenge{
			DeviceID:          deviceID,
			WeekStart:         weekStart,
			CompanionsChatted: []string{},
		}, nil
	}
	return ch, nil
}

// Claim validates and pays out this week's reward: 500 bonus XP to every
// companion on the chatted list, then the row is marked claimed.
func (s *Service) Claim(ctx context.Context, deviceID string) (*ClaimResult, error) {
	weekStart := WeekStart(s.now())

	ch, err := s.repo.Get(ctx, deviceID, weekStart)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		metrics.ChallengeClaimsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrNotFound
	}
	if !ch.Complete() {
		metrics.ChallengeClaimsTotal.WithLabelValues("incomplete").Inc()
		return nil, ErrNotComplete
	}
	if ch.Claimed {
		metrics.ChallengeClaimsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadyClaimed
	}

	for _, companionType := range ch.CompanionsChatted {
		if err := s.bonus.GrantBonusXP(ctx, deviceID, companionType, RewardBonusXP); err != nil {
			s.logger.Error("granting bonus XP", "device_id", deviceID, "companion_type", companionType, "error", err)
			return nil, err
		}
	}

	if err := s.repo.MarkClaimed(ctx, ch.ID); err != nil {
		return nil, err
	}

	metrics.ChallengeClaimsTotal.WithLabelValues("claimed").Inc()
	return &ClaimResult{Success: true, Reward: rewardMessage}, nil
}
