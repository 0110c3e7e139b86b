package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists weekly challenge progress.
type Repository interface {
	// Get returns the challenge row for a device and week, or nil when absent.
	Get(ctx context.Context, deviceID string, weekStart time.Time) (*Challenge, error)
	Create(ctx context.Context, ch *Challenge) error
	UpdateChatted(ctx context.Context, id uuid.UUID, chatted []string) error
	MarkClaimed(ctx context.Context, id uuid.UUID) error
}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, deviceID string, weekStart time.Time) (*Challenge, error) {
	query := `
		SELECT id, device_id, week_start, companions_chatted, is_claimed, created_at, updated_at
		FROM weekly_challenges
		WHERE device_id = $1 AND week_start = $2`

	var ch Challenge
	err := r.pool.QueryRow(ctx, query, deviceID, weekStart).Scan(
		&ch.ID, &ch.DeviceID, &ch.WeekStart, &ch.CompanionsChatted,
		&ch.Claimed, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying weekly challenge: %w", err)
	}
	return &ch, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ch *Challenge) error {
	query := `
		INSERT INTO weekly_challenges (device_id, week_start, companions_chatted, is_claimed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		ch.DeviceID, ch.WeekStart, ch.CompanionsChatted, ch.Claimed,
	).Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting weekly challenge: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateChatted(ctx context.Context, id uuid.UUID, chatted []string) error {
	query := `
		UPDATE weekly_challenges
		SET companions_chatted = $2, updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, chatted); err != nil {
		return fmt.Errorf("updating chatted companions: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkClaimed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE weekly_challenges
		SET is_claimed = true, updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("marking challenge claimed: %w", err)
	}
	return nil
}
