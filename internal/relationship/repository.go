package relationship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines relationship persistence operations.
type Repository interface {
	Get(ctx context.Context, deviceID, companionType string) (*Relationship, error)
	Create(ctx context.Context, rel *Relationship) error
	UpdateProgress(ctx context.Context, id uuid.UUID, trustLevel, affectionXP int) error
	RecordInteraction(ctx context.Context, id uuid.UUID, trustLevel, affectionXP, messageCount int, lastInteractionAt time.Time) error
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get returns the relationship row for the pair, or nil when absent.
func (r *PostgresRepository) Get(ctx context.Context, deviceID, companionType string) (*Relationship, error) {
	var rel Relationship
	err := r.pool.QueryRow(ctx,
		`SELECT id, device_id, companion_type, agent_gender, trust_level, affection_xp,
		        message_count, last_interaction_at, created_at, updated_at
		 FROM relationships
		 WHERE device_id = $1 AND companion_type = $2`,
		deviceID, companionType,
	).Scan(&rel.ID, &rel.DeviceID, &rel.CompanionType, &rel.AgentGender, &rel.TrustLevel,
		&rel.AffectionXP, &rel.MessageCount, &rel.LastInteractionAt, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting relationship: %w", err)
	}
	return &rel, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rel *Relationship) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO relationships (id, device_id, companion_type, agent_gender, trust_level, affection_xp, message_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING last_interaction_at, created_at, updated_at`,
		rel.ID, rel.DeviceID, rel.CompanionType, rel.AgentGender, rel.TrustLevel, rel.AffectionXP, rel.MessageCount,
	).Scan(&rel.LastInteractionAt, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting relationship: %w", err)
	}
	return nil
}

// UpdateProgress persists trust level and XP without touching the interaction
// timestamp. Used by decay and by bulk XP grants.
func (r *PostgresRepository) UpdateProgress(ctx context.Context, id uuid.UUID, trustLevel, affectionXP int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE relationships
		 SET trust_level = $2, affection_xp = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, trustLevel, affectionXP,
	)
	if err != nil {
		return fmt.Errorf("updating relationship progress: %w", err)
	}
	return nil
}

// RecordInteraction persists the outcome of one chat message: new progress,
// bumped message count, and a fresh interaction timestamp.
func (r *PostgresRepository) RecordInteraction(ctx context.Context, id uuid.UUID, trustLevel, affectionXP, messageCount int, lastInteractionAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE relationships
		 SET trust_level = $2, affection_xp = $3, message_count = $4, last_interaction_at = $5, updated_at = NOW()
		 WHERE id = $1`,
		id, trustLevel, affectionXP, messageCount, lastInteractionAt,
	)
	if err != nil {
		return fmt.Errorf("recording interaction: %w", err)
	}
	return nil
}
