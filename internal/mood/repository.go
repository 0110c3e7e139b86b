package mood

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines mood persistence operations.
type Repository interface {
	Get(ctx context.Context, deviceID, companionType string) (*Mood, error)
	Create(ctx context.Context, m *Mood) error
	Update(ctx context.Context, deviceID, companionType string, moodValue, energy int) error
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get returns the mood row for the pair, or nil when absent.
func (r *PostgresRepository) Get(ctx context.Context, deviceID, companionType string) (*Mood, error) {
	var m Mood
	err := r.pool.QueryRow(ctx,
		`SELECT id, device_id, companion_type, agent_gender, mood_value, energy, updated_at
		 FROM companion_moods
		 WHERE device_id = $1 AND companion_type = $2`,
		deviceID, companionType,
	).Scan(&m.ID, &m.DeviceID, &m.CompanionType, &m.AgentGender, &m.MoodValue, &m.Energy, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting mood: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *Mood) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companion_moods (id, device_id, companion_type, agent_gender, mood_value, energy)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.DeviceID, m.CompanionType, m.AgentGender, m.MoodValue, m.Energy,
	)
	if err != nil {
		return fmt.Errorf("inserting mood: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, deviceID, companionType string, moodValue, energy int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companion_moods
		 SET mood_value = $3, energy = $4, updated_at = NOW()
		 WHERE device_id = $1 AND companion_type = $2`,
		deviceID, companionType, moodValue, energy,
	)
	if err != nil {
		return fmt.Errorf("updating mood: %w", err)
	}
	return nil
}
