package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindtype-app/mindtype-server/internal/mood"
)

const (
	// SignificanceThreshold is the minimum intensity at which a message is
	// worth remembering emotionally.
	SignificanceThreshold = 2

	// ExcerptMaxLen bounds the stored excerpt of the triggering message.
	ExcerptMaxLen = 200
)

// EmotionalRepository persists emotional memories.
type EmotionalRepository interface {
	Create(ctx context.Context, mem *EmotionalMemory) error
	ListRecent(ctx context.Context, deviceID, companionType string, limit int) ([]EmotionalMemory, error)
}

type PostgresEmotionalRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEmotionalRepository(pool *pgxpool.Pool) *PostgresEmotionalRepository {
	return &PostgresEmotionalRepository{pool: pool}
}

func (r *PostgresEmotionalRepository) Create(ctx context.Context, mem *EmotionalMemory) error {
	query := `
		INSERT INTO emotional_memories (device_id, companion_type, content, impact, intensity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		mem.DeviceID, mem.CompanionType, mem.Content, string(mem.Impact), mem.Intensity,
	).Scan(&mem.ID, &mem.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting emotional memory: %w", err)
	}
	return nil
}

func (r *PostgresEmotionalRepository) ListRecent(ctx context.Context, deviceID, companionType string, limit int) ([]EmotionalMemory, error) {
	query := `
		SELECT id, device_id, companion_type, content, impact, intensity, created_at
		FROM emotional_memories
		WHERE device_id = $1 AND companion_type = $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, deviceID, companionType, limit)
	if err != nil {
		return nil, fmt.Errorf("querying emotional memories: %w", err)
	}
	defer rows.Close()

	var memories []EmotionalMemory
	for rows.Next() {
		var m EmotionalMemory
		var impact string
		if err := rows.Scan(&m.ID, &m.DeviceID, &m.CompanionType, &m.Content, &impact, &m.Intensity, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning emotional memory: %w", err)
		}
		m.Impact = mood.Impact(impact)
		memories = append(memories, m)
	}
	return memories, rows.Err()
}
