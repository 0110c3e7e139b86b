package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FactRepository persists extracted facts about the user.
type FactRepository interface {
	Create(ctx context.Context, fact *FactMemory) error
	ListRecent(ctx context.Context, deviceID, companionType string, limit int) ([]FactMemory, error)
}

type PostgresFactRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFactRepository(pool *pgxpool.Pool) *PostgresFactRepository {
	return &PostgresFactRepository{pool: pool}
}

func (r *PostgresFactRepository) Create(ctx context.Context, fact *FactMemory) error {
	query := `
		INSERT INTO fact_memories (device_id, companion_type, memory_type, memory_content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		fact.DeviceID, fact.CompanionType, fact.MemoryType, fact.MemoryContent,
	).Scan(&fact.ID, &fact.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting fact memory: %w", err)
	}
	return nil
}

func (r *PostgresFactRepository) ListRecent(ctx context.Context, deviceID, companionType string, limit int) ([]FactMemory, error) {
	query := `
		SELECT id, device_id, companion_type, memory_type, memory_content, created_at
		FROM fact_memories
		WHERE device_id = $1 AND companion_type = $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, deviceID, companionType, limit)
	if err != nil {
		return nil, fmt.Errorf("querying fact memories: %w", err)
	}
	defer rows.Close()

	var facts []FactMemory
	for rows.Next() {
		var f FactMemory
		if err := rows.Scan(&f.ID, &f.DeviceID, &f.CompanionType, &f.MemoryType, &f.MemoryContent, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning fact memory: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
