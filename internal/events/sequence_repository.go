package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrPartitionKeyRequired = errors.New("partition key is required")

type SequenceRepository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// PostgresSequenceRepository hands out a gap-free, per-partition counter
// from the event_sequences table.
type PostgresSequenceRepository struct {
	db *sql.DB
}

func NewSequenceRepository(db *sql.DB) *PostgresSequenceRepository {
	return &PostgresSequenceRepository{db: db}
}

const nextSequenceSQL = `
INSERT INTO event_sequences (partition_key, last_sequence, updated_at)
VALUES ($1, 1, NOW())
ON CONFLICT (partition_key) DO UPDATE
SET last_sequence = event_sequences.last_sequence + 1,
    updated_at = NOW()
RETURNING last_sequence`

func (r *PostgresSequenceRepository) NextSequence(ctx context.Context, partitionKey string) (next int64, err error) {
	if partitionKey == "" {
		return 0, ErrPartitionKeyRequired
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx, nextSequenceSQL, partitionKey).Scan(&next); err != nil {
		return 0, fmt.Errorf("increment sequence for %s: %w", partitionKey, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return next, nil
}
