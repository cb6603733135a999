package analytics

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository interface {
	Track(ctx context.Context, v Visit) (Event, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	insertEventSQL = `INSERT INTO analytics_events (event_type, event_data, user_id, session_id, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	upsertSessionSQL = `INSERT INTO user_sessions (session_id, user_id, last_active_at, device_info)
VALUES ($1, $2, NOW(), $3)
ON CONFLICT (session_id) DO UPDATE
SET user_id = COALESCE(EXCLUDED.user_id, user_sessions.user_id),
    last_active_at = EXCLUDED.last_active_at,
    device_info = EXCLUDED.device_info`
)

// Track stores the event and then bumps the session's activity. The event
// is kept even when the session upsert fails; that case returns the event
// together with an error wrapping ErrSessionNotRecorded.
func (r *PostgresRepository) Track(ctx context.Context, v Visit) (Event, error) {
	v = v.normalized()
	if v.EventType == "" {
		return Event{}, ErrMissingEventType
	}

	evt := Event{
		EventType: v.EventType,
		EventData: v.EventData,
		SessionID: v.SessionID,
		IPAddress: v.IPAddress,
		UserAgent: v.UserAgent,
	}
	if v.UserID != "" {
		uid := v.UserID
		evt.UserID = &uid
	}

	err := r.db.QueryRowContext(ctx, insertEventSQL,
		v.EventType, v.eventData(), v.userID(), v.SessionID, v.IPAddress, v.UserAgent,
	).Scan(&evt.ID, &evt.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("insert analytics event: %w", err)
	}

	device, err := v.deviceInfo()
	if err != nil {
		return evt, fmt.Errorf("%w: encode device info: %v", ErrSessionNotRecorded, err)
	}
	if _, err := r.db.ExecContext(ctx, upsertSessionSQL, v.SessionID, v.userID(), device); err != nil {
		return evt, fmt.Errorf("%w: %v", ErrSessionNotRecorded, err)
	}
	return evt, nil
}
