package analytics

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingEventType = errors.New("eventType is required")
	// ErrSessionNotRecorded is returned alongside a stored event when the
	// user_sessions upsert failed.
	ErrSessionNotRecorded = errors.New("session activity not recorded")
)

const unknown = "unknown"

// TrackRequest is the body of POST /api/analytics/track.
type TrackRequest struct {
	EventType string          `json:"eventType"`
	EventData json.RawMessage `json:"eventData,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// Visit is one tracked event with the request metadata around it.
type Visit struct {
	EventType string
	EventData json.RawMessage
	SessionID string
	UserID    string
	IPAddress string
	UserAgent string
}

type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	EventData json.RawMessage `json:"event_data"`
	UserID    *string         `json:"user_id"`
	SessionID string          `json:"session_id"`
	IPAddress string          `json:"ip_address"`
	UserAgent string          `json:"user_agent"`
	CreatedAt time.Time       `json:"created_at"`
}

func (v Visit) normalized() Visit {
	v.EventType = strings.TrimSpace(v.EventType)
	if v.IPAddress == "" {
		v.IPAddress = unknown
	}
	if v.UserAgent == "" {
		v.UserAgent = unknown
	}
	if len(v.EventData) == 0 || string(v.EventData) == "null" {
		v.EventData = nil
	}
	return v
}

// eventData is the jsonb argument: SQL NULL when absent.
func (v Visit) eventData() any {
	if v.EventData == nil {
		return nil
	}
	return string(v.EventData)
}

func (v Visit) userID() any {
	if v.UserID == "" {
		return nil
	}
	return v.UserID
}

func (v Visit) deviceInfo() (string, error) {
	raw, err := json.Marshal(map[string]string{"userAgent": v.UserAgent})
	return string(raw), err
}
