package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/itanishqshelar/Flashfits-AI/internal/analytics"
	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
	"github.com/itanishqshelar/Flashfits-AI/internal/session"
)

// AnalyticsHandler records storefront events against cart sessions.
type AnalyticsHandler struct {
	repo     analytics.Repository
	sessions *session.Registry
	logger   *zap.Logger
}

func NewAnalyticsHandler(repo analytics.Repository, sessions *session.Registry, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, sessions: sessions, logger: logger}
}

type trackResponse struct {
	Success   bool            `json:"success"`
	Event     analytics.Event `json:"event"`
	SessionID string          `json:"sessionId"`
}

func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req analytics.TrackRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.EventType) == "" {
		writeError(w, http.StatusBadRequest, analytics.ErrMissingEventType.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s := h.sessions.GetOrCreate(req.SessionID)
	s.SetUserID(middleware.GetUserID(ctx))

	evt, err := h.repo.Track(ctx, analytics.Visit{
		EventType: req.EventType,
		EventData: req.EventData,
		SessionID: s.ID,
		UserID:    s.UserID(),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	switch {
	case err == nil:
	case errors.Is(err, analytics.ErrSessionNotRecorded):
		h.logger.Warn("track session activity", zap.String("session_id", s.ID), zap.Error(err))
	case errors.Is(err, analytics.ErrMissingEventType):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.logger.Error("track event", zap.String("session_id", s.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to track event")
		return
	}
	writeJSON(w, http.StatusOK, trackResponse{Success: true, Event: evt, SessionID: s.ID})
}

// clientIP reads the proxy headers as sent. Empty means unknown.
func clientIP(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	return ""
}
