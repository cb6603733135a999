package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itanishqshelar/Flashfits-AI/internal/cart"
	"github.com/itanishqshelar/Flashfits-AI/internal/catalog"
	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
	"github.com/itanishqshelar/Flashfits-AI/internal/session"
)

// SessionHandler drives the per-session cart engine.
type SessionHandler struct {
	sessions *session.Registry
	catalog  catalog.Repository
	logger   *zap.Logger
}

func NewSessionHandler(sessions *session.Registry, products catalog.Repository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, catalog: products, logger: logger}
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	s.SetUserID(middleware.GetUserID(r.Context()))
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": s.ID})
}

func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(r).View())
}

func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in cart.ItemInput
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := in.Normalize(); err != nil {
		writeValidationError(w, err)
		return
	}

	s := h.session(r)
	s.AddItem(r.Context(), in, "")
	writeJSON(w, http.StatusOK, s.View())
}

type variantRequest struct {
	SelectedColor string `json:"selectedColor"`
	SelectedSize  string `json:"selectedSize"`
}

func (h *SessionHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.catalog.Get(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("load product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	in, err := p.ItemInput(req.SelectedColor, req.SelectedSize)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	s := h.session(r)
	s.AddItem(r.Context(), in, p.DBID)
	writeJSON(w, http.StatusOK, s.View())
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *SessionHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := decodeJSON(r, &req, false); err != nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	s := h.session(r)
	s.Store.UpdateQuantity(id, *req.Quantity)
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	s := h.session(r)
	s.Store.RemoveItem(id)
	writeJSON(w, http.StatusOK, s.View())
}

type lineRequest struct {
	ID            int     `json:"id"`
	SelectedColor *string `json:"selectedColor"`
	SelectedSize  *string `json:"selectedSize"`
	Quantity      *int    `json:"quantity"`
}

func (req lineRequest) key() cart.VariantKey {
	return cart.VariantKey{ID: req.ID, Color: blankToNil(req.SelectedColor), Size: blankToNil(req.SelectedSize)}
}

func (h *SessionHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	s := h.session(r)
	s.Store.UpdateLineQuantity(req.key(), *req.Quantity)
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s := h.session(r)
	s.Store.RemoveLine(req.key())
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Store.Clear()
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) session(r *http.Request) *session.Session {
	s := h.sessions.GetOrCreate(chi.URLParam(r, "sessionId"))
	s.SetUserID(middleware.GetUserID(r.Context()))
	return s
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *cart.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
