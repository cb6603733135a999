package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/itanishqshelar/Flashfits-AI/internal/cartstore"
	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
)

// SavedCartHandler serves /api/cart, the signed-in shopper's persisted cart.
type SavedCartHandler struct {
	repo   cartstore.Repository
	logger *zap.Logger
}

func NewSavedCartHandler(repo cartstore.Repository, logger *zap.Logger) *SavedCartHandler {
	return &SavedCartHandler{repo: repo, logger: logger}
}

func (h *SavedCartHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	items, err := h.repo.ListItems(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.logger.Error("list saved cart", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SavedCartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req cartstore.AddRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	line, err := h.repo.AddItem(ctx, middleware.GetUserID(ctx), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, line)
	case errors.Is(err, cartstore.ErrMissingProduct):
		writeError(w, http.StatusBadRequest, "Missing productId or product details")
	case errors.Is(err, cartstore.ErrInvalidProduct), errors.Is(err, cartstore.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cartstore.ErrUnknownProduct):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("save cart item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save cart item")
	}
}
