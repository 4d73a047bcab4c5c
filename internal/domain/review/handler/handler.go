// Package handler exposes the manual review queue over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
	"github.com/doppio-labs/fiscaldoc/internal/domain/review/repository"
)

const defaultListLimit = 50

// ReviewHandler handles review queue requests.
type ReviewHandler struct {
	repo   repository.ReviewRepository
	logger *slog.Logger
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(repo repository.ReviewRepository, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{repo: repo, logger: logger}
}

// List handles GET /v1/review.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.repo.ListPending(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list review items", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list review items")
		return
	}
	if items == nil {
		items = []*repository.Item{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type resolveRequest struct {
	ResolvedBy string `json:"resolved_by"`
	Note       string `json:"note"`
}

// Resolve handles POST /v1/review/{id}/resolve.
func (h *ReviewHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid review item id")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResolvedBy == "" {
		h.writeError(w, http.StatusBadRequest, "resolved_by is required")
		return
	}

	err = h.repo.Resolve(r.Context(), id, repository.Resolution{
		ResolvedBy: req.ResolvedBy,
		Note:       req.Note,
	})
	if errors.Is(err, common.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "review item not found or already resolved")
		return
	}
	if err != nil {
		h.logger.Error("failed to resolve review item", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to resolve review item")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": repository.StatusResolved})
}

func (h *ReviewHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
