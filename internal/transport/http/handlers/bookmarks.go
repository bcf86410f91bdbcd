package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/validate"
)

type BookmarkService interface {
	Add(ctx context.Context, userID string, eventID int64, lang string) (domain.Bookmark, bool, error)
	Remove(ctx context.Context, userID string, eventID int64) error
	List(ctx context.Context, userID string) ([]domain.Bookmark, error)
}

type BookmarksHandler struct {
	svc BookmarkService
}

func NewBookmarksHandler(svc BookmarkService) *BookmarksHandler {
	return &BookmarksHandler{svc: svc}
}

func (h *BookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	out := make([]dto.BookmarkResp, 0, len(items))
	for _, b := range items {
		out = append(out, dto.ToBookmarkResp(b))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *BookmarksHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddBookmarkReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		}))
		return
	}

	b, created, err := h.svc.Add(r.Context(), middleware.UserID(r), req.EventID, req.Lang)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Data(w, status, dto.ToBookmarkResp(b))
}

func (h *BookmarksHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "event_id"), 10, 64)
	if err != nil || id <= 0 {
		response.Err(w, r, domain.ErrValidationMeta("invalid path param", map[string]string{
			"event_id": "must be a positive integer",
		}))
		return
	}
	if err := h.svc.Remove(r.Context(), middleware.UserID(r), id); err != nil {
		response.Err(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
