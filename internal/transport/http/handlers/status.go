package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/application/explore"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/response"
)

// StatusHandler reports the scheduled refresh state of every known feed.
type StatusHandler struct {
	store *explore.FeedStore
}

func NewStatusHandler(store *explore.FeedStore) *StatusHandler {
	return &StatusHandler{store: store}
}

func (h *StatusHandler) Feeds(w http.ResponseWriter, r *http.Request) {
	feeds := h.store.Feeds()
	out := make([]dto.FeedStatusResp, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, dto.ToFeedStatusResp(f, h.store.Get(f)))
	}
	response.Data(w, http.StatusOK, out)
}
