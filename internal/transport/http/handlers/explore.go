package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/application/explore"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/validate"
)

type ExploreService interface {
	Upcoming(ctx context.Context, p explore.ListParams) (explore.Page[domain.EventRecord], error)
	Nearby(ctx context.Context, p explore.ListParams) (explore.Page[domain.EventRecord], error)
	Today(ctx context.Context, p explore.ListParams) (explore.Page[domain.EventRecord], error)
	Window(ctx context.Context, days int, p explore.ListParams) (explore.Page[domain.EventRecord], error)
	Past(ctx context.Context, p explore.ListParams) (explore.Page[domain.EventRecord], error)
	Map(ctx context.Context, p explore.MapParams) (explore.Page[domain.EventRecord], error)
	Search(ctx context.Context, p explore.SearchParams) (explore.Page[domain.EventRecord], error)
	Details(ctx context.Context, ids []int64, lang string) ([]domain.EventRecord, error)
	Movies(ctx context.Context, p explore.ListParams) (explore.Page[domain.Movie], error)
	Lists(ctx context.Context, p explore.ListParams) (explore.Page[domain.List], error)
	Categories(ctx context.Context, lang string) ([]domain.Category, error)
	Locations(ctx context.Context, lang string) ([]domain.Location, error)
}

type ExploreHandler struct {
	svc ExploreService
}

func NewExploreHandler(svc ExploreService) *ExploreHandler {
	return &ExploreHandler{svc: svc}
}

type eventListFn func(ctx context.Context, p explore.ListParams) (explore.Page[domain.EventRecord], error)

func (h *ExploreHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	h.eventList(w, r, h.svc.Upcoming)
}

func (h *ExploreHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	h.eventList(w, r, h.svc.Nearby)
}

func (h *ExploreHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.eventList(w, r, h.svc.Today)
}

func (h *ExploreHandler) Past(w http.ResponseWriter, r *http.Request) {
	h.eventList(w, r, h.svc.Past)
}

func (h *ExploreHandler) Window(w http.ResponseWriter, r *http.Request) {
	days, ok := validate.IntParam(r.URL.Query().Get("days"), 0)
	if !ok {
		response.Err(w, r, invalidParam("days", "must be an integer"))
		return
	}
	h.eventList(w, r, func(ctx context.Context, p explore.ListParams) (explore.Page[domain.EventRecord], error) {
		return h.svc.Window(ctx, days, p)
	})
}

func (h *ExploreHandler) eventList(w http.ResponseWriter, r *http.Request, fn eventListFn) {
	p, err := listParams(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := fn(r.Context(), p)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventPage(page))
}

func (h *ExploreHandler) Map(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, ok := validate.FloatParam(q.Get("lat"))
	if !ok {
		response.Err(w, r, invalidParam("lat", "required number"))
		return
	}
	lon, ok := validate.FloatParam(q.Get("lon"))
	if !ok {
		response.Err(w, r, invalidParam("lon", "required number"))
		return
	}
	radius, ok := validate.IntParam(q.Get("radius"), 1000)
	if !ok {
		response.Err(w, r, invalidParam("radius", "must be an integer"))
		return
	}

	page, err := h.svc.Map(r.Context(), explore.MapParams{
		Lat:      lat,
		Lon:      lon,
		Radius:   radius,
		Category: q.Get("category"),
		Lang:     q.Get("lang"),
		Order:    q.Get("order"),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventPage(page))
}

func (h *ExploreHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, ok := validate.IntParam(q.Get("page"), 1)
	if !ok {
		response.Err(w, r, invalidParam("page", "must be an integer"))
		return
	}

	res, err := h.svc.Search(r.Context(), explore.SearchParams{
		Text:  q.Get("q"),
		Lang:  q.Get("lang"),
		Page:  page,
		Order: q.Get("order"),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventPage(res))
}

func (h *ExploreHandler) Details(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ids, ok := validate.IDList(q.Get("ids"))
	if !ok {
		response.Err(w, r, invalidParam("ids", "comma separated positive integers"))
		return
	}

	records, err := h.svc.Details(r.Context(), ids, q.Get("lang"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(records))
}

func (h *ExploreHandler) Movies(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := h.svc.Movies(r.Context(), p)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPage(page))
}

func (h *ExploreHandler) Lists(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := h.svc.Lists(r.Context(), p)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPage(page))
}

func (h *ExploreHandler) Categories(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Categories(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, out)
}

func (h *ExploreHandler) Locations(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Locations(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, out)
}

func listParams(r *http.Request) (explore.ListParams, error) {
	q := r.URL.Query()
	page, ok := validate.IntParam(q.Get("page"), 1)
	if !ok {
		return explore.ListParams{}, invalidParam("page", "must be an integer")
	}
	return explore.ListParams{
		Location: q.Get("location"),
		Category: q.Get("category"),
		Lang:     q.Get("lang"),
		Page:     page,
		Order:    q.Get("order"),
	}, nil
}

func invalidParam(field, msg string) error {
	return domain.ErrValidationMeta("invalid query param", map[string]string{field: msg})
}
