package explore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/upstream"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/metrics"
	zlog "github.com/rs/zerolog/log"
)

type Service struct {
	up    Upstream
	clock Clock

	defaultLang     domain.Language
	defaultLocation string

	// anchorStep buckets the time bounds sent upstream so repeated requests
	// produce the same URL and share a cache entry.
	anchorStep time.Duration
}

const DefaultAnchorStep = time.Minute

type Option func(*Service)

// WithAnchorStep sets the granularity of upstream time bounds. Values below
// one second fall back to one second.
func WithAnchorStep(d time.Duration) Option {
	return func(s *Service) {
		s.anchorStep = max(d, time.Second)
	}
}

func New(up Upstream, clock Clock, defaultLang domain.Language, defaultLocation string, opts ...Option) *Service {
	if !defaultLang.Valid() {
		defaultLang = domain.LangRU
	}
	if strings.TrimSpace(defaultLocation) == "" {
		defaultLocation = "msk"
	}
	s := &Service{
		up:              up,
		clock:           clock,
		defaultLang:     defaultLang,
		defaultLocation: defaultLocation,
		anchorStep:      DefaultAnchorStep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// anchor is now rounded down to anchorStep. Lower bounds built from it only
// widen the upstream filter; local filtering still uses the exact clock.
func (s *Service) anchor(now time.Time) time.Time {
	return now.Truncate(s.anchorStep)
}

// anchorCeil is now rounded up to anchorStep, for upper bounds.
func (s *Service) anchorCeil(now time.Time) time.Time {
	a := now.Truncate(s.anchorStep)
	if a.Before(now) {
		a = a.Add(s.anchorStep)
	}
	return a
}

// Page is one page of a listing. HasMore mirrors the upstream "next" link.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	HasMore bool `json:"has_more"`
}

type ListParams struct {
	Location string
	Category string
	Lang     string
	Page     int
	Order    string
}

type listQuery struct {
	location string
	category string
	lang     domain.Language
	page     int
	order    domain.Order
}

func (s *Service) normalize(p ListParams) (listQuery, error) {
	lang, err := domain.ParseLanguage(p.Lang, s.defaultLang)
	if err != nil {
		return listQuery{}, err
	}
	order, err := domain.ParseOrder(p.Order)
	if err != nil {
		return listQuery{}, err
	}
	if p.Page < 0 {
		return listQuery{}, domain.ErrValidationMeta("invalid query param", map[string]string{
			"page": "must be >= 1",
		})
	}
	page := p.Page
	if page == 0 {
		page = 1
	}
	return listQuery{
		location: strings.TrimSpace(p.Location),
		category: strings.TrimSpace(p.Category),
		lang:     lang,
		page:     page,
		order:    order,
	}, nil
}

// upstreamPage is the page param sent upstream; the first page is implicit.
func upstreamPage(page int) int {
	if page <= 1 {
		return 0
	}
	return page
}

func (s *Service) fetch(ctx context.Context, q kudago.Query, dest any) error {
	spec, err := kudago.Build(q)
	if err != nil {
		return err
	}
	if err := s.up.Fetch(ctx, spec, dest); err != nil {
		return mapUpstreamErr(err)
	}
	return nil
}

// fetchPage fetches one paginated listing. A 404 past the first page is the end of the list.
func fetchPage[T any](ctx context.Context, s *Service, q kudago.Query) (kudago.Page[T], error) {
	var out kudago.Page[T]
	spec, err := kudago.Build(q)
	if err != nil {
		return out, err
	}
	if err := s.up.Fetch(ctx, spec, &out); err != nil {
		if q.Page > 1 && upstream.IsNotFound(err) {
			return kudago.Page[T]{}, nil
		}
		return out, mapUpstreamErr(err)
	}
	return out, nil
}

// finish runs the de-duplication pipeline over a fetched page of events.
func (s *Service) finish(records []domain.EventRecord, lq listQuery, hasMore bool) Page[domain.EventRecord] {
	out := domain.Deduplicate(records, s.clock.Now())
	metrics.ObserveDedup(len(records), len(out))
	domain.SortRecords(out, lq.order)
	return Page[domain.EventRecord]{Items: out, Page: lq.page, HasMore: hasMore}
}

func mapUpstreamErr(err error) error {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		return err
	}

	var se *upstream.StatusError
	switch {
	case errors.As(err, &se):
		if se.StatusCode == 404 {
			return domain.ErrNotFound(se.Description)
		}
		return &domain.AppError{
			Code:    domain.CodeUpstream,
			Message: "events api rejected the request",
			Meta: map[string]string{
				"status":      strconv.Itoa(se.StatusCode),
				"description": se.Description,
			},
		}
	case errors.Is(err, upstream.ErrTimeout):
		return domain.ErrUpstreamTimeout("events api timeout")
	case errors.Is(err, upstream.ErrCanceled):
		return domain.ErrUpstream("request canceled")
	case errors.Is(err, upstream.ErrDecode):
		zlog.Error().Err(err).Msg("events api returned an unreadable body")
		return domain.ErrUpstream("events api returned an unreadable body")
	default:
		return domain.ErrUpstream("events api unavailable")
	}
}
