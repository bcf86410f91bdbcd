package explore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
)

const (
	DefaultWindowDays = 7
	MaxWindowDays     = 31
)

// Upcoming lists events that have not started yet, optionally within one category.
func (s *Service) Upcoming(ctx context.Context, p ListParams) (Page[domain.EventRecord], error) {
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	page, err := fetchPage[kudago.EventDTO](ctx, s, kudago.Query{
		Op:       kudago.OpUpcoming,
		Category: lq.category,
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
		Now:      s.anchor(s.clock.Now()),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}
	return s.finish(kudago.ToRecords(page.Results), lq, page.HasMore()), nil
}

// Nearby lists upcoming events in one location. An empty location means the default one.
func (s *Service) Nearby(ctx context.Context, p ListParams) (Page[domain.EventRecord], error) {
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}
	if lq.location == "" {
		lq.location = s.defaultLocation
	}

	page, err := fetchPage[kudago.EventDTO](ctx, s, kudago.Query{
		Op:       kudago.OpNearby,
		Location: lq.location,
		Category: lq.category,
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
		Now:      s.anchor(s.clock.Now()),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}
	return s.finish(kudago.ToRecords(page.Results), lq, page.HasMore()), nil
}

// Today reads the events-of-the-day index and then loads the referenced events.
// Unlike the upcoming feeds it keeps events whose starts are all past.
func (s *Service) Today(ctx context.Context, p ListParams) (Page[domain.EventRecord], error) {
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}
	if lq.location == "" {
		lq.location = s.defaultLocation
	}

	index, err := fetchPage[kudago.TodayEventDTO](ctx, s, kudago.Query{
		Op:       kudago.OpToday,
		Location: lq.location,
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	ids := kudago.TodayIDs(index.Results)
	if len(ids) == 0 {
		return Page[domain.EventRecord]{Items: []domain.EventRecord{}, Page: lq.page, HasMore: index.HasMore()}, nil
	}

	records, err := s.fetchDetails(ctx, ids, lq.lang)
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	// Events that already started today stay listed, dated by their latest start.
	displayDates(records, s.clock.Now())
	out := firstByKey(records)
	domain.SortRecords(out, lq.order)
	return Page[domain.EventRecord]{Items: out, Page: lq.page, HasMore: index.HasMore()}, nil
}

func firstByKey(records []domain.EventRecord) []domain.EventRecord {
	seen := make(map[domain.Key]struct{}, len(records))
	out := make([]domain.EventRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Window lists events running between now and now+days.
func (s *Service) Window(ctx context.Context, days int, p ListParams) (Page[domain.EventRecord], error) {
	if days == 0 {
		days = DefaultWindowDays
	}
	if days < 1 || days > MaxWindowDays {
		return Page[domain.EventRecord]{}, domain.ErrValidationMeta("invalid query param", map[string]string{
			"days": "must be between 1 and 31",
		})
	}
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	now := s.clock.Now()
	page, err := fetchPage[kudago.EventDTO](ctx, s, kudago.Query{
		Op:       kudago.OpWindow,
		Since:    s.anchor(now),
		Until:    s.anchorCeil(now.Add(time.Duration(days) * 24 * time.Hour)),
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}
	return s.finish(kudago.ToRecords(page.Results), lq, page.HasMore()), nil
}

// Past lists events that already happened, most recent first. Each record is
// dated by its latest start at or before now, and there is no de-duplication.
func (s *Service) Past(ctx context.Context, p ListParams) (Page[domain.EventRecord], error) {
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	now := s.clock.Now()
	page, err := fetchPage[kudago.EventDTO](ctx, s, kudago.Query{
		Op:       kudago.OpPast,
		Until:    s.anchorCeil(now),
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	out := make([]domain.EventRecord, 0, len(page.Results))
	for _, r := range kudago.ToRecords(page.Results) {
		d, ok := domain.LatestPast(r.CandidateDates, now)
		if !ok {
			continue
		}
		r.SelectedDate = d
		out = append(out, r)
	}
	domain.SortRecords(out, lq.order)
	if lq.order == domain.OrderDate {
		slices.Reverse(out)
	}
	return Page[domain.EventRecord]{Items: out, Page: lq.page, HasMore: page.HasMore()}, nil
}

type MapParams struct {
	Lat      float64
	Lon      float64
	Radius   int
	Category string
	Lang     string
	Order    string
}

// Map lists upcoming events inside a radius (meters) around a point.
func (s *Service) Map(ctx context.Context, p MapParams) (Page[domain.EventRecord], error) {
	lq, err := s.normalize(ListParams{Category: p.Category, Lang: p.Lang, Order: p.Order})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	page, err := fetchPage[kudago.EventDTO](ctx, s, kudago.Query{
		Op:       kudago.OpMap,
		Lat:      p.Lat,
		Lon:      p.Lon,
		Radius:   p.Radius,
		Category: lq.category,
		Language: lq.lang,
		Now:      s.anchor(s.clock.Now()),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}
	return s.finish(kudago.ToRecords(page.Results), lq, page.HasMore()), nil
}

type SearchParams struct {
	Text  string
	Lang  string
	Page  int
	Order string
}

// Search runs a full-text query over upcoming events.
func (s *Service) Search(ctx context.Context, p SearchParams) (Page[domain.EventRecord], error) {
	lq, err := s.normalize(ListParams{Lang: p.Lang, Page: p.Page, Order: p.Order})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	page, err := fetchPage[kudago.SearchResultDTO](ctx, s, kudago.Query{
		Op:       kudago.OpSearch,
		Text:     strings.TrimSpace(p.Text),
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
		Now:      s.anchor(s.clock.Now()),
	})
	if err != nil {
		return Page[domain.EventRecord]{}, err
	}

	records := make([]domain.EventRecord, 0, len(page.Results))
	for _, r := range page.Results {
		if r.CType != "" && r.CType != "event" {
			continue
		}
		records = append(records, kudago.SearchToRecord(r))
	}
	return s.finish(records, lq, page.HasMore()), nil
}
