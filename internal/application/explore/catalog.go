package explore

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
)

// Movies lists films currently showing in a location.
func (s *Service) Movies(ctx context.Context, p ListParams) (Page[domain.Movie], error) {
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.Movie]{}, err
	}
	if lq.location == "" {
		lq.location = s.defaultLocation
	}

	page, err := fetchPage[kudago.MovieDTO](ctx, s, kudago.Query{
		Op:       kudago.OpMovies,
		Location: lq.location,
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
		Now:      s.anchor(s.clock.Now()),
	})
	if err != nil {
		return Page[domain.Movie]{}, err
	}

	items := make([]domain.Movie, 0, len(page.Results))
	for _, m := range page.Results {
		items = append(items, kudago.ToMovie(m))
	}
	return Page[domain.Movie]{Items: items, Page: lq.page, HasMore: page.HasMore()}, nil
}

// Lists returns editorial selections for a location.
func (s *Service) Lists(ctx context.Context, p ListParams) (Page[domain.List], error) {
	lq, err := s.normalize(p)
	if err != nil {
		return Page[domain.List]{}, err
	}
	if lq.location == "" {
		lq.location = s.defaultLocation
	}

	page, err := fetchPage[kudago.ListDTO](ctx, s, kudago.Query{
		Op:       kudago.OpLists,
		Location: lq.location,
		Language: lq.lang,
		Page:     upstreamPage(lq.page),
		Now:      s.anchor(s.clock.Now()),
	})
	if err != nil {
		return Page[domain.List]{}, err
	}

	items := make([]domain.List, 0, len(page.Results))
	for _, l := range page.Results {
		items = append(items, kudago.ToList(l))
	}
	return Page[domain.List]{Items: items, Page: lq.page, HasMore: page.HasMore()}, nil
}

func (s *Service) Categories(ctx context.Context, lang string) ([]domain.Category, error) {
	l, err := domain.ParseLanguage(lang, s.defaultLang)
	if err != nil {
		return nil, err
	}
	var raw []kudago.CategoryDTO
	if err := s.fetch(ctx, kudago.Query{Op: kudago.OpCategories, Language: l}, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(raw))
	for _, c := range raw {
		out = append(out, kudago.ToCategory(c))
	}
	return out, nil
}

func (s *Service) Locations(ctx context.Context, lang string) ([]domain.Location, error) {
	l, err := domain.ParseLanguage(lang, s.defaultLang)
	if err != nil {
		return nil, err
	}
	var raw []kudago.LocationDTO
	if err := s.fetch(ctx, kudago.Query{Op: kudago.OpLocations, Language: l}, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Location, 0, len(raw))
	for _, loc := range raw {
		out = append(out, kudago.ToLocation(loc))
	}
	return out, nil
}
