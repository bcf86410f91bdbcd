package kudago

import (
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
)

func ToRecord(e EventDTO) domain.EventRecord {
	r := domain.EventRecord{
		ID:             e.ID,
		Title:          e.Title,
		CandidateDates: toRanges(e.Dates),
		Description:    e.Description,
		SiteURL:        e.SiteURL,
		FavoritesCount: e.FavoritesCount,
	}

	var parts []string
	if e.Place != nil && strings.TrimSpace(e.Place.Address) != "" {
		parts = append(parts, strings.TrimSpace(e.Place.Address))
	}
	if e.Location != nil && strings.TrimSpace(e.Location.Name) != "" {
		parts = append(parts, strings.TrimSpace(e.Location.Name))
	}
	r.Address = strings.Join(parts, ", ")

	if len(e.Images) > 0 {
		r.Image = e.Images[0].Image
	}

	for _, p := range e.Participants {
		if p.Agent == nil {
			continue
		}
		v := domain.Visitor{Name: p.Agent.Title}
		if len(p.Agent.Images) > 0 {
			v.Image = p.Agent.Images[0].Image
		}
		r.Visitors = append(r.Visitors, v)
	}
	return r
}

func ToRecords(in []EventDTO) []domain.EventRecord {
	out := make([]domain.EventRecord, 0, len(in))
	for _, e := range in {
		out = append(out, ToRecord(e))
	}
	return out
}

func SearchToRecord(s SearchResultDTO) domain.EventRecord {
	r := domain.EventRecord{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		SiteURL:     s.ItemURL,
	}
	if s.DateRange != nil {
		r.CandidateDates = toRanges([]DateDTO{*s.DateRange})
	}
	if s.Place != nil {
		r.Address = s.Place.Address
	}
	if s.FirstImage != nil {
		r.Image = s.FirstImage.Image
	}
	return r
}

// TodayIDs keeps only event objects, in index order, without repeats.
func TodayIDs(items []TodayEventDTO) []int64 {
	seen := make(map[int64]struct{}, len(items))
	out := make([]int64, 0, len(items))
	for _, it := range items {
		if it.Object.CType != "event" {
			continue
		}
		if _, ok := seen[it.Object.ID]; ok {
			continue
		}
		seen[it.Object.ID] = struct{}{}
		out = append(out, it.Object.ID)
	}
	return out
}

func ToCategory(c CategoryDTO) domain.Category {
	return domain.Category{ID: c.ID, Slug: c.Slug, Name: c.Name}
}

func ToLocation(l LocationDTO) domain.Location {
	return domain.Location{Slug: l.Slug, Name: l.Name}
}

func ToMovie(m MovieDTO) domain.Movie {
	return domain.Movie{ID: m.ID, Title: m.Title, Year: m.Year, Poster: m.Poster.Image, SiteURL: m.SiteURL}
}

func ToList(l ListDTO) domain.List {
	out := domain.List{ID: l.ID, Title: l.Title, Slug: l.Slug, SiteURL: l.SiteURL}
	if l.PublicationDate != nil {
		t := time.Unix(*l.PublicationDate, 0).UTC()
		out.PublishedAt = &t
	}
	return out
}

func toRanges(in []DateDTO) []domain.DateRange {
	out := make([]domain.DateRange, 0, len(in))
	for _, d := range in {
		out = append(out, domain.DateRange{Start: unixPtr(d.Start), End: unixPtr(d.End)})
	}
	return out
}

func unixPtr(v *int64) *time.Time {
	if v == nil {
		return nil
	}
	t := time.Unix(*v, 0).UTC()
	return &t
}
