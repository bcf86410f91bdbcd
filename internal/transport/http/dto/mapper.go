package dto

import (
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/application/explore"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
)

func ToEventResp(r domain.EventRecord) EventResp {
	out := EventResp{
		ID:             r.ID,
		Title:          r.Title,
		Dates:          make([]DateResp, 0, len(r.CandidateDates)),
		Description:    r.Description,
		Address:        r.Address,
		Image:          r.Image,
		SiteURL:        r.SiteURL,
		FavoritesCount: r.FavoritesCount,
	}
	if !r.SelectedDate.IsZero() {
		d := r.SelectedDate.UTC()
		out.Date = &d
	}
	for _, d := range r.CandidateDates {
		out.Dates = append(out.Dates, DateResp{Start: d.Start, End: d.End})
	}
	for _, v := range r.Visitors {
		out.Visitors = append(out.Visitors, VisitorResp{Name: v.Name, Image: v.Image})
	}
	return out
}

func ToEventResps(in []domain.EventRecord) []EventResp {
	out := make([]EventResp, 0, len(in))
	for _, r := range in {
		out = append(out, ToEventResp(r))
	}
	return out
}

func ToEventPage(p explore.Page[domain.EventRecord]) PageResp[EventResp] {
	return PageResp[EventResp]{Items: ToEventResps(p.Items), Page: p.Page, HasMore: p.HasMore}
}

// ToPage re-wraps a listing whose items already serialize as-is.
func ToPage[T any](p explore.Page[T]) PageResp[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return PageResp[T]{Items: items, Page: p.Page, HasMore: p.HasMore}
}

func ToBookmarkResp(b domain.Bookmark) BookmarkResp {
	return BookmarkResp{
		EventID:   b.EventID,
		Title:     b.Title,
		EventDate: b.EventDate,
		Address:   b.Address,
		Image:     b.Image,
		SiteURL:   b.SiteURL,
		CreatedAt: b.CreatedAt,
	}
}

func ToFeedStatusResp(feed string, s explore.FeedState) FeedStatusResp {
	out := FeedStatusResp{
		Feed:    feed,
		Phase:   string(s.Phase),
		Items:   len(s.Listing.Items),
		HasMore: s.Listing.HasMore,
		Error:   s.Err,
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt.UTC()
		out.UpdatedAt = &t
	}
	return out
}
