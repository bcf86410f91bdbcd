package dto

import "time"

// EventResp is the stable API response model for one de-duplicated event.
// Date is the selected occurrence; Dates lists every candidate as received.
type EventResp struct {
	ID    int64      `json:"id"`
	Title string     `json:"title"`
	Date  *time.Time `json:"date,omitempty"`

	Dates []DateResp `json:"dates"`

	Description    string        `json:"description,omitempty"`
	Address        string        `json:"address,omitempty"`
	Image          string        `json:"image,omitempty"`
	SiteURL        string        `json:"site_url,omitempty"`
	FavoritesCount int           `json:"favorites_count"`
	Visitors       []VisitorResp `json:"visitors,omitempty"`
}

type DateResp struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type VisitorResp struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type PageResp[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	HasMore bool `json:"has_more"`
}

type BookmarkResp struct {
	EventID   int64      `json:"event_id"`
	Title     string     `json:"title"`
	EventDate *time.Time `json:"event_date,omitempty"`
	Address   string     `json:"address,omitempty"`
	Image     string     `json:"image,omitempty"`
	SiteURL   string     `json:"site_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type AddBookmarkReq struct {
	EventID int64  `json:"event_id"`
	Lang    string `json:"lang,omitempty"`
}

type FeedStatusResp struct {
	Feed      string     `json:"feed"`
	Phase     string     `json:"phase"`
	Items     int        `json:"items"`
	HasMore   bool       `json:"has_more"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
