package domain

import "time"

// Bookmark is a user's saved event. Event fields are a snapshot taken when
// the bookmark was added.
type Bookmark struct {
	UserID    string
	EventID   int64
	Title     string
	EventDate *time.Time
	Address   string
	Image     string
	SiteURL   string
	CreatedAt time.Time
}
