package domain

import "time"

type Category struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Location struct {
	Slug string `json:"slug"`
	Name string `json:"name,omitempty"`
}

type Movie struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Year    int    `json:"year,omitempty"`
	Poster  string `json:"poster,omitempty"`
	SiteURL string `json:"site_url,omitempty"`
}

type List struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	SiteURL     string     `json:"site_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
