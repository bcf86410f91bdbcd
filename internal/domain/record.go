package domain

import (
	"strings"
	"time"
)

// DateRange is one candidate occurrence of an event. Either bound may be absent.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type Visitor struct {
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// EventRecord is the normalized shape every upstream event payload is mapped into
// before deduplication. ID is not unique on its own: the same logical event can
// come back from several queries, and (ID, Title) is what identifies it.
type EventRecord struct {
	ID             int64
	Title          string
	CandidateDates []DateRange

	// SelectedDate is derived by SelectDate/Deduplicate, never supplied by callers.
	SelectedDate time.Time

	Description    string
	Address        string
	Image          string
	SiteURL        string
	FavoritesCount int
	Visitors       []Visitor
}

// Key is the grouping identity of a record. Comparison is exact.
type Key struct {
	ID    int64
	Title string
}

func (r EventRecord) Key() Key { return Key{ID: r.ID, Title: r.Title} }

type Language string

const (
	LangRU Language = "ru"
	LangEN Language = "en"
)

func (l Language) Valid() bool { return l == LangRU || l == LangEN }

// ParseLanguage returns def for an empty value.
func ParseLanguage(v string, def Language) (Language, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def, nil
	}
	l := Language(v)
	if !l.Valid() {
		return "", ErrValidationMeta("invalid query param", map[string]string{
			"lang": "must be one of: ru, en",
		})
	}
	return l, nil
}
