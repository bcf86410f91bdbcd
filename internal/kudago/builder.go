package kudago

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
)

// Fixed per-resource constants. They never vary between runs.
const (
	EventPageSize  = 30
	SearchPageSize = 50

	eventExpand  = "location,place,dates,participants"
	eventFields  = "id,title,description,body_text,favorites_count,place,location,dates,participants,images,site_url"
	detailFields = "id,title,description,body_text,favorites_count,place,location,dates,participants,categories,images,site_url"
	movieFields  = "id,site_url,title,year,poster"
	listFields   = "id,publication_date,title,slug,site_url"
)

type Op string

const (
	OpLocations  Op = "locations"
	OpCategories Op = "categories"
	OpUpcoming   Op = "upcoming"
	OpNearby     Op = "nearby"
	OpToday      Op = "today"
	OpWindow     Op = "window"
	OpPast       Op = "past"
	OpDetails    Op = "details"
	OpSearch     Op = "search"
	OpMovies     Op = "movies"
	OpLists      Op = "lists"
	OpMap        Op = "map"
)

// Query is a logical fetch. Which fields matter depends on Op; the rest are ignored.
type Query struct {
	Op       Op
	Language domain.Language // empty: no lang param
	Page     int             // 0: no page param

	Location string
	Category string
	Text     string
	IDs      []int64

	// Now anchors actual_since for ops that only want current items.
	Now   time.Time
	Since time.Time
	Until time.Time

	Lat    float64
	Lon    float64
	Radius int // meters
}

// Build maps a logical query to exactly one Spec. It does not read the clock.
func Build(q Query) (Spec, error) {
	if q.Page < 0 {
		return Spec{}, invalid("page", "must be >= 1")
	}
	if q.Language != "" && !q.Language.Valid() {
		return Spec{}, invalid("lang", "must be one of: ru, en")
	}

	switch q.Op {
	case OpLocations:
		s := newSpec(ResourceLocations)
		tail(s, q.Language, 0)
		return *s, nil

	case OpCategories:
		s := newSpec(ResourceCategories)
		tail(s, q.Language, 0)
		return *s, nil

	case OpUpcoming:
		if q.Now.IsZero() {
			return Spec{}, invalid("now", "required")
		}
		s := newSpec(ResourceEvents)
		commonEventFields(s)
		if c := strings.TrimSpace(q.Category); c != "" {
			s.set("categories", c)
		}
		s.set("actual_since", unix(q.Now))
		tail(s, q.Language, q.Page)
		return *s, nil

	case OpNearby:
		loc := strings.TrimSpace(q.Location)
		if loc == "" {
			return Spec{}, invalid("location", "required")
		}
		if q.Now.IsZero() {
			return Spec{}, invalid("now", "required")
		}
		s := newSpec(ResourceEvents)
		commonEventFields(s)
		s.set("location", loc)
		if c := strings.TrimSpace(q.Category); c != "" {
			s.set("categories", c)
		}
		s.set("actual_since", unix(q.Now))
		tail(s, q.Language, q.Page)
		return *s, nil

	case OpToday:
		loc := strings.TrimSpace(q.Location)
		if loc == "" {
			return Spec{}, invalid("location", "required")
		}
		s := newSpec(ResourceEventsOfDay)
		s.set("location", loc)
		tail(s, q.Language, q.Page)
		return *s, nil

	case OpWindow:
		if q.Since.IsZero() || q.Until.IsZero() {
			return Spec{}, invalid("window", "since and until are required")
		}
		if q.Until.Before(q.Since) {
			return Spec{}, invalid("until", "must be >= since")
		}
		s := newSpec(ResourceEvents)
		s.set("actual_since", unix(q.Since))
		s.set("actual_until", unix(q.Until))
		commonEventFields(s)
		tail(s, q.Language, q.Page)
		return *s, nil

	case OpPast:
		if q.Until.IsZero() {
			return Spec{}, invalid("until", "required")
		}
		s := newSpec(ResourceEvents)
		s.set("actual_until", unix(q.Until))
		commonEventFields(s)
		tail(s, q.Language, q.Page)
		return *s, nil

	case OpDetails:
		if len(q.IDs) == 0 {
			return Spec{}, invalid("ids", "at least one id is required")
		}
		ids := make([]string, 0, len(q.IDs))
		for _, id := range q.IDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		s := newSpec(ResourceEvents)
		s.set("ids", strings.Join(ids, ","))
		s.set("expand", eventExpand)
		s.set("fields", detailFields)
		tail(s, q.Language, 0)
		return *s, nil

	case OpSearch:
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return Spec{}, invalid("q", "required")
		}
		if q.Now.IsZero() {
			return Spec{}, invalid("now", "required")
		}
		s := newSpec(ResourceSearch)
		s.set("q", text)
		s.set("page_size", strconv.Itoa(SearchPageSize))
		s.set("actual_since", unix(q.Now))
		s.set("ctype", "event")
		s.set("order_by", "-publication_date")
		s.set("expand", eventExpand)
		tail(s, q.Language, q.Page)
		return *s, nil

	case OpMovies, OpLists:
		loc := strings.TrimSpace(q.Location)
		if loc == "" {
			return Spec{}, invalid("location", "required")
		}
		if q.Now.IsZero() {
			return Spec{}, invalid("now", "required")
		}
		res, fields := ResourceMovies, movieFields
		if q.Op == OpLists {
			res, fields = ResourceLists, listFields
		}
		s := newSpec(res)
		s.set("location", loc)
		s.set("actual_since", unix(q.Now))
		tail(s, q.Language, q.Page)
		s.set("fields", fields)
		return *s, nil

	case OpMap:
		// NaN fails every comparison, so the range check alone would let it through.
		if !finite(q.Lat) || !finite(q.Lon) || q.Lat < -90 || q.Lat > 90 || q.Lon < -180 || q.Lon > 180 {
			return Spec{}, invalid("coords", "lat must be within [-90,90] and lon within [-180,180]")
		}
		if q.Radius <= 0 {
			return Spec{}, invalid("radius", "must be > 0")
		}
		s := newSpec(ResourceEvents)
		s.set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
		s.set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
		s.set("radius", strconv.Itoa(q.Radius))
		s.set("order_by", "-dates")
		commonEventFieldsKeep(s)
		if c := strings.TrimSpace(q.Category); c != "" {
			s.set("categories", c)
		}
		if !q.Now.IsZero() {
			s.set("actual_since", unix(q.Now))
		}
		tail(s, q.Language, 0)
		return *s, nil
	}

	return Spec{}, invalid("op", "unsupported query")
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func commonEventFields(s *Spec) {
	s.set("page_size", strconv.Itoa(EventPageSize))
	s.set("order_by", "-publication_date")
	s.set("expand", eventExpand)
	s.set("fields", eventFields)
}

// commonEventFieldsKeep adds the common fields without overriding keys already set.
func commonEventFieldsKeep(s *Spec) {
	for _, p := range []Param{
		{"page_size", strconv.Itoa(EventPageSize)},
		{"order_by", "-publication_date"},
		{"expand", eventExpand},
		{"fields", eventFields},
	} {
		if _, ok := s.Get(p.Key); !ok {
			s.set(p.Key, p.Value)
		}
	}
}

func tail(s *Spec, lang domain.Language, page int) {
	if lang != "" {
		s.set("lang", string(lang))
	}
	if page > 0 {
		s.set("page", strconv.Itoa(page))
	}
}

func unix(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }

func invalid(field, msg string) error {
	return domain.ErrValidationMeta("invalid query", map[string]string{field: msg})
}
