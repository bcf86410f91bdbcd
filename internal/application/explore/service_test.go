package explore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/upstream"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes & Helpers ---

var refNow = time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

// fakeUpstream answers by resource with canned JSON and records every spec.
type fakeUpstream struct {
	mu     sync.Mutex
	bodies map[kudago.Resource]string
	errs   map[kudago.Resource]error
	calls  []kudago.Spec
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		bodies: map[kudago.Resource]string{},
		errs:   map[kudago.Resource]error{},
	}
}

func (f *fakeUpstream) Fetch(ctx context.Context, spec kudago.Spec, dest any) error {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	body, hasBody := f.bodies[spec.Resource]
	err := f.errs[spec.Resource]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !hasBody {
		body = `{"count":0,"next":null,"results":[]}`
	}
	return json.Unmarshal([]byte(body), dest)
}

func (f *fakeUpstream) lastCall(t *testing.T) kudago.Spec {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func param(s kudago.Spec, key string) string {
	v, _ := s.Get(key)
	return v
}

func newTestService(up Upstream) *Service {
	return New(up, fakeClock{t: refNow}, domain.LangRU, "msk")
}

// unix seconds relative to refNow
func ts(d time.Duration) int64 { return refNow.Add(d).Unix() }

func eventJSON(id int64, title string, starts ...int64) string {
	var dates []string
	for _, s := range starts {
		dates = append(dates, `{"start":`+itoa(s)+`,"end":null}`)
	}
	return `{"id":` + itoa(id) + `,"title":"` + title + `","dates":[` + strings.Join(dates, ",") + `]}`
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func pageJSON(next bool, items ...string) string {
	n := "null"
	if next {
		n = `"https://kudago.com/public-api/v1.4/events/?page=2"`
	}
	return `{"count":` + itoa(int64(len(items))) + `,"next":` + n + `,"results":[` + strings.Join(items, ",") + `]}`
}

func ids(page Page[domain.EventRecord]) []int64 {
	out := make([]int64, 0, len(page.Items))
	for _, r := range page.Items {
		out = append(out, r.ID)
	}
	return out
}

// --- Tests ---

func TestUpcoming(t *testing.T) {
	t.Run("dedups_and_sorts_by_date", func(t *testing.T) {
		up := newFakeUpstream()
		up.bodies[kudago.ResourceEvents] = pageJSON(true,
			eventJSON(1, "Late", ts(72*time.Hour)),
			eventJSON(2, "Soon", ts(-time.Hour), ts(2*time.Hour)),
			eventJSON(1, "Late", ts(48*time.Hour)),
			eventJSON(3, "Gone", ts(-time.Hour)),
		)

		page, err := newTestService(up).Upcoming(context.Background(), ListParams{Category: "concert"})
		require.NoError(t, err)

		assert.Equal(t, []int64{2, 1}, ids(page))
		assert.Equal(t, refNow.Add(48*time.Hour), page.Items[1].SelectedDate)
		assert.True(t, page.HasMore)
		assert.Equal(t, 1, page.Page)

		spec := up.lastCall(t)
		assert.Equal(t, "concert", param(spec, "categories"))
		assert.Equal(t, "ru", param(spec, "lang"))
		assert.Equal(t, itoa(refNow.Unix()), param(spec, "actual_since"))
		_, hasPage := spec.Get("page")
		assert.False(t, hasPage)
	})

	t.Run("alphabetical_order", func(t *testing.T) {
		up := newFakeUpstream()
		up.bodies[kudago.ResourceEvents] = pageJSON(false,
			eventJSON(1, "Beta", ts(time.Hour)),
			eventJSON(2, "Alpha", ts(2*time.Hour)),
		)

		page, err := newTestService(up).Upcoming(context.Background(), ListParams{Order: "alphabetical", Page: 3, Lang: "en"})
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 1}, ids(page))
		assert.False(t, page.HasMore)

		spec := up.lastCall(t)
		assert.Equal(t, "3", param(spec, "page"))
		assert.Equal(t, "en", param(spec, "lang"))
	})

	t.Run("404_past_first_page_ends_list", func(t *testing.T) {
		up := newFakeUpstream()
		up.errs[kudago.ResourceEvents] = &upstream.StatusError{StatusCode: 404, Description: "Invalid page."}

		page, err := newTestService(up).Upcoming(context.Background(), ListParams{Page: 4})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
		assert.False(t, page.HasMore)
		assert.Equal(t, 4, page.Page)
	})

	t.Run("404_on_first_page_is_not_found", func(t *testing.T) {
		up := newFakeUpstream()
		up.errs[kudago.ResourceEvents] = &upstream.StatusError{StatusCode: 404, Description: "Not found."}

		_, err := newTestService(up).Upcoming(context.Background(), ListParams{})
		var ae *domain.AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, domain.CodeNotFound, ae.Code)
	})

	t.Run("invalid_params", func(t *testing.T) {
		svc := newTestService(newFakeUpstream())
		for _, p := range []ListParams{{Lang: "de"}, {Order: "random"}, {Page: -2}} {
			_, err := svc.Upcoming(context.Background(), p)
			var ae *domain.AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, domain.CodeValidation, ae.Code)
		}
	})
}

func TestUpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code domain.ErrCode
	}{
		{"timeout", upstream.ErrTimeout, domain.CodeUpstreamTimeout},
		{"canceled", upstream.ErrCanceled, domain.CodeUpstream},
		{"unavailable", upstream.ErrUnavailable, domain.CodeUpstream},
		{"decode", upstream.ErrDecode, domain.CodeUpstream},
		{"server_error", &upstream.StatusError{StatusCode: 500, Description: "boom"}, domain.CodeUpstream},
		{"unknown", errors.New("weird"), domain.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newFakeUpstream()
			up.errs[kudago.ResourceEvents] = tt.err

			_, err := newTestService(up).Upcoming(context.Background(), ListParams{})
			var ae *domain.AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}

	t.Run("server_error_keeps_status", func(t *testing.T) {
		err := mapUpstreamErr(&upstream.StatusError{StatusCode: 503, Description: "down"})
		var ae *domain.AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "503", ae.Meta["status"])
		assert.Equal(t, "down", ae.Meta["description"])
	})
}

func TestNearby(t *testing.T) {
	up := newFakeUpstream()
	up.bodies[kudago.ResourceEvents] = pageJSON(false, eventJSON(5, "Show", ts(time.Hour)))

	svc := newTestService(up)

	_, err := svc.Nearby(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "msk", param(up.lastCall(t), "location"))

	_, err = svc.Nearby(context.Background(), ListParams{Location: " spb "})
	require.NoError(t, err)
	assert.Equal(t, "spb", param(up.lastCall(t), "location"))
}

func TestToday(t *testing.T) {
	t.Run("index_then_details", func(t *testing.T) {
		up := newFakeUpstream()
		up.bodies[kudago.ResourceEventsOfDay] = `{"count":3,"next":null,"results":[
			{"date":"2025-12-25","location":"msk","title":"a","object":{"id":11,"ctype":"event"}},
			{"date":"2025-12-25","location":"msk","title":"p","object":{"id":99,"ctype":"place"}},
			{"date":"2025-12-25","location":"msk","title":"b","object":{"id":12,"ctype":"event"}}
		]}`
		up.bodies[kudago.ResourceEvents] = pageJSON(false,
			eventJSON(12, "B", ts(time.Hour)),
			eventJSON(11, "A", ts(3*time.Hour)),
		)

		page, err := newTestService(up).Today(context.Background(), ListParams{Location: "spb"})
		require.NoError(t, err)
		assert.Equal(t, []int64{12, 11}, ids(page))

		require.Len(t, up.calls, 2)
		assert.Equal(t, kudago.ResourceEventsOfDay, up.calls[0].Resource)
		assert.Equal(t, "spb", param(up.calls[0], "location"))
		assert.Equal(t, "11,12", param(up.calls[1], "ids"))
	})

	t.Run("keeps_events_that_started_earlier_today", func(t *testing.T) {
		up := newFakeUpstream()
		up.bodies[kudago.ResourceEventsOfDay] = `{"count":2,"next":null,"results":[
			{"date":"2025-12-25","location":"msk","title":"m","object":{"id":5,"ctype":"event"}},
			{"date":"2025-12-25","location":"msk","title":"e","object":{"id":6,"ctype":"event"}}
		]}`
		up.bodies[kudago.ResourceEvents] = pageJSON(false,
			eventJSON(5, "Morning", ts(-2*time.Hour)),
			eventJSON(6, "Evening", ts(8*time.Hour)),
			eventJSON(5, "Morning", ts(-3*time.Hour)),
		)

		page, err := newTestService(up).Today(context.Background(), ListParams{})
		require.NoError(t, err)

		require.Equal(t, []int64{5, 6}, ids(page))
		assert.Equal(t, refNow.Add(-2*time.Hour), page.Items[0].SelectedDate)
		assert.Equal(t, refNow.Add(8*time.Hour), page.Items[1].SelectedDate)
	})

	t.Run("empty_index_skips_details", func(t *testing.T) {
		up := newFakeUpstream()
		page, err := newTestService(up).Today(context.Background(), ListParams{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Len(t, up.calls, 1)
	})
}

func TestWindow(t *testing.T) {
	up := newFakeUpstream()
	svc := newTestService(up)

	_, err := svc.Window(context.Background(), 0, ListParams{})
	require.NoError(t, err)
	spec := up.lastCall(t)
	assert.Equal(t, itoa(refNow.Unix()), param(spec, "actual_since"))
	assert.Equal(t, itoa(refNow.Add(7*24*time.Hour).Unix()), param(spec, "actual_until"))

	_, err = svc.Window(context.Background(), 40, ListParams{})
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Meta, "days")
}

func TestPast(t *testing.T) {
	up := newFakeUpstream()
	up.bodies[kudago.ResourceEvents] = pageJSON(false,
		eventJSON(1, "Older", ts(-48*time.Hour)),
		eventJSON(2, "Recent", ts(-2*time.Hour), ts(5*time.Hour)),
		eventJSON(3, "Future only", ts(time.Hour)),
		eventJSON(1, "Older", ts(-72*time.Hour)),
	)

	page, err := newTestService(up).Past(context.Background(), ListParams{})
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 1, 1}, ids(page))
	assert.Equal(t, refNow.Add(-2*time.Hour), page.Items[0].SelectedDate)
	assert.Equal(t, itoa(refNow.Unix()), param(up.lastCall(t), "actual_until"))
}

func TestMap(t *testing.T) {
	up := newFakeUpstream()
	up.bodies[kudago.ResourceEvents] = pageJSON(false, eventJSON(7, "Expo", ts(time.Hour)))
	svc := newTestService(up)

	page, err := svc.Map(context.Background(), MapParams{Lat: 55.75, Lon: 37.61, Radius: 1500})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids(page))
	assert.Equal(t, "-dates", param(up.lastCall(t), "order_by"))

	_, err = svc.Map(context.Background(), MapParams{Lat: 55.75, Lon: 37.61})
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, domain.CodeValidation, ae.Code)
}

func TestSearch(t *testing.T) {
	up := newFakeUpstream()
	up.bodies[kudago.ResourceSearch] = `{"count":3,"next":null,"results":[
		{"id":1,"title":"Jazz","ctype":"event","daterange":{"start":` + itoa(ts(2*time.Hour)) + `}},
		{"id":2,"title":"Jazz club","ctype":"place"},
		{"id":3,"title":"Jazz fest","ctype":"event","daterange":{"start":` + itoa(ts(time.Hour)) + `}}
	]}`

	svc := newTestService(up)
	page, err := svc.Search(context.Background(), SearchParams{Text: "jazz"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(page))

	_, err = svc.Search(context.Background(), SearchParams{Text: "   "})
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Meta, "q")
}

func TestDetails(t *testing.T) {
	t.Run("batches_and_keeps_past", func(t *testing.T) {
		up := newFakeUpstream()
		up.bodies[kudago.ResourceEvents] = pageJSON(false,
			eventJSON(1, "Next", ts(-time.Hour), ts(time.Hour)),
			eventJSON(2, "Over", ts(-time.Hour)),
		)

		var in []int64
		for i := int64(1); i <= 45; i++ {
			in = append(in, i)
		}

		records, err := newTestService(up).Details(context.Background(), in, "")
		require.NoError(t, err)
		assert.Len(t, up.calls, 3)
		assert.Len(t, records, 6)
		assert.Equal(t, refNow.Add(time.Hour), records[0].SelectedDate)
		assert.Equal(t, refNow.Add(-time.Hour), records[1].SelectedDate)
	})

	t.Run("one_failed_batch_fails_all", func(t *testing.T) {
		up := newFakeUpstream()
		up.errs[kudago.ResourceEvents] = upstream.ErrTimeout

		_, err := newTestService(up).Details(context.Background(), []int64{1, 2}, "en")
		var ae *domain.AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, domain.CodeUpstreamTimeout, ae.Code)
	})

	t.Run("limits", func(t *testing.T) {
		svc := newTestService(newFakeUpstream())
		_, err := svc.Details(context.Background(), nil, "")
		assert.Error(t, err)

		_, err = svc.Details(context.Background(), make([]int64, MaxDetailIDs+1), "")
		assert.Error(t, err)
	})
}

func TestCatalog(t *testing.T) {
	up := newFakeUpstream()
	up.bodies[kudago.ResourceMovies] = `{"count":1,"next":"x","results":[{"id":4,"title":"Film","year":2024,"poster":{"image":"https://img/p.jpg"},"site_url":"https://kudago.com/film"}]}`
	up.bodies[kudago.ResourceLists] = `{"count":1,"next":null,"results":[{"id":8,"title":"Top","slug":"top","publication_date":1700000000}]}`
	up.bodies[kudago.ResourceCategories] = `[{"id":1,"slug":"concert","name":"Концерты"}]`
	up.bodies[kudago.ResourceLocations] = `[{"slug":"msk","name":"Москва"},{"slug":"spb","name":"Санкт-Петербург"}]`

	svc := newTestService(up)
	ctx := context.Background()

	movies, err := svc.Movies(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, movies.Items, 1)
	assert.Equal(t, "https://img/p.jpg", movies.Items[0].Poster)
	assert.True(t, movies.HasMore)
	assert.Equal(t, "msk", param(up.lastCall(t), "location"))

	lists, err := svc.Lists(ctx, ListParams{Location: "spb"})
	require.NoError(t, err)
	require.Len(t, lists.Items, 1)
	assert.Equal(t, "top", lists.Items[0].Slug)

	cats, err := svc.Categories(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 1, Slug: "concert", Name: "Концерты"}}, cats)
	assert.Equal(t, "en", param(up.lastCall(t), "lang"))

	locs, err := svc.Locations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, locs, 2)

	_, err = svc.Categories(ctx, "xx")
	assert.Error(t, err)
}
