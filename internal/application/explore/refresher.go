package explore

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	zlog "github.com/rs/zerolog/log"
)

const FeedUpcoming = "upcoming"

// FeedNearby is the feed name for the nearby listing of one location.
func FeedNearby(location string) string { return "nearby:" + location }

// FeedLoader is the part of Service the refresher needs.
type FeedLoader interface {
	Upcoming(ctx context.Context, p ListParams) (Page[domain.EventRecord], error)
	Nearby(ctx context.Context, p ListParams) (Page[domain.EventRecord], error)
}

// Refresher periodically reloads the first page of the upcoming feed and of
// the nearby feed of each configured location, recording every run in a FeedStore.
type Refresher struct {
	loader    FeedLoader
	store     *FeedStore
	clock     Clock
	locations []string
	timeout   time.Duration

	cron *cron.Cron
}

func NewRefresher(loader FeedLoader, store *FeedStore, clock Clock, locations []string, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Refresher{
		loader:    loader,
		store:     store,
		clock:     clock,
		locations: locations,
		timeout:   timeout,
	}
}

// Start schedules RunOnce with a standard 5-field cron expression.
func (r *Refresher) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.RunOnce(context.Background()) }); err != nil {
		return domain.ErrValidationMeta("invalid refresh schedule", map[string]string{"REFRESH_CRON": err.Error()})
	}
	r.cron = c
	c.Start()
	zlog.Info().Str("schedule", spec).Strs("locations", r.locations).Msg("feed refresher started")
	return nil
}

// Stop halts scheduling and waits for a running refresh, bounded by ctx.
func (r *Refresher) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce refreshes every feed concurrently and waits for all of them.
func (r *Refresher) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.refresh(ctx, FeedUpcoming, func(ctx context.Context) (Page[domain.EventRecord], error) {
			return r.loader.Upcoming(ctx, ListParams{})
		})
	}()

	for _, loc := range r.locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			r.refresh(ctx, FeedNearby(loc), func(ctx context.Context) (Page[domain.EventRecord], error) {
				return r.loader.Nearby(ctx, ListParams{Location: loc})
			})
		}(loc)
	}

	wg.Wait()
}

func (r *Refresher) refresh(ctx context.Context, feed string, load func(context.Context) (Page[domain.EventRecord], error)) {
	r.store.Dispatch(feed, MsgLoad{At: r.clock.Now()})

	page, err := load(ctx)
	if err != nil {
		metrics.RefreshRuns.WithLabelValues(feed, "error").Inc()
		zlog.Warn().Err(err).Str("feed", feed).Msg("feed refresh failed")
		r.store.Dispatch(feed, MsgFailed{Err: err, At: r.clock.Now()})
		return
	}

	metrics.RefreshRuns.WithLabelValues(feed, "ok").Inc()
	zlog.Debug().Str("feed", feed).Int("items", len(page.Items)).Msg("feed refreshed")
	r.store.Dispatch(feed, MsgLoaded{Listing: page, At: r.clock.Now()})
}

// PublishRefreshes forwards every transition into PhaseSuccess to pub until
// ctx is done. Publishing is best-effort.
func PublishRefreshes(ctx context.Context, store *FeedStore, pub EventPublisher, clock Clock) {
	ch, cancel := store.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			if t.Next.Phase != PhaseSuccess || t.Prev.Phase == PhaseSuccess {
				continue
			}
			env := refreshedEnvelope(ctx, t, clock.Now().UTC())
			if err := pub.PublishEvent(ctx, RoutingKeyFeedRefreshed, env); err != nil {
				zlog.Error().
					Err(err).
					Str("rk", RoutingKeyFeedRefreshed).
					Str("feed", t.Feed).
					Msg("publish domain event failed")
			}
		}
	}
}

func refreshedEnvelope(ctx context.Context, t Transition, now time.Time) DomainEventEnvelope[FeedRefreshedPayload] {
	items := t.Next.Listing.Items
	p := FeedRefreshedPayload{
		Feed:        t.Feed,
		Items:       len(items),
		HasMore:     t.Next.Listing.HasMore,
		RefreshedAt: t.Next.UpdatedAt.UTC(),
	}
	if len(items) > 0 {
		p.FirstID = items[0].ID
		d := items[0].SelectedDate.UTC()
		p.NextDate = &d
	}
	return DomainEventEnvelope[FeedRefreshedPayload]{
		Version:    EventVersion,
		Producer:   EventProducer,
		MessageID:  uuid.NewString(),
		TraceID:    TraceIDFromContext(ctx),
		OccurredAt: now,
		Payload:    p,
	}
}
