package explore

import (
	"context"
	"time"

	appCtx "github.com/baechuer/real-time-ressys/services/explore-service/internal/pkg/context"
)

const (
	EventVersion  = 1
	EventProducer = "explore-service"

	RoutingKeyFeedRefreshed = "explore.feed.refreshed"
)

// DomainEventEnvelope is the stable contract for all domain events emitted by explore-service.
type DomainEventEnvelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// ID is used as the broker message id.
func (e DomainEventEnvelope[T]) ID() string { return e.MessageID }

// FeedRefreshedPayload is the business payload for routing key: explore.feed.refreshed
type FeedRefreshedPayload struct {
	Feed        string     `json:"feed"`
	Items       int        `json:"items"`
	HasMore     bool       `json:"has_more"`
	FirstID     int64      `json:"first_id,omitempty"`
	NextDate    *time.Time `json:"next_date,omitempty"`
	RefreshedAt time.Time  `json:"refreshed_at"`
}

// TraceIDFromContext reads request_id if available.
func TraceIDFromContext(ctx context.Context) string {
	return appCtx.GetRequestID(ctx)
}
