package explore

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
)

type Clock interface {
	Now() time.Time
}

// Upstream executes a request spec and decodes the JSON answer into dest.
type Upstream interface {
	Fetch(ctx context.Context, spec kudago.Spec, dest any) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, payload any) error
}
