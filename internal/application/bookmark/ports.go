package bookmark

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	Upsert(ctx context.Context, b *domain.Bookmark) (bool, error)
	Delete(ctx context.Context, userID string, eventID int64) error
	ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error)
}

// EventLookup resolves event ids to records; the explore service satisfies it.
type EventLookup interface {
	Details(ctx context.Context, ids []int64, lang string) ([]domain.EventRecord, error)
}
