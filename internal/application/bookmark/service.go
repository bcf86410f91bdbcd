package bookmark

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type Service struct {
	repo   Repo
	events EventLookup
	clock  Clock
}

func New(repo Repo, events EventLookup, clock Clock) *Service {
	return &Service{repo: repo, events: events, clock: clock}
}

// Add bookmarks an event for userID, snapshotting its current details.
// Adding twice refreshes the snapshot; created is false in that case.
func (s *Service) Add(ctx context.Context, userID string, eventID int64, lang string) (domain.Bookmark, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Bookmark{}, false, domain.ErrUnauthorized("missing user")
	}
	if eventID <= 0 {
		return domain.Bookmark{}, false, domain.ErrValidationMeta("invalid body", map[string]string{
			"event_id": "must be a positive integer",
		})
	}

	records, err := s.events.Details(ctx, []int64{eventID}, lang)
	if err != nil {
		return domain.Bookmark{}, false, err
	}
	var rec *domain.EventRecord
	for i := range records {
		if records[i].ID == eventID {
			rec = &records[i]
			break
		}
	}
	if rec == nil {
		return domain.Bookmark{}, false, domain.ErrNotFound("event not found")
	}

	b := domain.Bookmark{
		UserID:    userID,
		EventID:   rec.ID,
		Title:     rec.Title,
		Address:   rec.Address,
		Image:     rec.Image,
		SiteURL:   rec.SiteURL,
		CreatedAt: s.clock.Now().UTC(),
	}
	if !rec.SelectedDate.IsZero() {
		d := rec.SelectedDate.UTC()
		b.EventDate = &d
	}

	created, err := s.repo.Upsert(ctx, &b)
	if err != nil {
		return domain.Bookmark{}, false, err
	}

	zlog.Info().
		Str("user_id", userID).
		Int64("event_id", eventID).
		Bool("created", created).
		Msg("bookmark saved")
	return b, created, nil
}

func (s *Service) Remove(ctx context.Context, userID string, eventID int64) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUnauthorized("missing user")
	}
	if eventID <= 0 {
		return domain.ErrValidationMeta("invalid path param", map[string]string{
			"event_id": "must be a positive integer",
		})
	}
	return s.repo.Delete(ctx, userID, eventID)
}

// List returns the user's bookmarks, soonest event first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized("missing user")
	}
	return s.repo.ListByUser(ctx, userID)
}
