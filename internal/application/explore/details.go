package explore

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
)

// detailsBatch matches the API's default page size, so one batch is one page.
const (
	detailsBatch = 20
	MaxDetailIDs = 100
)

// Details loads events by id. Records keep their upcoming date when they have
// one and fall back to the latest past start; nothing is dropped.
func (s *Service) Details(ctx context.Context, ids []int64, lang string) ([]domain.EventRecord, error) {
	if len(ids) == 0 {
		return nil, domain.ErrValidationMeta("invalid query param", map[string]string{
			"ids": "at least one id is required",
		})
	}
	if len(ids) > MaxDetailIDs {
		return nil, domain.ErrValidationMeta("invalid query param", map[string]string{
			"ids": "at most 100 ids",
		})
	}
	l, err := domain.ParseLanguage(lang, s.defaultLang)
	if err != nil {
		return nil, err
	}

	records, err := s.fetchDetails(ctx, ids, l)
	if err != nil {
		return nil, err
	}

	displayDates(records, s.clock.Now())
	return records, nil
}

// displayDates sets each record's upcoming date, or its latest past start when
// it has none left.
func displayDates(records []domain.EventRecord, now time.Time) {
	for i := range records {
		if d, ok := domain.SelectDate(records[i].CandidateDates, now); ok {
			records[i].SelectedDate = d
		} else if d, ok := domain.LatestPast(records[i].CandidateDates, now); ok {
			records[i].SelectedDate = d
		}
	}
}

// fetchDetails splits ids into batches and fetches them concurrently.
// Output keeps batch order.
func (s *Service) fetchDetails(ctx context.Context, ids []int64, lang domain.Language) ([]domain.EventRecord, error) {
	var batches [][]int64
	for start := 0; start < len(ids); start += detailsBatch {
		end := min(start+detailsBatch, len(ids))
		batches = append(batches, ids[start:end])
	}

	results := make([][]domain.EventRecord, len(batches))
	errs := make([]error, len(batches))

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, batch []int64) {
			defer wg.Done()
			var page kudago.Page[kudago.EventDTO]
			if err := s.fetch(ctx, kudago.Query{Op: kudago.OpDetails, IDs: batch, Language: lang}, &page); err != nil {
				errs[idx] = err
				return
			}
			results[idx] = kudago.ToRecords(page.Results)
		}(i, batch)
	}
	wg.Wait()

	var out []domain.EventRecord
	for i := range batches {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, results[i]...)
	}
	if out == nil {
		out = []domain.EventRecord{}
	}
	return out, nil
}
