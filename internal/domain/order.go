package domain

import (
	"sort"
	"strings"
)

type Order string

const (
	OrderDate         Order = "date"
	OrderAlphabetical Order = "alphabetical"
)

func ParseOrder(v string) (Order, error) {
	switch Order(strings.TrimSpace(v)) {
	case "", OrderDate:
		return OrderDate, nil
	case OrderAlphabetical:
		return OrderAlphabetical, nil
	default:
		return "", ErrValidationMeta("invalid query param", map[string]string{
			"order": "must be one of: date, alphabetical",
		})
	}
}

// SortRecords sorts in place. The sort is stable so equal records keep input order.
func SortRecords(records []EventRecord, order Order) {
	switch order {
	case OrderAlphabetical:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Title != records[j].Title {
				return records[i].Title < records[j].Title
			}
			return records[i].SelectedDate.Before(records[j].SelectedDate)
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			if !records[i].SelectedDate.Equal(records[j].SelectedDate) {
				return records[i].SelectedDate.Before(records[j].SelectedDate)
			}
			return records[i].Title < records[j].Title
		})
	}
}
