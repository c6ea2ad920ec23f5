// Package progress manages the monthly progress history of an activity.
package progress

import (
	"fmt"
	"sort"

	"github.com/tarefa360/tarefa360/internal"
)

// Entry is one monthly progress snapshot.
type Entry struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Percentage int    `json:"percentage"`
	Comment    string `json:"comment"`
}

// Before orders entries by (year, month).
func (e Entry) Before(other Entry) bool {
	if e.Year != other.Year {
		return e.Year < other.Year
	}
	return e.Month < other.Month
}

func (e Entry) samePeriod(year, month int) bool {
	return e.Year == year && e.Month == month
}

// ClampPercentage bounds p to [0, 100].
func ClampPercentage(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// AddEntry returns a new history with candidate appended. history is not modified.
func AddEntry(history []Entry, candidate Entry) ([]Entry, error) {
	if candidate.Year <= 0 {
		return nil, internal.NewValidationFieldError("year", "year must be positive", internal.ErrCodeInvalidDate)
	}
	if candidate.Month < 1 || candidate.Month > 12 {
		return nil, internal.NewValidationFieldError("month", "month must be between 1 and 12", internal.ErrCodeInvalidDate)
	}
	for _, e := range history {
		if e.samePeriod(candidate.Year, candidate.Month) {
			return nil, internal.NewDuplicateError(
				fmt.Sprintf("progress for %02d/%d is already recorded", candidate.Month, candidate.Year),
				internal.ErrCodeDuplicatePeriodEntry,
			)
		}
	}

	candidate.Percentage = ClampPercentage(candidate.Percentage)

	next := make([]Entry, 0, len(history)+1)
	next = append(next, history...)
	return append(next, candidate), nil
}

// RemoveEntry returns history without the (year, month) entry. Missing entries are ignored.
func RemoveEntry(history []Entry, year, month int) []Entry {
	next := make([]Entry, 0, len(history))
	for _, e := range history {
		if !e.samePeriod(year, month) {
			next = append(next, e)
		}
	}
	return next
}

// Latest returns the entry with the greatest (year, month), or nil for an empty history.
func Latest(history []Entry) *Entry {
	if len(history) == 0 {
		return nil
	}
	latest := history[0]
	for _, e := range history[1:] {
		if latest.Before(e) {
			latest = e
		}
	}
	return &latest
}

// SortedDescending returns a copy ordered newest first.
func SortedDescending(history []Entry) []Entry {
	out := append(make([]Entry, 0, len(history)), history...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Before(out[i])
	})
	return out
}
