// Package availability decides whether a room can host a stay: no active
// reservation may overlap the half-open [dateStart, dateEnd) window and no
// expanded block occurrence may fall inside it.
package availability

import (
	"sort"
	"time"

	"innkeep/pkg/model"
)

// Expand returns the individual blocked dates a block contributes inside the
// query window [from, to), sorted ascending and deduplicated. The result is
// pure: same inputs always yield the same dates.
//
// For none and daily recurrence the stored window is the full extent. For
// weekly and monthly the stored window is the first occurrence of a pattern
// that repeats indefinitely, so the query upper bound, not the stored
// date_end, limits expansion.
func Expand(block *model.RoomBlock, from, to time.Time) []time.Time {
	blockStart := model.Day(block.DateStart)
	blockEnd := model.Day(block.DateEnd)
	windowStart := model.Day(from)
	windowEnd := model.Day(to)

	if !windowEnd.After(windowStart) {
		return nil
	}

	start := blockStart
	if windowStart.After(start) {
		start = windowStart
	}

	var dates []time.Time

	if !block.Recurs() {
		// none and daily: the stored window is the whole extent
		end := blockEnd
		if windowEnd.Before(end) {
			end = windowEnd
		}
		for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
			dates = append(dates, day)
		}
		return dates
	}

	for day := start; day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		switch block.Recurrence {
		case model.RecurrenceWeekly:
			if model.DaysBetween(blockStart, day)%7 == 0 {
				dates = append(dates, day)
			}
		case model.RecurrenceMonthly:
			if day.Day() == blockStart.Day() {
				dates = append(dates, day)
			}
		}
	}

	return dates
}

// ExpandAll merges the expansions of several blocks into one sorted,
// deduplicated date list.
func ExpandAll(blocks []*model.RoomBlock, from, to time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time

	for _, block := range blocks {
		for _, day := range Expand(block, from, to) {
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			dates = append(dates, day)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
