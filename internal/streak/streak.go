// Package streak derives journaling streak statistics from a set of entry
// dates. It holds no state and does no I/O.
package streak

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/sakif/moodjournal/internal/model"
)

// dayNumber maps a calendar day to a day count, ignoring time of day and zone.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Calculate computes current, longest and missed-day counts.
//
// The current streak is still alive when the latest entry is today or
// yesterday; it counts back from today (or yesterday when today has no entry)
// to the first gap. Missed days are the empty days between the first and the
// last entry.
func Calculate(dates []time.Time, today time.Time) model.StreakResult {
	days := lo.Uniq(lo.Map(dates, func(d time.Time, _ int) int64 { return dayNumber(d) }))
	if len(days) == 0 {
		return model.StreakResult{}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	return model.StreakResult{
		CurrentStreak: current(days, dayNumber(today)),
		LongestStreak: longest(days),
		MissedDays:    missed(days),
	}
}

func current(days []int64, today int64) int {
	present := make(map[int64]bool, len(days))
	for _, d := range days {
		present[d] = true
	}

	if days[len(days)-1] < today-1 {
		return 0
	}

	cursor := today
	if !present[cursor] {
		cursor = today - 1
	}

	n := 0
	for present[cursor] {
		n++
		cursor--
	}
	return n
}

func longest(days []int64) int {
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

func missed(days []int64) int {
	total := 0
	for i := 1; i < len(days); i++ {
		if gap := days[i] - days[i-1]; gap > 1 {
			total += int(gap - 1)
		}
	}
	return total
}
