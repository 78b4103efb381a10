package derive

import "time"

// DayGroup is one calendar day's entries, newest first within the day.
type DayGroup struct {
	Day     time.Time // midnight in the grouping location
	Entries []Entry
}

// GroupByDay buckets balance-annotated entries by calendar day in loc,
// preserving the newest-first ordering of days and of entries within a day.
// Entries without a usable date are collected under the zero day.
func GroupByDay(entries []Entry, loc *time.Location) []DayGroup {
	var groups []DayGroup
	index := map[time.Time]int{}
	for _, e := range entries {
		day := time.Time{}
		if !e.Date.IsZero() {
			day = startOfDay(e.Date, loc)
		}
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
