package service

import (
	"time"
)

// MonthlyCount is one calendar-month bucket of an activity chart.
type MonthlyCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// monthKey identifies a calendar month. Bucketing by (year, month)
// rather than month name keeps same-named months in different years
// distinct.
type monthKey struct {
	year  int
	month time.Month
}

// monthStart returns midnight UTC on the first day of t's month.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// bucketStart returns the start of the oldest of the monthsBack
// trailing calendar months ending with now's month.
func bucketStart(now time.Time, monthsBack int) time.Time {
	return monthStart(now).AddDate(0, -(monthsBack - 1), 0)
}

// bucketByMonth distributes timestamps into exactly monthsBack trailing
// calendar-month buckets including the current month, zero-filling
// empty months, ordered chronologically ascending. Timestamps outside
// the window are ignored.
func bucketByMonth(stamps []time.Time, monthsBack int, now time.Time) []MonthlyCount {
	if monthsBack <= 0 {
		return []MonthlyCount{}
	}

	counts := make(map[monthKey]int, monthsBack)
	start := bucketStart(now, monthsBack)
	end := monthStart(now).AddDate(0, 1, 0)

	for _, ts := range stamps {
		ts = ts.UTC()
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		counts[monthKey{ts.Year(), ts.Month()}]++
	}

	result := make([]MonthlyCount, 0, monthsBack)
	for i := 0; i < monthsBack; i++ {
		m := start.AddDate(0, i, 0)
		result = append(result, MonthlyCount{
			Label: m.Month().String(),
			Count: counts[monthKey{m.Year(), m.Month()}],
		})
	}
	return result
}
