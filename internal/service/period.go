package service

import (
	"math"
	"time"
)

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// dayBounds returns [midnight, next midnight) of t's date, in UTC for queries.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := startOfDay(t)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
