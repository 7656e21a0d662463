package analytics

import (
	"time"

	"github.com/storeratings/storeratings-backend/pkg/stats"
)

const dayLayout = "2006-01-02"

// RatingPoint is one rating reduced to what the trend needs.
type RatingPoint struct {
	CreatedAt time.Time
	Rating    int
}

// DayKey is the UTC calendar day of ts.
func DayKey(ts time.Time) string {
	return ts.UTC().Format(dayLayout)
}

// WindowStart returns UTC midnight of the first day in a window of days
// ending on now's day. days < 1 is treated as 1.
func WindowStart(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(days - 1))
}

// BuildTrend buckets points per UTC day, emitting every day of the window
// in order, including days with no ratings.
func BuildTrend(points []RatingPoint, start time.Time, days int) []TrendPoint {
	if days < 1 {
		days = 1
	}
	type bucket struct {
		count int64
		sum   int64
	}
	buckets := make(map[string]*bucket, days)
	for _, p := range points {
		key := DayKey(p.CreatedAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.sum += int64(p.Rating)
	}

	out := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		key := DayKey(start.AddDate(0, 0, i))
		point := TrendPoint{Date: key}
		if b, ok := buckets[key]; ok {
			point.Count = b.count
			point.AverageRating = stats.Average(b.sum, b.count)
		}
		out = append(out, point)
	}
	return out
}
