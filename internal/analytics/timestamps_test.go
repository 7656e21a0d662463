package analytics

import (
	"testing"
	"time"
)

func TestWindowStartAlignsToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 3, 10, 22, 30, 0, 0, loc) // 2025-03-11 03:30 UTC

	got := WindowStart(now, 7)
	want := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if single := WindowStart(now, 0); !single.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today for empty window, got %v", single)
	}
}

func TestBuildTrendZeroFillsEveryDay(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []RatingPoint{
		{CreatedAt: start.Add(2 * time.Hour), Rating: 5},
		{CreatedAt: start.Add(20 * time.Hour), Rating: 2},
		{CreatedAt: start.AddDate(0, 0, 2).Add(time.Minute), Rating: 4},
	}

	trend := BuildTrend(points, start, 4)
	if len(trend) != 4 {
		t.Fatalf("expected 4 days, got %d", len(trend))
	}

	expected := []TrendPoint{
		{Date: "2025-03-01", Count: 2, AverageRating: 3.5},
		{Date: "2025-03-02"},
		{Date: "2025-03-03", Count: 1, AverageRating: 4},
		{Date: "2025-03-04"},
	}
	for i, want := range expected {
		if trend[i] != want {
			t.Fatalf("day %d: expected %+v, got %+v", i, want, trend[i])
		}
	}
}

func TestDayKeyUsesUTC(t *testing.T) {
	ts := time.Date(2025, 1, 1, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	if got := DayKey(ts); got != "2025-01-02" {
		t.Fatalf("expected next UTC day, got %s", got)
	}
}
