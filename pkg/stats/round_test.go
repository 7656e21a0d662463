package stats

import "testing"

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		0:        0,
		4.333333: 4.33,
		4.335:    4.34,
		3.5:      3.5,
		2.999:    3,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 3); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := Percent(2, 2); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := Percent(5, 0); got != 0 {
		t.Fatalf("expected 0 for empty total, got %v", got)
	}
}

func TestAverage(t *testing.T) {
	if got := Average(14, 3); got != 4.67 {
		t.Fatalf("expected 4.67, got %v", got)
	}
	if got := Average(0, 0); got != 0 {
		t.Fatalf("expected 0 with no ratings, got %v", got)
	}
}
