package attendance

import (
	"errors"
	"testing"
)

func TestHoursBetween(t *testing.T) {
	cases := []struct {
		arrival, departure string
		want               float64
	}{
		{"08:00", "17:00", 9},
		{"08:30", "17:00", 8.5},
		{"22:00", "06:00", 8},
		{"09:00", "09:00", 0},
		{" 07:15 ", "08:45", 1.5},
	}
	for _, tc := range cases {
		got, err := HoursBetween(tc.arrival, tc.departure)
		if err != nil {
			t.Fatalf("%s-%s: unexpected error: %v", tc.arrival, tc.departure, err)
		}
		if got != tc.want {
			t.Fatalf("%s-%s: expected %v, got %v", tc.arrival, tc.departure, tc.want, got)
		}
	}
}

func TestHoursBetweenInvalid(t *testing.T) {
	for _, pair := range [][2]string{{"8am", "17:00"}, {"08:00", "25:00"}, {"", "17:00"}} {
		if _, err := HoursBetween(pair[0], pair[1]); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("%v: expected ErrInvalidTime, got %v", pair, err)
		}
	}
}

func TestResolveHours(t *testing.T) {
	if got := ResolveHours("08:00", "18:00", 3, false); got != 10 {
		t.Fatalf("expected times to win, got %v", got)
	}
	if got := ResolveHours("08:00", "", 3, false); got != 3 {
		t.Fatalf("expected manual fallback for missing departure, got %v", got)
	}
	if got := ResolveHours("xx", "18:00", 4, false); got != 4 {
		t.Fatalf("expected manual fallback for bad time, got %v", got)
	}
	if got := ResolveHours("08:00", "18:00", 0, true); got != 0 {
		t.Fatalf("expected manual value on absent day, got %v", got)
	}
}
