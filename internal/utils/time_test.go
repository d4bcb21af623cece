package utils

import (
	"testing"
	"time"
)

func TestTruncateToDay(t *testing.T) {
	t.Parallel()

	in := time.Date(2026, time.June, 10, 17, 45, 3, 12, time.FixedZone("CET", 3600))
	got := TruncateToDay(in)
	want := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRentalDays(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		pickup time.Time
		ret    time.Time
		want   int
	}{
		{"exact three days", base, base.AddDate(0, 0, 3), 3},
		{"partial day rounds up", base, base.Add(3*24*time.Hour + time.Hour), 4},
		{"under a day charges one", base, base.Add(6 * time.Hour), 1},
		{"single day", base, base.AddDate(0, 0, 1), 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := RentalDays(tc.pickup, tc.ret); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	t.Parallel()

	start, end := MonthWindow(time.Date(2026, time.June, 15, 13, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %v", end)
	}

	// December rolls over the year.
	start, end = MonthWindow(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %v", end)
	}
}
