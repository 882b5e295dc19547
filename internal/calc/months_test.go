package calc

import (
	"testing"

	"kharcha/internal/core"
)

func TestMonthsElapsed(t *testing.T) {
	tests := []struct {
		name  string
		start core.Date
		now   core.Date
		want  int
	}{
		{"same day", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 1), 0},
		{"later same month", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), 0},
		{"three months", core.NewDate(2024, 1, 1), core.NewDate(2024, 4, 1), 3},
		{"day of month ignored", core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 1), 1},
		{"across year end", core.NewDate(2023, 11, 15), core.NewDate(2024, 2, 10), 3},
		{"whole years", core.NewDate(2020, 6, 1), core.NewDate(2024, 6, 1), 48},
		{"future start clamps to zero", core.NewDate(2025, 1, 1), core.NewDate(2024, 6, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsElapsed(tt.start, tt.now); got != tt.want {
				t.Errorf("MonthsElapsed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMonthsElapsedMonotonic(t *testing.T) {
	start := core.NewDate(2024, 3, 20)
	prev := -1
	now := core.NewDate(2023, 12, 1)
	for i := 0; i < 900; i++ {
		got := MonthsElapsed(start, now)
		if got < prev {
			t.Fatalf("months elapsed decreased at %s: %d < %d", now, got, prev)
		}
		prev = got
		now = core.Date{Time: now.AddDate(0, 0, 1)}
	}
}
