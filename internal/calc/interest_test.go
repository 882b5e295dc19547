package calc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSimpleInterest(t *testing.T) {
	start := core.NewDate(2024, 1, 1)
	tests := []struct {
		name      string
		principal string
		rate      string
		now       core.Date
		kind      core.InterestType
		want      string
	}{
		{"monthly three months", "100000", "2", core.NewDate(2024, 4, 1), core.Monthly, "6000"},
		{"monthly same month", "100000", "2", core.NewDate(2024, 1, 28), core.Monthly, "0"},
		{"yearly one year", "100000", "12", core.NewDate(2025, 1, 1), core.Yearly, "12000"},
		{"yearly one month", "100000", "12", core.NewDate(2024, 2, 1), core.Yearly, "1000"},
		{"yearly eighteen months", "50000", "10", core.NewDate(2025, 7, 1), core.Yearly, "7500"},
		{"fractional rate", "10000", "1.5", core.NewDate(2024, 3, 1), core.Monthly, "300"},
		{"future start", "100000", "2", core.NewDate(2023, 6, 1), core.Monthly, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SimpleInterest(dec(tt.principal), dec(tt.rate), start, tt.now, tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("SimpleInterest() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSimpleInterestZeroRate(t *testing.T) {
	start := core.NewDate(2010, 1, 1)
	for _, kind := range []core.InterestType{core.Monthly, core.Yearly} {
		for _, now := range []core.Date{start, core.NewDate(2015, 5, 5), core.NewDate(2030, 12, 31)} {
			got, err := SimpleInterest(dec("250000"), decimal.Zero, start, now, kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.IsZero() {
				t.Fatalf("%s at %s: expected zero interest, got %s", kind, now, got)
			}
		}
	}
}

func TestSimpleInterestErrors(t *testing.T) {
	now := core.NewDate(2024, 4, 1)
	if _, err := SimpleInterest(dec("1"), dec("1"), core.NewDate(2024, 1, 1), now, "weekly"); !errors.Is(err, ErrUnknownInterestType) {
		t.Fatalf("expected ErrUnknownInterestType, got %v", err)
	}
	if _, err := SimpleInterest(dec("1"), dec("1"), core.Date{}, now, core.Monthly); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
