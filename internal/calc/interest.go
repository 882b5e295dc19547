package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

var ErrUnknownInterestType = errors.New("unknown interest type")

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// InterestAccrual computes simple interest for one kind of rate period.
type InterestAccrual interface {
	// Accrue returns the interest on principal at rate percent after the given
	// number of whole calendar months.
	Accrue(principal, rate decimal.Decimal, months int) decimal.Decimal
}

// MonthlyAccrual applies the rate once per elapsed month.
type MonthlyAccrual struct{}

func (MonthlyAccrual) Accrue(principal, rate decimal.Decimal, months int) decimal.Decimal {
	return principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))).Div(hundred)
}

// YearlyAccrual applies the rate per year, prorated by months/12.
type YearlyAccrual struct{}

func (YearlyAccrual) Accrue(principal, rate decimal.Decimal, months int) decimal.Decimal {
	// principal*rate*(months/12)/100, multiplied out first so whole years stay exact.
	return principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))).Div(twelve.Mul(hundred))
}

var accruals = map[core.InterestType]InterestAccrual{
	core.Monthly: MonthlyAccrual{},
	core.Yearly:  YearlyAccrual{},
}

// AccrualFor returns the accrual rule for an interest type.
func AccrualFor(kind core.InterestType) (InterestAccrual, error) {
	a, ok := accruals[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterestType, string(kind))
	}
	return a, nil
}

// SimpleInterest returns the interest accrued on principal from start until now.
// No compounding.
func SimpleInterest(principal, rate decimal.Decimal, start, now core.Date, kind core.InterestType) (decimal.Decimal, error) {
	if err := start.Validate(); err != nil {
		return decimal.Zero, fmt.Errorf("loan start: %w", err)
	}
	accrual, err := AccrualFor(kind)
	if err != nil {
		return decimal.Zero, err
	}
	return accrual.Accrue(principal, rate, MonthsElapsed(start, now)), nil
}
