package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a read-only copy of every stored collection at one point in time.
type Snapshot struct {
	Contracts    []Contract
	Incomes      []Income
	Expenses     []Expense
	Labours      []Labour
	Loans        []Loan
	LoanPayments []LoanPayment
}

// ContractSummary is a contract with its income and expense totals.
type ContractSummary struct {
	Contract
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	ProfitLoss   decimal.Decimal
}

// LabourSummary adds the earned salary and the signed balance still owed.
// A negative Balance means the worker was overpaid.
type LabourSummary struct {
	Labour
	TotalSalary decimal.Decimal
	Balance     decimal.Decimal
}

// LoanSummary adds accrued simple interest and the pending balance, floored at zero.
type LoanSummary struct {
	Loan
	MonthsElapsed  int
	TotalInterest  decimal.Decimal
	PendingBalance decimal.Decimal
}

// ChartPoint is one bar of the contract profit/loss chart.
type ChartPoint struct {
	Name     string
	Profit   decimal.Decimal
	IsProfit bool
}

// PaymentMismatch reports a loan whose payment log does not add up to TotalPaid.
type PaymentMismatch struct {
	LoanID    string
	TotalPaid decimal.Decimal
	LoggedSum decimal.Decimal
}

// Report is the full portfolio view shown on the reports screen.
type Report struct {
	GeneratedAt time.Time
	AsOf        Date

	TotalIncome          decimal.Decimal
	TotalBusinessExpense decimal.Decimal
	TotalPersonalExpense decimal.Decimal
	OverallProfitLoss    decimal.Decimal
	TotalPendingLabour   decimal.Decimal
	TotalPendingLoans    decimal.Decimal

	Contracts     []ContractSummary
	Labours       []LabourSummary
	Loans         []LoanSummary
	ContractChart []ChartPoint
	Mismatches    []PaymentMismatch
}

// IsProfit reports whether the overall figure is a profit (zero counts as profit).
func (r Report) IsProfit() bool {
	return !r.OverallProfitLoss.IsNegative()
}

// Settings are the per-device preferences.
type Settings struct {
	Language        Language
	ReminderEnabled bool
}

// DefaultSettings match a fresh install: Kannada with reminders on.
func DefaultSettings() Settings {
	return Settings{Language: Kannada, ReminderEnabled: true}
}
