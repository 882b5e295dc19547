package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

// BuildContractSummary totals the incomes and expenses charged to c.
// Personal expenses never match a contract.
func BuildContractSummary(c core.Contract, incomes []core.Income, expenses []core.Expense) core.ContractSummary {
	totalIncome := decimal.Zero
	for _, i := range incomes {
		if i.ContractID == c.ID {
			totalIncome = totalIncome.Add(i.Amount)
		}
	}
	totalExpense := decimal.Zero
	for _, e := range expenses {
		if e.Scope.BelongsTo(c.ID) {
			totalExpense = totalExpense.Add(e.Amount)
		}
	}
	return core.ContractSummary{
		Contract:     c,
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		ProfitLoss:   totalIncome.Sub(totalExpense),
	}
}

func BuildContractSummaries(contracts []core.Contract, incomes []core.Income, expenses []core.Expense) []core.ContractSummary {
	out := make([]core.ContractSummary, len(contracts))
	for i, c := range contracts {
		out[i] = BuildContractSummary(c, incomes, expenses)
	}
	return out
}

// LabourBalance is what is still owed to a worker. Negative when overpaid.
func LabourBalance(l core.Labour) decimal.Decimal {
	return l.DailySalary.Mul(l.DaysWorked).Sub(l.PaidAmount)
}

func BuildLabourSummary(l core.Labour) core.LabourSummary {
	return core.LabourSummary{
		Labour:      l,
		TotalSalary: l.DailySalary.Mul(l.DaysWorked),
		Balance:     LabourBalance(l),
	}
}

func BuildLabourSummaries(labours []core.Labour) []core.LabourSummary {
	out := make([]core.LabourSummary, len(labours))
	for i, l := range labours {
		out[i] = BuildLabourSummary(l)
	}
	return out
}

// BuildLoanSummary computes interest as of now. PendingBalance is floored at zero,
// so an overpaid loan shows nothing pending.
func BuildLoanSummary(l core.Loan, now core.Date) (core.LoanSummary, error) {
	interest, err := SimpleInterest(l.PrincipalAmount, l.InterestRate, l.StartDate, now, l.InterestType)
	if err != nil {
		return core.LoanSummary{}, fmt.Errorf("loan %s: %w", l.ID, err)
	}
	pending := l.PrincipalAmount.Add(interest).Sub(l.TotalPaid)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return core.LoanSummary{
		Loan:           l,
		MonthsElapsed:  MonthsElapsed(l.StartDate, now),
		TotalInterest:  interest,
		PendingBalance: pending,
	}, nil
}

func BuildLoanSummaries(loans []core.Loan, now core.Date) ([]core.LoanSummary, error) {
	out := make([]core.LoanSummary, len(loans))
	for i, l := range loans {
		s, err := BuildLoanSummary(l, now)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
