package calc

import (
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

const (
	chartSize      = 5
	chartNameRunes = 10
)

func TotalIncome(incomes []core.Income) decimal.Decimal {
	total := decimal.Zero
	for _, i := range incomes {
		total = total.Add(i.Amount)
	}
	return total
}

// TotalBusinessExpenses sums every expense that is not personal.
func TotalBusinessExpenses(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if !e.Scope.IsPersonal() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func TotalPersonalExpenses(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.Scope.IsPersonal() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// OverallProfitLoss is income minus business expenses. Living expenses are left out.
func OverallProfitLoss(incomes []core.Income, expenses []core.Expense) decimal.Decimal {
	return TotalIncome(incomes).Sub(TotalBusinessExpenses(expenses))
}

// TotalPendingLabour sums signed balances, so overpayments reduce the total and
// the result may be negative.
func TotalPendingLabour(labours []core.Labour) decimal.Decimal {
	total := decimal.Zero
	for _, l := range labours {
		total = total.Add(LabourBalance(l))
	}
	return total
}

// TotalPendingLoans sums the per-loan pending balances, each already floored at zero.
func TotalPendingLoans(loans []core.Loan, now core.Date) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range loans {
		s, err := BuildLoanSummary(l, now)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(s.PendingBalance)
	}
	return total, nil
}

// PaymentsForLoan returns the logged payments of one loan in log order.
func PaymentsForLoan(loanID string, payments []core.LoanPayment) []core.LoanPayment {
	var out []core.LoanPayment
	for _, p := range payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out
}

// ReconcileLoanPayments lists loans whose TotalPaid differs from the sum of their
// logged payments.
func ReconcileLoanPayments(loans []core.Loan, payments []core.LoanPayment) []core.PaymentMismatch {
	logged := make(map[string]decimal.Decimal, len(loans))
	for _, p := range payments {
		logged[p.LoanID] = logged[p.LoanID].Add(p.Amount)
	}
	var out []core.PaymentMismatch
	for _, l := range loans {
		sum := logged[l.ID]
		if !sum.Equal(l.TotalPaid) {
			out = append(out, core.PaymentMismatch{LoanID: l.ID, TotalPaid: l.TotalPaid, LoggedSum: sum})
		}
	}
	return out
}

// ContractChart picks the first contracts with any activity for the profit/loss chart.
func ContractChart(summaries []core.ContractSummary) []core.ChartPoint {
	var out []core.ChartPoint
	for _, s := range summaries {
		if len(out) == chartSize {
			break
		}
		if !s.TotalIncome.IsPositive() && !s.TotalExpense.IsPositive() {
			continue
		}
		name := []rune(s.Name)
		if len(name) > chartNameRunes {
			name = name[:chartNameRunes]
		}
		out = append(out, core.ChartPoint{
			Name:     string(name),
			Profit:   s.ProfitLoss,
			IsProfit: !s.ProfitLoss.IsNegative(),
		})
	}
	return out
}

// BuildReport derives every figure of the reports screen from one snapshot.
// The portfolio profit/loss is not the sum of the per-contract figures: it
// ignores personal expenses and counts income whose contract no longer exists.
func BuildReport(snap core.Snapshot, now time.Time) (core.Report, error) {
	asOf := core.DateOf(now)

	loans, err := BuildLoanSummaries(snap.Loans, asOf)
	if err != nil {
		return core.Report{}, err
	}
	pendingLoans := decimal.Zero
	for _, l := range loans {
		pendingLoans = pendingLoans.Add(l.PendingBalance)
	}

	contracts := BuildContractSummaries(snap.Contracts, snap.Incomes, snap.Expenses)

	return core.Report{
		GeneratedAt:          now,
		AsOf:                 asOf,
		TotalIncome:          TotalIncome(snap.Incomes),
		TotalBusinessExpense: TotalBusinessExpenses(snap.Expenses),
		TotalPersonalExpense: TotalPersonalExpenses(snap.Expenses),
		OverallProfitLoss:    OverallProfitLoss(snap.Incomes, snap.Expenses),
		TotalPendingLabour:   TotalPendingLabour(snap.Labours),
		TotalPendingLoans:    pendingLoans,
		Contracts:            contracts,
		Labours:              BuildLabourSummaries(snap.Labours),
		Loans:                loans,
		ContractChart:        ContractChart(contracts),
		Mismatches:           ReconcileLoanPayments(snap.Loans, snap.LoanPayments),
	}, nil
}
