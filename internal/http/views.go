package http

import (
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/backup"
	"kharcha/internal/core"
)

// Amount carries an exact value next to its display form, e.g. "106000.00"
// and "₹1,06,000".
type Amount struct {
	Value     string `json:"value"`
	Formatted string `json:"formatted"`
}

func amount(d decimal.Decimal) Amount {
	return Amount{Value: d.StringFixed(2), Formatted: core.FormatRupees(d)}
}

type (
	ContractSummaryView struct {
		backup.ContractRecord
		TotalIncome  Amount `json:"totalIncome"`
		TotalExpense Amount `json:"totalExpense"`
		ProfitLoss   Amount `json:"profitLoss"`
		IsProfit     bool   `json:"isProfit"`
	}

	LabourSummaryView struct {
		backup.LabourRecord
		WorkTypeLabel   string `json:"workTypeLabel"`
		LabourTypeLabel string `json:"labourTypeLabel"`
		TotalSalary     Amount `json:"totalSalary"`
		Balance         Amount `json:"balance"`
		// Settled is true once nothing is owed to the worker.
		Settled     bool   `json:"settled"`
		StatusLabel string `json:"statusLabel"`
	}

	LoanSummaryView struct {
		backup.LoanRecord
		LoanTypeLabel     string `json:"loanTypeLabel"`
		InterestTypeLabel string `json:"interestTypeLabel"`
		MonthsElapsed     int    `json:"monthsElapsed"`
		TotalInterest     Amount `json:"totalInterest"`
		PendingBalance    Amount `json:"pendingBalance"`
		Settled           bool   `json:"settled"`
		StatusLabel       string `json:"statusLabel"`
	}

	ChartPointView struct {
		Name     string `json:"name"`
		Profit   Amount `json:"profit"`
		IsProfit bool   `json:"isProfit"`
	}

	MismatchView struct {
		LoanID    string `json:"loanId"`
		TotalPaid Amount `json:"totalPaid"`
		LoggedSum Amount `json:"loggedSum"`
	}

	// OverviewLine is one headline figure of the report with its label.
	OverviewLine struct {
		Key    string `json:"key"`
		Label  string `json:"label"`
		Amount Amount `json:"amount"`
	}

	ReportView struct {
		Language    core.Language         `json:"language"`
		Title       string                `json:"title"`
		AsOf        core.Date             `json:"asOf"`
		GeneratedAt time.Time             `json:"generatedAt"`
		IsProfit    bool                  `json:"isProfit"`
		ResultLabel string                `json:"resultLabel"`
		Overview    []OverviewLine        `json:"overview"`
		Contracts   []ContractSummaryView `json:"contracts"`
		Labours     []LabourSummaryView   `json:"labours"`
		Loans       []LoanSummaryView     `json:"loans"`
		Chart       []ChartPointView      `json:"chart"`
		Mismatches  []MismatchView        `json:"mismatches"`
	}

	LabourTotalsView struct {
		Labours      []LabourSummaryView `json:"labours"`
		TotalPending Amount              `json:"totalPending"`
		Label        string              `json:"label"`
		PendingCount int                 `json:"pendingCount"`
		SettledCount int                 `json:"settledCount"`
	}

	LoanTotalsView struct {
		Loans        []LoanSummaryView `json:"loans"`
		TotalPending Amount            `json:"totalPending"`
		Label        string            `json:"label"`
		ActiveCount  int               `json:"activeCount"`
		SettledCount int               `json:"settledCount"`
	}
)

func contractSummaryView(s core.ContractSummary) ContractSummaryView {
	return ContractSummaryView{
		ContractRecord: backup.FromContract(s.Contract),
		TotalIncome:    amount(s.TotalIncome),
		TotalExpense:   amount(s.TotalExpense),
		ProfitLoss:     amount(s.ProfitLoss),
		IsProfit:       !s.ProfitLoss.IsNegative(),
	}
}

func statusLabel(settled bool, lang core.Language) string {
	if settled {
		return core.Label("paid", lang)
	}
	return core.Label("pending", lang)
}

func labourSummaryView(s core.LabourSummary, lang core.Language) LabourSummaryView {
	settled := !s.Balance.IsPositive()
	return LabourSummaryView{
		LabourRecord:    backup.FromLabour(s.Labour),
		WorkTypeLabel:   core.Label(string(s.WorkType), lang),
		LabourTypeLabel: core.Label(string(s.LabourType), lang),
		TotalSalary:     amount(s.TotalSalary),
		Balance:         amount(s.Balance),
		Settled:         settled,
		StatusLabel:     statusLabel(settled, lang),
	}
}

func loanSummaryView(s core.LoanSummary, lang core.Language) LoanSummaryView {
	settled := !s.PendingBalance.IsPositive()
	return LoanSummaryView{
		LoanRecord:        backup.FromLoan(s.Loan),
		LoanTypeLabel:     core.Label(string(s.LoanType), lang),
		InterestTypeLabel: core.Label(string(s.InterestType), lang),
		MonthsElapsed:     s.MonthsElapsed,
		TotalInterest:     amount(s.TotalInterest),
		PendingBalance:    amount(s.PendingBalance),
		Settled:           settled,
		StatusLabel:       statusLabel(settled, lang),
	}
}

func labourTotalsView(r core.Report, lang core.Language) LabourTotalsView {
	v := LabourTotalsView{
		Labours:      make([]LabourSummaryView, 0, len(r.Labours)),
		TotalPending: amount(r.TotalPendingLabour),
		Label:        core.Label("labour_due", lang),
	}
	for _, l := range r.Labours {
		row := labourSummaryView(l, lang)
		if row.Settled {
			v.SettledCount++
		} else {
			v.PendingCount++
		}
		v.Labours = append(v.Labours, row)
	}
	return v
}

func loanTotalsView(r core.Report, lang core.Language) LoanTotalsView {
	v := LoanTotalsView{
		Loans:        make([]LoanSummaryView, 0, len(r.Loans)),
		TotalPending: amount(r.TotalPendingLoans),
		Label:        core.Label("loan_due", lang),
	}
	for _, l := range r.Loans {
		row := loanSummaryView(l, lang)
		if row.Settled {
			v.SettledCount++
		} else {
			v.ActiveCount++
		}
		v.Loans = append(v.Loans, row)
	}
	return v
}

// reportView renders r with labels in lang. Slices are never nil so clients
// always get arrays.
func reportView(r core.Report, lang core.Language) ReportView {
	result := "profit"
	if !r.IsProfit() {
		result = "loss"
	}
	v := ReportView{
		Language:    lang,
		Title:       core.Label("reports", lang),
		AsOf:        r.AsOf,
		GeneratedAt: r.GeneratedAt,
		IsProfit:    r.IsProfit(),
		ResultLabel: core.Label(result, lang),
		Overview: []OverviewLine{
			{Key: "income", Label: core.Label("income", lang), Amount: amount(r.TotalIncome)},
			{Key: "business_expense", Label: core.Label("business_expense", lang), Amount: amount(r.TotalBusinessExpense)},
			{Key: "personal", Label: core.Label(string(core.PersonalUse), lang), Amount: amount(r.TotalPersonalExpense)},
			{Key: "overall_profit_loss", Label: core.Label("overall_profit_loss", lang), Amount: amount(r.OverallProfitLoss)},
			{Key: "labour_due", Label: core.Label("labour_due", lang), Amount: amount(r.TotalPendingLabour)},
			{Key: "loan_due", Label: core.Label("loan_due", lang), Amount: amount(r.TotalPendingLoans)},
		},
		Contracts:  make([]ContractSummaryView, 0, len(r.Contracts)),
		Chart:      make([]ChartPointView, 0, len(r.ContractChart)),
		Mismatches: make([]MismatchView, 0, len(r.Mismatches)),
	}
	for _, c := range r.Contracts {
		v.Contracts = append(v.Contracts, contractSummaryView(c))
	}
	v.Labours = labourTotalsView(r, lang).Labours
	v.Loans = loanTotalsView(r, lang).Loans
	for _, p := range r.ContractChart {
		v.Chart = append(v.Chart, ChartPointView{Name: p.Name, Profit: amount(p.Profit), IsProfit: p.IsProfit})
	}
	for _, m := range r.Mismatches {
		v.Mismatches = append(v.Mismatches, MismatchView{LoanID: m.LoanID, TotalPaid: amount(m.TotalPaid), LoggedSum: amount(m.LoggedSum)})
	}
	return v
}
