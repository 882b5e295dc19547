package sheets

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

// ReportRows lays a report out as spreadsheet rows: a title block, the
// portfolio overview, then one table each for contracts, labour and loans.
// Amounts are plain decimal strings so USER_ENTERED turns them into numbers.
func ReportRows(r core.Report, lang core.Language) [][]any {
	l := func(key string) string { return core.Label(key, lang) }
	yesNo := func(b bool) string {
		if b {
			return lang.Pick("ಹೌದು", "Yes")
		}
		return lang.Pick("ಇಲ್ಲ", "No")
	}

	rows := [][]any{
		{l("reports"), r.AsOf.String()},
		{lang.Pick("ರಚಿಸಿದ ಸಮಯ", "Generated"), r.GeneratedAt.Format(time.RFC3339)},
		{},
		{l("income"), amount(r.TotalIncome)},
		{l("business_expense"), amount(r.TotalBusinessExpense)},
		{core.Label(string(core.PersonalUse), lang), amount(r.TotalPersonalExpense)},
		{l("overall_profit_loss"), amount(r.OverallProfitLoss)},
		{l("labour_due"), amount(r.TotalPendingLabour)},
		{l("loan_due"), amount(r.TotalPendingLoans)},
		{},
		{l("contracts"), lang.Pick("ಗ್ರಾಹಕ", "Client"), lang.Pick("ಆರಂಭ", "Start"), lang.Pick("ಅಂತ್ಯ", "End"),
			lang.Pick("ಸಕ್ರಿಯ", "Active"), l("income"), l("expense"), l("profit") + "/" + l("loss")},
	}
	for _, c := range r.Contracts {
		rows = append(rows, []any{
			c.Name, c.ClientName, c.StartDate.String(), c.EndDate.String(), yesNo(c.IsActive),
			amount(c.TotalIncome), amount(c.TotalExpense), amount(c.ProfitLoss),
		})
	}

	rows = append(rows, []any{},
		[]any{l("labour"), lang.Pick("ಕೆಲಸ", "Work"), lang.Pick("ವಿಧ", "Type"), lang.Pick("ದಿನದ ಸಂಬಳ", "Daily salary"),
			lang.Pick("ದಿನಗಳು", "Days"), l("total"), l("paid"), l("balance")})
	for _, w := range r.Labours {
		rows = append(rows, []any{
			w.Name, core.Label(string(w.WorkType), lang), core.Label(string(w.LabourType), lang),
			amount(w.DailySalary), w.DaysWorked.String(), amount(w.TotalSalary), amount(w.PaidAmount), amount(w.Balance),
		})
	}

	rows = append(rows, []any{},
		[]any{l("loans"), lang.Pick("ವಿಧ", "Type"), lang.Pick("ಅಸಲು", "Principal"), lang.Pick("ಬಡ್ಡಿ ದರ", "Rate %"),
			lang.Pick("ಅವಧಿ", "Period"), lang.Pick("ಆರಂಭ", "Start"), lang.Pick("ತಿಂಗಳು", "Months"),
			lang.Pick("ಬಡ್ಡಿ", "Interest"), l("paid"), l("pending")})
	for _, ln := range r.Loans {
		rows = append(rows, []any{
			ln.LenderName, core.Label(string(ln.LoanType), lang), amount(ln.PrincipalAmount), ln.InterestRate.String(),
			core.Label(string(ln.InterestType), lang), ln.StartDate.String(), strconv.Itoa(ln.MonthsElapsed),
			amount(ln.TotalInterest), amount(ln.TotalPaid), amount(ln.PendingBalance),
		})
	}

	if len(r.Mismatches) > 0 {
		rows = append(rows, []any{},
			[]any{lang.Pick("ಹೊಂದಿಕೆಯಾಗದ ಸಾಲ ಪಾವತಿ", "Loan payment mismatches"), l("paid"), lang.Pick("ದಾಖಲಾದ ಮೊತ್ತ", "Logged")})
		for _, m := range r.Mismatches {
			rows = append(rows, []any{m.LoanID, amount(m.TotalPaid), amount(m.LoggedSum)})
		}
	}
	return rows
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
