package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

// Record types mirror the camelCase JSON that the app has always exported.
// Amounts travel as plain JSON numbers and expenses tag living costs with
// contractId "personal".
type (
	ContractRecord struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		ClientName string    `json:"clientName,omitempty"`
		StartDate  core.Date `json:"startDate"`
		EndDate    string    `json:"endDate,omitempty"`
		IsActive   bool      `json:"isActive"`
		CreatedAt  string    `json:"createdAt"`
	}

	IncomeRecord struct {
		ID          string      `json:"id"`
		Date        core.Date   `json:"date"`
		Amount      json.Number `json:"amount"`
		ContractID  string      `json:"contractId"`
		PaymentMode string      `json:"paymentMode"`
		Notes       string      `json:"notes,omitempty"`
		CreatedAt   string      `json:"createdAt"`
	}

	ExpenseRecord struct {
		ID          string      `json:"id"`
		Date        core.Date   `json:"date"`
		Amount      json.Number `json:"amount"`
		ContractID  string      `json:"contractId"`
		ExpenseType string      `json:"expenseType"`
		PaymentMode string      `json:"paymentMode"`
		Notes       string      `json:"notes,omitempty"`
		CreatedAt   string      `json:"createdAt"`
	}

	LabourRecord struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Phone       string      `json:"phone,omitempty"`
		WorkType    string      `json:"workType"`
		DailySalary json.Number `json:"dailySalary"`
		LabourType  string      `json:"labourType"`
		DaysWorked  json.Number `json:"daysWorked"`
		PaidAmount  json.Number `json:"paidAmount"`
		ContractID  string      `json:"contractId,omitempty"`
		CreatedAt   string      `json:"createdAt"`
	}

	LoanRecord struct {
		ID              string      `json:"id"`
		LoanType        string      `json:"loanType"`
		LenderName      string      `json:"lenderName"`
		PrincipalAmount json.Number `json:"principalAmount"`
		InterestRate    json.Number `json:"interestRate"`
		InterestType    string      `json:"interestType"`
		StartDate       core.Date   `json:"startDate"`
		TotalPaid       json.Number `json:"totalPaid"`
		CreatedAt       string      `json:"createdAt"`
	}

	LoanPaymentRecord struct {
		ID        string      `json:"id"`
		LoanID    string      `json:"loanId"`
		Amount    json.Number `json:"amount"`
		Date      core.Date   `json:"date"`
		Notes     string      `json:"notes,omitempty"`
		CreatedAt string      `json:"createdAt"`
	}

	SettingsRecord struct {
		Language        string `json:"language"`
		ReminderEnabled bool   `json:"reminderEnabled"`
	}
)

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// parseNumber reads a JSON number exactly. A missing value reads as zero.
func parseNumber(field string, n json.Number) (decimal.Decimal, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return decimal.Zero, nil
	}
	if len(s) > core.MaxAmountText {
		return decimal.Zero, fmt.Errorf("%w: %s too long", core.ErrInvalidAmount, field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q", core.ErrInvalidAmount, field, s)
	}
	if err := core.CheckAmountRange(d); err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return d, nil
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: createdAt %q", core.ErrInvalidDate, s)
	}
	return t, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id", core.ErrMissingReference)
	}
	return nil
}

func FromContract(c core.Contract) ContractRecord {
	return ContractRecord{
		ID:         c.ID,
		Name:       c.Name,
		ClientName: c.ClientName,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate.String(),
		IsActive:   c.IsActive,
		CreatedAt:  timestamp(c.CreatedAt),
	}
}

// Core converts the record without checking it. Request bodies that carry no
// id yet go through Core; stored data goes through ToCore.
func (r ContractRecord) Core() (core.Contract, error) {
	var end core.Date
	if err := end.UnmarshalText([]byte(r.EndDate)); err != nil {
		return core.Contract{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.Contract{}, err
	}
	c := core.Contract{
		ID:         r.ID,
		Name:       strings.TrimSpace(r.Name),
		ClientName: strings.TrimSpace(r.ClientName),
		StartDate:  r.StartDate,
		EndDate:    end,
		IsActive:   r.IsActive,
		CreatedAt:  created,
	}
	return c, nil
}

// ToCore converts and validates the record.
func (r ContractRecord) ToCore() (core.Contract, error) {
	c, err := r.Core()
	if err != nil {
		return c, err
	}
	if err := requireID(c.ID); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func FromIncome(i core.Income) IncomeRecord {
	return IncomeRecord{
		ID:          i.ID,
		Date:        i.Date,
		Amount:      number(i.Amount),
		ContractID:  i.ContractID,
		PaymentMode: string(i.PaymentMode),
		Notes:       i.Notes,
		CreatedAt:   timestamp(i.CreatedAt),
	}
}

func (r IncomeRecord) Core() (core.Income, error) {
	amount, err := parseNumber("amount", r.Amount)
	if err != nil {
		return core.Income{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.Income{}, err
	}
	i := core.Income{
		ID:          r.ID,
		Date:        r.Date,
		Amount:      amount,
		ContractID:  r.ContractID,
		PaymentMode: core.PaymentMode(r.PaymentMode),
		Notes:       r.Notes,
		CreatedAt:   created,
	}
	return i, nil
}

func (r IncomeRecord) ToCore() (core.Income, error) {
	i, err := r.Core()
	if err != nil {
		return i, err
	}
	if err := requireID(i.ID); err != nil {
		return i, err
	}
	return i, i.Validate()
}

func FromExpense(e core.Expense) ExpenseRecord {
	return ExpenseRecord{
		ID:          e.ID,
		Date:        e.Date,
		Amount:      number(e.Amount),
		ContractID:  e.Scope.Legacy(),
		ExpenseType: string(e.ExpenseType),
		PaymentMode: string(e.PaymentMode),
		Notes:       e.Notes,
		CreatedAt:   timestamp(e.CreatedAt),
	}
}

func (r ExpenseRecord) Core() (core.Expense, error) {
	amount, err := parseNumber("amount", r.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:          r.ID,
		Date:        r.Date,
		Amount:      amount,
		Scope:       core.ScopeFromLegacy(r.ContractID),
		ExpenseType: core.ExpenseType(r.ExpenseType),
		PaymentMode: core.PaymentMode(r.PaymentMode),
		Notes:       r.Notes,
		CreatedAt:   created,
	}
	return e, nil
}

func (r ExpenseRecord) ToCore() (core.Expense, error) {
	e, err := r.Core()
	if err != nil {
		return e, err
	}
	if err := requireID(e.ID); err != nil {
		return e, err
	}
	return e, e.Validate()
}

func FromLabour(l core.Labour) LabourRecord {
	return LabourRecord{
		ID:          l.ID,
		Name:        l.Name,
		Phone:       l.Phone,
		WorkType:    string(l.WorkType),
		DailySalary: number(l.DailySalary),
		LabourType:  string(l.LabourType),
		DaysWorked:  number(l.DaysWorked),
		PaidAmount:  number(l.PaidAmount),
		ContractID:  l.ContractID,
		CreatedAt:   timestamp(l.CreatedAt),
	}
}

func (r LabourRecord) Core() (core.Labour, error) {
	salary, err := parseNumber("dailySalary", r.DailySalary)
	if err != nil {
		return core.Labour{}, err
	}
	days, err := parseNumber("daysWorked", r.DaysWorked)
	if err != nil {
		return core.Labour{}, err
	}
	paid, err := parseNumber("paidAmount", r.PaidAmount)
	if err != nil {
		return core.Labour{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.Labour{}, err
	}
	l := core.Labour{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Phone:       strings.TrimSpace(r.Phone),
		WorkType:    core.WorkType(r.WorkType),
		LabourType:  core.LabourType(r.LabourType),
		DailySalary: salary,
		DaysWorked:  days,
		PaidAmount:  paid,
		ContractID:  r.ContractID,
		CreatedAt:   created,
	}
	return l, nil
}

func (r LabourRecord) ToCore() (core.Labour, error) {
	l, err := r.Core()
	if err != nil {
		return l, err
	}
	if err := requireID(l.ID); err != nil {
		return l, err
	}
	return l, l.Validate()
}

func FromLoan(l core.Loan) LoanRecord {
	return LoanRecord{
		ID:              l.ID,
		LoanType:        string(l.LoanType),
		LenderName:      l.LenderName,
		PrincipalAmount: number(l.PrincipalAmount),
		InterestRate:    number(l.InterestRate),
		InterestType:    string(l.InterestType),
		StartDate:       l.StartDate,
		TotalPaid:       number(l.TotalPaid),
		CreatedAt:       timestamp(l.CreatedAt),
	}
}

func (r LoanRecord) Core() (core.Loan, error) {
	principal, err := parseNumber("principalAmount", r.PrincipalAmount)
	if err != nil {
		return core.Loan{}, err
	}
	rate, err := parseNumber("interestRate", r.InterestRate)
	if err != nil {
		return core.Loan{}, err
	}
	paid, err := parseNumber("totalPaid", r.TotalPaid)
	if err != nil {
		return core.Loan{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.Loan{}, err
	}
	l := core.Loan{
		ID:              r.ID,
		LoanType:        core.LoanType(r.LoanType),
		LenderName:      strings.TrimSpace(r.LenderName),
		PrincipalAmount: principal,
		InterestRate:    rate,
		InterestType:    core.InterestType(r.InterestType),
		StartDate:       r.StartDate,
		TotalPaid:       paid,
		CreatedAt:       created,
	}
	return l, nil
}

func (r LoanRecord) ToCore() (core.Loan, error) {
	l, err := r.Core()
	if err != nil {
		return l, err
	}
	if err := requireID(l.ID); err != nil {
		return l, err
	}
	return l, l.Validate()
}

func FromLoanPayment(p core.LoanPayment) LoanPaymentRecord {
	return LoanPaymentRecord{
		ID:        p.ID,
		LoanID:    p.LoanID,
		Amount:    number(p.Amount),
		Date:      p.Date,
		Notes:     p.Notes,
		CreatedAt: timestamp(p.CreatedAt),
	}
}

func (r LoanPaymentRecord) Core() (core.LoanPayment, error) {
	amount, err := parseNumber("amount", r.Amount)
	if err != nil {
		return core.LoanPayment{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.LoanPayment{}, err
	}
	p := core.LoanPayment{
		ID:        r.ID,
		LoanID:    r.LoanID,
		Amount:    amount,
		Date:      r.Date,
		Notes:     r.Notes,
		CreatedAt: created,
	}
	return p, nil
}

func (r LoanPaymentRecord) ToCore() (core.LoanPayment, error) {
	p, err := r.Core()
	if err != nil {
		return p, err
	}
	if err := requireID(p.ID); err != nil {
		return p, err
	}
	return p, p.Validate()
}

func FromSettings(s core.Settings) SettingsRecord {
	return SettingsRecord{Language: string(s.Language), ReminderEnabled: s.ReminderEnabled}
}

func (r SettingsRecord) ToCore() (core.Settings, error) {
	s := core.Settings{Language: core.Language(r.Language), ReminderEnabled: r.ReminderEnabled}
	return s, s.Language.Validate()
}
