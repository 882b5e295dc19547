package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type (
	PaymentMode  string
	ExpenseType  string
	WorkType     string
	LabourType   string
	LoanType     string
	InterestType string
)

const (
	Cash    PaymentMode = "cash"
	PhonePe PaymentMode = "phonepe"
	GPay    PaymentMode = "gpay"

	Material    ExpenseType = "material"
	LabourCost  ExpenseType = "labour"
	Transport   ExpenseType = "transport"
	LoanPaid    ExpenseType = "loan_payment"
	PersonalUse ExpenseType = "personal"

	Mason       WorkType = "mason"
	Helper      WorkType = "helper"
	Electrician WorkType = "electrician"
	Plumber     WorkType = "plumber"
	Carpenter   WorkType = "carpenter"
	Painter     WorkType = "painter"
	OtherWork   WorkType = "other"

	Permanent LabourType = "permanent"
	Temporary LabourType = "temporary"

	BankLoan  LoanType = "bank"
	LocalLoan LoanType = "local"

	Monthly InterestType = "monthly"
	Yearly  InterestType = "yearly"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidEnum      = errors.New("invalid enum value")
	ErrEndDateOnActive  = errors.New("end date set on active contract")
	ErrMissingReference = errors.New("missing reference")
	ErrReservedID       = errors.New("reserved id")
)

// Date is a calendar day. The time part is always UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	s := string(b)
	// Backups written by browsers may carry a full ISO timestamp.
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON and UnmarshalJSON shadow the ones promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	return d.UnmarshalText([]byte(s))
}

func (m PaymentMode) Validate() error {
	switch m {
	case Cash, PhonePe, GPay:
		return nil
	}
	return fmt.Errorf("%w: payment mode %q", ErrInvalidEnum, string(m))
}

func (t ExpenseType) Validate() error {
	switch t {
	case Material, LabourCost, Transport, LoanPaid, PersonalUse:
		return nil
	}
	return fmt.Errorf("%w: expense type %q", ErrInvalidEnum, string(t))
}

func (w WorkType) Validate() error {
	switch w {
	case Mason, Helper, Electrician, Plumber, Carpenter, Painter, OtherWork:
		return nil
	}
	return fmt.Errorf("%w: work type %q", ErrInvalidEnum, string(w))
}

func (t LabourType) Validate() error {
	switch t {
	case Permanent, Temporary:
		return nil
	}
	return fmt.Errorf("%w: labour type %q", ErrInvalidEnum, string(t))
}

func (t LoanType) Validate() error {
	switch t {
	case BankLoan, LocalLoan:
		return nil
	}
	return fmt.Errorf("%w: loan type %q", ErrInvalidEnum, string(t))
}

func (t InterestType) Validate() error {
	switch t {
	case Monthly, Yearly:
		return nil
	}
	return fmt.Errorf("%w: interest type %q", ErrInvalidEnum, string(t))
}

type (
	Contract struct {
		ID         string
		Name       string
		ClientName string
		StartDate  Date
		EndDate    Date // zero while the contract is active
		IsActive   bool
		CreatedAt  time.Time
	}

	Income struct {
		ID          string
		Date        Date
		Amount      decimal.Decimal
		ContractID  string
		PaymentMode PaymentMode
		Notes       string
		CreatedAt   time.Time
	}

	Expense struct {
		ID          string
		Date        Date
		Amount      decimal.Decimal
		Scope       Scope
		ExpenseType ExpenseType
		PaymentMode PaymentMode
		Notes       string
		CreatedAt   time.Time
	}

	Labour struct {
		ID          string
		Name        string
		Phone       string
		WorkType    WorkType
		LabourType  LabourType
		DailySalary decimal.Decimal
		DaysWorked  decimal.Decimal
		PaidAmount  decimal.Decimal
		ContractID  string // optional
		CreatedAt   time.Time
	}

	Loan struct {
		ID              string
		LoanType        LoanType
		LenderName      string
		PrincipalAmount decimal.Decimal
		InterestRate    decimal.Decimal // percent per InterestType period
		InterestType    InterestType
		StartDate       Date
		TotalPaid       decimal.Decimal
		CreatedAt       time.Time
	}

	LoanPayment struct {
		ID        string
		LoanID    string
		Amount    decimal.Decimal
		Date      Date
		Notes     string
		CreatedAt time.Time
	}
)

func validateNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidAmount, field)
	}
	if err := CheckAmountRange(d); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func validateName(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyName, field)
	}
	if len(s) > 200 {
		return fmt.Errorf("%s too long (max 200 characters)", field)
	}
	return nil
}

func (c Contract) Validate() error {
	if c.ID == LegacyPersonal {
		return fmt.Errorf("%w: %q marks personal expenses", ErrReservedID, c.ID)
	}
	if err := validateName("name", c.Name); err != nil {
		return err
	}
	if err := c.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if !c.EndDate.IsZero() {
		if c.IsActive {
			return ErrEndDateOnActive
		}
		if c.EndDate.Before(c.StartDate.Time) {
			return fmt.Errorf("%w: end date before start date", ErrInvalidDate)
		}
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := validateNonNegative("amount", i.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(i.ContractID) == "" {
		return fmt.Errorf("%w: contract id", ErrMissingReference)
	}
	return i.PaymentMode.Validate()
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := validateNonNegative("amount", e.Amount); err != nil {
		return err
	}
	if err := e.Scope.Validate(); err != nil {
		return err
	}
	if err := e.ExpenseType.Validate(); err != nil {
		return err
	}
	return e.PaymentMode.Validate()
}

func (l Labour) Validate() error {
	if err := validateName("name", l.Name); err != nil {
		return err
	}
	if err := l.WorkType.Validate(); err != nil {
		return err
	}
	if err := l.LabourType.Validate(); err != nil {
		return err
	}
	if err := validateNonNegative("daily salary", l.DailySalary); err != nil {
		return err
	}
	if err := validateNonNegative("days worked", l.DaysWorked); err != nil {
		return err
	}
	return validateNonNegative("paid amount", l.PaidAmount)
}

func (l Loan) Validate() error {
	if err := validateName("lender name", l.LenderName); err != nil {
		return err
	}
	if err := l.LoanType.Validate(); err != nil {
		return err
	}
	if err := l.InterestType.Validate(); err != nil {
		return err
	}
	if err := l.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := validateNonNegative("principal", l.PrincipalAmount); err != nil {
		return err
	}
	if err := validateNonNegative("interest rate", l.InterestRate); err != nil {
		return err
	}
	return validateNonNegative("total paid", l.TotalPaid)
}

func (p LoanPayment) Validate() error {
	if strings.TrimSpace(p.LoanID) == "" {
		return fmt.Errorf("%w: loan id", ErrMissingReference)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment must be positive", ErrInvalidAmount)
	}
	if err := CheckAmountRange(p.Amount); err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	return p.Date.Validate()
}
