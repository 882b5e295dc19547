// Package services orchestrates ledger writes, report building and reminders
// on top of the storage ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/ports"
)

// ErrValidation wraps every rejected input so callers can map it to one status.
var ErrValidation = errors.New("validation failed")

// LedgerPublisher announces ledger writes to other processes.
type LedgerPublisher interface {
	PublishLedgerChanged(ctx context.Context, msg amqp.LedgerChangedMessage) error
}

// Invalidator is told after every successful write.
type Invalidator interface {
	Invalidate()
}

// LedgerService validates and stores ledger records, then publishes a change
// event. Publishing is best effort: a record saved locally is never rolled
// back because the broker is down.
type LedgerService struct {
	store     ports.Store
	publisher LedgerPublisher
	clock     Clock
	newID     func() string
	watchers  []Invalidator
}

func NewLedgerService(store ports.Store, publisher LedgerPublisher, clock Clock) *LedgerService {
	if clock == nil {
		clock = SystemClock(nil)
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		clock:     clock,
		newID:     uuid.NewString,
	}
}

// Watch registers inv to be invalidated after each write.
func (s *LedgerService) Watch(inv Invalidator) {
	s.watchers = append(s.watchers, inv)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (s *LedgerService) changed(ctx context.Context, entity, id, op string) {
	for _, w := range s.watchers {
		w.Invalidate()
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event", "entity", entity, "id", id)
		return
	}
	msg := amqp.NewLedgerChangedMessage(entity, id, op, s.clock())
	if err := s.publisher.PublishLedgerChanged(ctx, *msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"entity", entity, "id", id, "op", op, "error", err)
	}
}

func (s *LedgerService) contractExists(ctx context.Context, id string) error {
	if _, err := s.store.GetContract(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return invalid(fmt.Errorf("%w: contract %s", core.ErrMissingReference, id))
		}
		return err
	}
	return nil
}

// Contracts

func (s *LedgerService) CreateContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	c.ID = s.newID()
	c.CreatedAt = s.clock()
	return s.saveContract(ctx, c)
}

// UpdateContract replaces an existing contract, keeping its creation time.
func (s *LedgerService) UpdateContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	existing, err := s.store.GetContract(ctx, c.ID)
	if err != nil {
		return core.Contract{}, err
	}
	c.CreatedAt = existing.CreatedAt
	return s.saveContract(ctx, c)
}

func (s *LedgerService) saveContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.ClientName = strings.TrimSpace(c.ClientName)
	if err := c.Validate(); err != nil {
		return core.Contract{}, invalid(err)
	}
	if err := s.store.SaveContract(ctx, c); err != nil {
		return core.Contract{}, fmt.Errorf("save contract: %w", err)
	}
	s.changed(ctx, amqp.EntityContract, c.ID, amqp.OpSaved)
	return c, nil
}

// DeleteContract removes the contract only. Incomes and expenses that pointed
// at it stay in the ledger and keep counting towards the overall totals.
func (s *LedgerService) DeleteContract(ctx context.Context, id string) error {
	if err := s.store.DeleteContract(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.EntityContract, id, amqp.OpDeleted)
	return nil
}

// Incomes

func (s *LedgerService) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	i.ID = s.newID()
	i.CreatedAt = s.clock()
	return s.saveIncome(ctx, i)
}

func (s *LedgerService) UpdateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	incomes, err := s.store.ListIncomes(ctx)
	if err != nil {
		return core.Income{}, err
	}
	idx := slices.IndexFunc(incomes, func(x core.Income) bool { return x.ID == i.ID })
	if idx < 0 {
		return core.Income{}, fmt.Errorf("%w: income %s", ports.ErrNotFound, i.ID)
	}
	i.CreatedAt = incomes[idx].CreatedAt
	return s.saveIncome(ctx, i)
}

func (s *LedgerService) saveIncome(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, invalid(err)
	}
	if err := s.contractExists(ctx, i.ContractID); err != nil {
		return core.Income{}, err
	}
	if err := s.store.SaveIncome(ctx, i); err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	s.changed(ctx, amqp.EntityIncome, i.ID, amqp.OpSaved)
	return i, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.EntityIncome, id, amqp.OpDeleted)
	return nil
}

// Expenses

func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = s.newID()
	e.CreatedAt = s.clock()
	return s.saveExpense(ctx, e)
}

func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	idx := slices.IndexFunc(expenses, func(x core.Expense) bool { return x.ID == e.ID })
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("%w: expense %s", ports.ErrNotFound, e.ID)
	}
	e.CreatedAt = expenses[idx].CreatedAt
	return s.saveExpense(ctx, e)
}

func (s *LedgerService) saveExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	if !e.Scope.IsPersonal() {
		if err := s.contractExists(ctx, e.Scope.ContractID()); err != nil {
			return core.Expense{}, err
		}
	}
	if err := s.store.SaveExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.changed(ctx, amqp.EntityExpense, e.ID, amqp.OpSaved)
	return e, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.EntityExpense, id, amqp.OpDeleted)
	return nil
}

// Labour

func (s *LedgerService) CreateLabour(ctx context.Context, l core.Labour) (core.Labour, error) {
	l.ID = s.newID()
	l.CreatedAt = s.clock()
	return s.saveLabour(ctx, l)
}

func (s *LedgerService) UpdateLabour(ctx context.Context, l core.Labour) (core.Labour, error) {
	existing, err := s.store.GetLabour(ctx, l.ID)
	if err != nil {
		return core.Labour{}, err
	}
	l.CreatedAt = existing.CreatedAt
	return s.saveLabour(ctx, l)
}

func (s *LedgerService) saveLabour(ctx context.Context, l core.Labour) (core.Labour, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.Phone = strings.TrimSpace(l.Phone)
	if err := l.Validate(); err != nil {
		return core.Labour{}, invalid(err)
	}
	if l.ContractID != "" {
		if err := s.contractExists(ctx, l.ContractID); err != nil {
			return core.Labour{}, err
		}
	}
	if err := s.store.SaveLabour(ctx, l); err != nil {
		return core.Labour{}, fmt.Errorf("save labour: %w", err)
	}
	s.changed(ctx, amqp.EntityLabour, l.ID, amqp.OpSaved)
	return l, nil
}

func (s *LedgerService) DeleteLabour(ctx context.Context, id string) error {
	if err := s.store.DeleteLabour(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.EntityLabour, id, amqp.OpDeleted)
	return nil
}

// Loans

// CreateLoan stores a new loan. TotalPaid starts at zero; payments go through AddLoanPayment.
func (s *LedgerService) CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	l.ID = s.newID()
	l.CreatedAt = s.clock()
	l.TotalPaid = decimal.Zero
	return s.saveLoan(ctx, l)
}

// UpdateLoan edits the loan terms. TotalPaid is owned by the payment log and
// cannot be changed here.
func (s *LedgerService) UpdateLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	existing, err := s.store.GetLoan(ctx, l.ID)
	if err != nil {
		return core.Loan{}, err
	}
	l.CreatedAt = existing.CreatedAt
	l.TotalPaid = existing.TotalPaid
	return s.saveLoan(ctx, l)
}

func (s *LedgerService) saveLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	l.LenderName = strings.TrimSpace(l.LenderName)
	if err := l.Validate(); err != nil {
		return core.Loan{}, invalid(err)
	}
	if err := s.store.SaveLoan(ctx, l); err != nil {
		return core.Loan{}, fmt.Errorf("save loan: %w", err)
	}
	s.changed(ctx, amqp.EntityLoan, l.ID, amqp.OpSaved)
	return l, nil
}

func (s *LedgerService) DeleteLoan(ctx context.Context, id string) error {
	if err := s.store.DeleteLoan(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.EntityLoan, id, amqp.OpDeleted)
	return nil
}

// AddLoanPayment logs a payment against loanID and returns the updated loan.
// A zero date means today.
func (s *LedgerService) AddLoanPayment(ctx context.Context, loanID string, amount decimal.Decimal, date core.Date, notes string) (core.Loan, core.LoanPayment, error) {
	now := s.clock()
	if date.IsZero() {
		date = core.DateOf(now)
	}
	p := core.LoanPayment{
		ID:        s.newID(),
		LoanID:    loanID,
		Amount:    amount,
		Date:      date,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return core.Loan{}, core.LoanPayment{}, invalid(err)
	}

	loan, err := s.store.AppendLoanPayment(ctx, p)
	if err != nil {
		return core.Loan{}, core.LoanPayment{}, err
	}
	s.changed(ctx, amqp.EntityLoanPayment, p.ID, amqp.OpSaved)
	return loan, p, nil
}

// Settings

func (s *LedgerService) Settings(ctx context.Context) (core.Settings, error) {
	return s.store.GetSettings(ctx)
}

func (s *LedgerService) UpdateSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	if err := settings.Language.Validate(); err != nil {
		return core.Settings{}, invalid(err)
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	s.changed(ctx, amqp.EntitySettings, "", amqp.OpSaved)
	return settings, nil
}

// Restored is called after a backup import replaced the ledger.
func (s *LedgerService) Restored(ctx context.Context) {
	s.changed(ctx, amqp.EntityLedger, "", amqp.OpRestored)
}
