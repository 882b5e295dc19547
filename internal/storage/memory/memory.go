package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"kharcha/internal/core"
	"kharcha/internal/ports"
)

var _ ports.Store = (*Store)(nil)

// Store keeps every collection in memory, in insertion order.
type Store struct {
	mu       sync.Mutex
	version  uint64
	settings core.Settings
	pinHash  string

	contracts []core.Contract
	incomes   []core.Income
	expenses  []core.Expense
	labours   []core.Labour
	loans     []core.Loan
	payments  []core.LoanPayment
}

func New() *Store {
	return &Store{settings: core.DefaultSettings()}
}

// upsert replaces the item with the same id or appends it.
func upsert[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	for i := range items {
		if id(items[i]) == key {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []T, key string, id func(T) string) ([]T, error) {
	idx := slices.IndexFunc(items, func(v T) bool { return id(v) == key })
	if idx < 0 {
		return items, fmt.Errorf("%w: %s", ports.ErrNotFound, key)
	}
	return slices.Delete(items, idx, idx+1), nil
}

func find[T any](items []T, key string, id func(T) string) (T, error) {
	idx := slices.IndexFunc(items, func(v T) bool { return id(v) == key })
	if idx < 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s", ports.ErrNotFound, key)
	}
	return items[idx], nil
}

func contractID(c core.Contract) string   { return c.ID }
func incomeID(i core.Income) string       { return i.ID }
func expenseID(e core.Expense) string     { return e.ID }
func labourID(l core.Labour) string       { return l.ID }
func loanID(l core.Loan) string           { return l.ID }
func paymentID(p core.LoanPayment) string { return p.ID }

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Snapshot(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Snapshot{
		Contracts:    slices.Clone(s.contracts),
		Incomes:      slices.Clone(s.incomes),
		Expenses:     slices.Clone(s.expenses),
		Labours:      slices.Clone(s.labours),
		Loans:        slices.Clone(s.loans),
		LoanPayments: slices.Clone(s.payments),
	}, nil
}

func (s *Store) Restore(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = slices.Clone(snap.Contracts)
	s.incomes = slices.Clone(snap.Incomes)
	s.expenses = slices.Clone(snap.Expenses)
	s.labours = slices.Clone(snap.Labours)
	s.loans = slices.Clone(snap.Loans)
	s.payments = slices.Clone(snap.LoanPayments)
	s.version++
	return nil
}

func (s *Store) ListContracts(_ context.Context) ([]core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.contracts), nil
}

func (s *Store) GetContract(_ context.Context, id string) (core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.contracts, id, contractID)
}

func (s *Store) SaveContract(_ context.Context, c core.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = upsert(s.contracts, c, contractID)
	s.version++
	return nil
}

func (s *Store) DeleteContract(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.contracts, err = remove(s.contracts, id, contractID); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *Store) ListIncomes(_ context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.incomes), nil
}

func (s *Store) SaveIncome(_ context.Context, i core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = upsert(s.incomes, i, incomeID)
	s.version++
	return nil
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.incomes, err = remove(s.incomes, id, incomeID); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses), nil
}

func (s *Store) SaveExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = upsert(s.expenses, e, expenseID)
	s.version++
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.expenses, err = remove(s.expenses, id, expenseID); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *Store) ListLabours(_ context.Context) ([]core.Labour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.labours), nil
}

func (s *Store) GetLabour(_ context.Context, id string) (core.Labour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.labours, id, labourID)
}

func (s *Store) SaveLabour(_ context.Context, l core.Labour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labours = upsert(s.labours, l, labourID)
	s.version++
	return nil
}

func (s *Store) DeleteLabour(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.labours, err = remove(s.labours, id, labourID); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *Store) ListLoans(_ context.Context) ([]core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.loans), nil
}

func (s *Store) GetLoan(_ context.Context, id string) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.loans, id, loanID)
}

func (s *Store) SaveLoan(_ context.Context, l core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans = upsert(s.loans, l, loanID)
	s.version++
	return nil
}

func (s *Store) DeleteLoan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.loans, err = remove(s.loans, id, loanID); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *Store) ListLoanPayments(_ context.Context) ([]core.LoanPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.payments), nil
}

func (s *Store) AppendLoanPayment(_ context.Context, p core.LoanPayment) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.loans, func(l core.Loan) bool { return l.ID == p.LoanID })
	if idx < 0 {
		return core.Loan{}, fmt.Errorf("%w: loan %s", ports.ErrNotFound, p.LoanID)
	}
	if _, err := find(s.payments, p.ID, paymentID); err == nil {
		return core.Loan{}, fmt.Errorf("duplicate loan payment %s", p.ID)
	}
	s.payments = append(s.payments, p)
	s.loans[idx].TotalPaid = s.loans[idx].TotalPaid.Add(p.Amount)
	s.version++
	return s.loans[idx], nil
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Store) PINHash(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinHash, nil
}

func (s *Store) SetPINHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinHash = hash
	return nil
}
