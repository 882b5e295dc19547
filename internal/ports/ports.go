package ports

import (
	"context"
	"errors"

	"kharcha/internal/core"
)

var ErrNotFound = errors.New("record not found")

// Ports for persistence adapters. Save replaces a record with the same id or
// appends a new one; Delete of an unknown id returns ErrNotFound.
type (
	SnapshotReader interface {
		// Snapshot returns a consistent copy of every collection.
		Snapshot(ctx context.Context) (core.Snapshot, error)
	}

	Restorer interface {
		// Restore replaces all six collections with the snapshot's content.
		Restore(ctx context.Context, snap core.Snapshot) error
	}

	ContractStore interface {
		ListContracts(ctx context.Context) ([]core.Contract, error)
		GetContract(ctx context.Context, id string) (core.Contract, error)
		SaveContract(ctx context.Context, c core.Contract) error
		DeleteContract(ctx context.Context, id string) error
	}

	IncomeStore interface {
		ListIncomes(ctx context.Context) ([]core.Income, error)
		SaveIncome(ctx context.Context, i core.Income) error
		DeleteIncome(ctx context.Context, id string) error
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		SaveExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	LabourStore interface {
		ListLabours(ctx context.Context) ([]core.Labour, error)
		GetLabour(ctx context.Context, id string) (core.Labour, error)
		SaveLabour(ctx context.Context, l core.Labour) error
		DeleteLabour(ctx context.Context, id string) error
	}

	LoanStore interface {
		ListLoans(ctx context.Context) ([]core.Loan, error)
		GetLoan(ctx context.Context, id string) (core.Loan, error)
		SaveLoan(ctx context.Context, l core.Loan) error
		DeleteLoan(ctx context.Context, id string) error
		ListLoanPayments(ctx context.Context) ([]core.LoanPayment, error)
		// AppendLoanPayment logs p and adds its amount to the loan's TotalPaid as one
		// update. Returns the updated loan.
		AppendLoanPayment(ctx context.Context, p core.LoanPayment) (core.Loan, error)
	}

	SettingsStore interface {
		GetSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
		// PINHash returns "" when no PIN is set.
		PINHash(ctx context.Context) (string, error)
		SetPINHash(ctx context.Context, hash string) error
	}

	// Versioned stores count successful writes so readers can key caches on them.
	Versioned interface {
		Version() uint64
	}

	Store interface {
		SnapshotReader
		Restorer
		ContractStore
		IncomeStore
		ExpenseStore
		LabourStore
		LoanStore
		SettingsStore
		Versioned
	}
)
