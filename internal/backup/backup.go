// Package backup reads and writes the whole ledger as one JSON document.
//
// The document keeps the field names of the original phone backups so that
// files exported years ago can still be imported:
//
//	{"contracts":[...],"incomes":[...],"expenses":[...],"labours":[...],
//	 "loans":[...],"loanPayments":[...],"settings":{...},"exportedAt":"..."}
//
// A collection missing from an imported file (or set to null) leaves the
// stored collection untouched; an empty array clears it.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/ports"
)

var ErrInvalidBackup = errors.New("invalid backup")

type Document struct {
	Contracts    []ContractRecord    `json:"contracts"`
	Incomes      []IncomeRecord      `json:"incomes"`
	Expenses     []ExpenseRecord     `json:"expenses"`
	Labours      []LabourRecord      `json:"labours"`
	Loans        []LoanRecord        `json:"loans"`
	LoanPayments []LoanPaymentRecord `json:"loanPayments"`
	Settings     *SettingsRecord     `json:"settings,omitempty"`
	ExportedAt   string              `json:"exportedAt"`
}

// Source is what Export reads from.
type Source interface {
	ports.SnapshotReader
	GetSettings(ctx context.Context) (core.Settings, error)
}

// Target is what Import writes to.
type Target interface {
	Source
	ports.Restorer
	SaveSettings(ctx context.Context, s core.Settings) error
}

// Result counts what an import restored.
type Result struct {
	Contracts    int  `json:"contracts"`
	Incomes      int  `json:"incomes"`
	Expenses     int  `json:"expenses"`
	Labours      int  `json:"labours"`
	Loans        int  `json:"loans"`
	LoanPayments int  `json:"loanPayments"`
	Settings     bool `json:"settings"`
}

// Build converts a snapshot into a document stamped with now.
func Build(snap core.Snapshot, settings core.Settings, now time.Time) Document {
	doc := Document{
		Contracts:    make([]ContractRecord, 0, len(snap.Contracts)),
		Incomes:      make([]IncomeRecord, 0, len(snap.Incomes)),
		Expenses:     make([]ExpenseRecord, 0, len(snap.Expenses)),
		Labours:      make([]LabourRecord, 0, len(snap.Labours)),
		Loans:        make([]LoanRecord, 0, len(snap.Loans)),
		LoanPayments: make([]LoanPaymentRecord, 0, len(snap.LoanPayments)),
		ExportedAt:   now.UTC().Format(time.RFC3339Nano),
	}
	for _, c := range snap.Contracts {
		doc.Contracts = append(doc.Contracts, FromContract(c))
	}
	for _, i := range snap.Incomes {
		doc.Incomes = append(doc.Incomes, FromIncome(i))
	}
	for _, e := range snap.Expenses {
		doc.Expenses = append(doc.Expenses, FromExpense(e))
	}
	for _, l := range snap.Labours {
		doc.Labours = append(doc.Labours, FromLabour(l))
	}
	for _, l := range snap.Loans {
		doc.Loans = append(doc.Loans, FromLoan(l))
	}
	for _, p := range snap.LoanPayments {
		doc.LoanPayments = append(doc.LoanPayments, FromLoanPayment(p))
	}
	s := FromSettings(settings)
	doc.Settings = &s
	return doc
}

// Export writes the whole ledger to w.
func Export(ctx context.Context, src Source, w io.Writer, now time.Time) error {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	settings, err := src.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(Build(snap, settings, now)); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode parses a backup and validates every record in it. Collections absent
// from the document are nil in the returned snapshot.
func Decode(r io.Reader) (core.Snapshot, *core.Settings, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return core.Snapshot{}, nil, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}

	var snap core.Snapshot
	var err error
	if snap.Contracts, err = convert("contracts", doc.Contracts, ContractRecord.ToCore); err != nil {
		return core.Snapshot{}, nil, err
	}
	if snap.Incomes, err = convert("incomes", doc.Incomes, IncomeRecord.ToCore); err != nil {
		return core.Snapshot{}, nil, err
	}
	if snap.Expenses, err = convert("expenses", doc.Expenses, ExpenseRecord.ToCore); err != nil {
		return core.Snapshot{}, nil, err
	}
	if snap.Labours, err = convert("labours", doc.Labours, LabourRecord.ToCore); err != nil {
		return core.Snapshot{}, nil, err
	}
	if snap.Loans, err = convert("loans", doc.Loans, LoanRecord.ToCore); err != nil {
		return core.Snapshot{}, nil, err
	}
	if snap.LoanPayments, err = convert("loanPayments", doc.LoanPayments, LoanPaymentRecord.ToCore); err != nil {
		return core.Snapshot{}, nil, err
	}

	var settings *core.Settings
	if doc.Settings != nil {
		s, err := doc.Settings.ToCore()
		if err != nil {
			return core.Snapshot{}, nil, fmt.Errorf("%w: settings: %w", ErrInvalidBackup, err)
		}
		settings = &s
	}
	return snap, settings, nil
}

// convert keeps nil as nil so callers can tell "absent" from "empty".
func convert[R, T any](name string, records []R, fn func(R) (T, error)) ([]T, error) {
	if records == nil {
		return nil, nil
	}
	out := make([]T, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		v, err := fn(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", ErrInvalidBackup, name, i, err)
		}
		id := recordID(v)
		if seen[id] {
			return nil, fmt.Errorf("%w: %s[%d]: duplicate id %q", ErrInvalidBackup, name, i, id)
		}
		seen[id] = true
		out = append(out, v)
	}
	return out, nil
}

func recordID(v any) string {
	switch r := v.(type) {
	case core.Contract:
		return r.ID
	case core.Income:
		return r.ID
	case core.Expense:
		return r.ID
	case core.Labour:
		return r.ID
	case core.Loan:
		return r.ID
	case core.LoanPayment:
		return r.ID
	}
	return ""
}

// Import replaces the collections present in the backup. Nothing is written
// unless every record validates.
func Import(ctx context.Context, dst Target, r io.Reader) (Result, error) {
	incoming, settings, err := Decode(r)
	if err != nil {
		return Result{}, err
	}

	current, err := dst.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read ledger: %w", err)
	}
	merged := current
	if incoming.Contracts != nil {
		merged.Contracts = incoming.Contracts
	}
	if incoming.Incomes != nil {
		merged.Incomes = incoming.Incomes
	}
	if incoming.Expenses != nil {
		merged.Expenses = incoming.Expenses
	}
	if incoming.Labours != nil {
		merged.Labours = incoming.Labours
	}
	if incoming.Loans != nil {
		merged.Loans = incoming.Loans
	}
	if incoming.LoanPayments != nil {
		merged.LoanPayments = incoming.LoanPayments
	}

	if err := dst.Restore(ctx, merged); err != nil {
		return Result{}, fmt.Errorf("restore ledger: %w", err)
	}
	if settings != nil {
		if err := dst.SaveSettings(ctx, *settings); err != nil {
			return Result{}, fmt.Errorf("restore settings: %w", err)
		}
	}

	res := Result{
		Contracts:    len(incoming.Contracts),
		Incomes:      len(incoming.Incomes),
		Expenses:     len(incoming.Expenses),
		Labours:      len(incoming.Labours),
		Loans:        len(incoming.Loans),
		LoanPayments: len(incoming.LoanPayments),
		Settings:     settings != nil,
	}
	slog.InfoContext(ctx, "Backup imported",
		"contracts", res.Contracts,
		"incomes", res.Incomes,
		"expenses", res.Expenses,
		"labours", res.Labours,
		"loans", res.Loans,
		"loan_payments", res.LoanPayments,
		"settings", res.Settings)
	return res, nil
}
