// Package storage persists the ledger in SQLite.
//
// Amounts are stored as decimal TEXT and dates as YYYY-MM-DD so that the
// database round-trips exactly what the user typed. Each table carries an
// autoincrement seq column; lists are ordered by it, which keeps insertion
// order across updates.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/core"
	"kharcha/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.Store = (*SQLiteRepository)(nil)

const (
	settingLanguage = "language"
	settingReminder = "reminder_enabled"
	settingPINHash  = "pin_hash"
)

type SQLiteRepository struct {
	db      *sql.DB
	version atomic.Uint64
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Version counts the writes made through this repository since it was opened.
func (r *SQLiteRepository) Version() uint64 {
	return r.version.Load()
}

// Snapshot loads all six collections concurrently.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Contracts, err = r.ListContracts(gctx); return })
	g.Go(func() (err error) { snap.Incomes, err = r.ListIncomes(gctx); return })
	g.Go(func() (err error) { snap.Expenses, err = r.ListExpenses(gctx); return })
	g.Go(func() (err error) { snap.Labours, err = r.ListLabours(gctx); return })
	g.Go(func() (err error) { snap.Loans, err = r.ListLoans(gctx); return })
	g.Go(func() (err error) { snap.LoanPayments, err = r.ListLoanPayments(gctx); return })
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// parseStoredDate maps the empty string to the zero date.
func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ports.ErrNotFound, table, id)
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Record deleted", "table", table, "id", id)
	return nil
}

func notFound(err error, table, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ports.ErrNotFound, table, id)
	}
	return fmt.Errorf("get from %s: %w", table, err)
}

// Contracts

const contractColumns = "id, name, client_name, start_date, end_date, is_active, created_at"

func scanContract(s rowScanner) (core.Contract, error) {
	var (
		c                   core.Contract
		start, end, created string
		active              int
	)
	if err := s.Scan(&c.ID, &c.Name, &c.ClientName, &start, &end, &active, &created); err != nil {
		return c, err
	}
	var err error
	if c.StartDate, err = parseStoredDate(start); err != nil {
		return c, err
	}
	if c.EndDate, err = parseStoredDate(end); err != nil {
		return c, err
	}
	c.IsActive = active != 0
	c.CreatedAt, err = parseTime(created)
	return c, err
}

func (r *SQLiteRepository) ListContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+contractColumns+" FROM contracts ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var out []core.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetContract(ctx context.Context, id string) (core.Contract, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+contractColumns+" FROM contracts WHERE id = ?", id)
	c, err := scanContract(row)
	if err != nil {
		return core.Contract{}, notFound(err, "contracts", id)
	}
	return c, nil
}

const upsertContract = `
		INSERT INTO contracts (` + contractColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client_name = excluded.client_name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			is_active = excluded.is_active,
			created_at = excluded.created_at`

func contractArgs(c core.Contract) []any {
	return []any{
		c.ID, c.Name, c.ClientName, c.StartDate.String(), c.EndDate.String(), boolInt(c.IsActive), formatTime(c.CreatedAt),
	}
}

func (r *SQLiteRepository) SaveContract(ctx context.Context, c core.Contract) error {
	_, err := r.db.ExecContext(ctx, upsertContract, contractArgs(c)...)
	if err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Contract saved to SQLite", "id", c.ID, "name", c.Name, "active", c.IsActive)
	return nil
}

func (r *SQLiteRepository) DeleteContract(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "contracts", id)
}

// Incomes

const incomeColumns = "id, date, amount, contract_id, payment_mode, notes, created_at"

func scanIncome(s rowScanner) (core.Income, error) {
	var (
		i             core.Income
		date, created string
		mode          string
	)
	if err := s.Scan(&i.ID, &date, &i.Amount, &i.ContractID, &mode, &i.Notes, &created); err != nil {
		return i, err
	}
	var err error
	if i.Date, err = parseStoredDate(date); err != nil {
		return i, err
	}
	i.PaymentMode = core.PaymentMode(mode)
	i.CreatedAt, err = parseTime(created)
	return i, err
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+incomeColumns+" FROM incomes ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

const upsertIncome = `
		INSERT INTO incomes (` + incomeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			amount = excluded.amount,
			contract_id = excluded.contract_id,
			payment_mode = excluded.payment_mode,
			notes = excluded.notes,
			created_at = excluded.created_at`

func incomeArgs(i core.Income) []any {
	return []any{
		i.ID, i.Date.String(), i.Amount.String(), i.ContractID, string(i.PaymentMode), i.Notes, formatTime(i.CreatedAt),
	}
}

func (r *SQLiteRepository) SaveIncome(ctx context.Context, i core.Income) error {
	_, err := r.db.ExecContext(ctx, upsertIncome, incomeArgs(i)...)
	if err != nil {
		return fmt.Errorf("save income: %w", err)
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Income saved to SQLite", "id", i.ID, "contract_id", i.ContractID, "amount", i.Amount.String())
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "incomes", id)
}

// Expenses

const expenseColumns = "id, date, amount, contract_id, expense_type, payment_mode, notes, created_at"

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e                                core.Expense
		date, scope, kind, mode, created string
	)
	if err := s.Scan(&e.ID, &date, &e.Amount, &scope, &kind, &mode, &e.Notes, &created); err != nil {
		return e, err
	}
	var err error
	if e.Date, err = parseStoredDate(date); err != nil {
		return e, err
	}
	e.Scope = core.ScopeFromLegacy(scope)
	e.ExpenseType = core.ExpenseType(kind)
	e.PaymentMode = core.PaymentMode(mode)
	e.CreatedAt, err = parseTime(created)
	return e, err
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const upsertExpense = `
		INSERT INTO expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			amount = excluded.amount,
			contract_id = excluded.contract_id,
			expense_type = excluded.expense_type,
			payment_mode = excluded.payment_mode,
			notes = excluded.notes,
			created_at = excluded.created_at`

func expenseArgs(e core.Expense) []any {
	return []any{
		e.ID, e.Date.String(), e.Amount.String(), e.Scope.Legacy(), string(e.ExpenseType), string(e.PaymentMode), e.Notes, formatTime(e.CreatedAt),
	}
}

func (r *SQLiteRepository) SaveExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, upsertExpense, expenseArgs(e)...)
	if err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"scope", e.Scope.String(),
		"type", string(e.ExpenseType),
		"amount", e.Amount.String())
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "expenses", id)
}

// Labours

const labourColumns = "id, name, phone, work_type, labour_type, daily_salary, days_worked, paid_amount, contract_id, created_at"

func scanLabour(s rowScanner) (core.Labour, error) {
	var (
		l                   core.Labour
		work, kind, created string
	)
	if err := s.Scan(&l.ID, &l.Name, &l.Phone, &work, &kind, &l.DailySalary, &l.DaysWorked, &l.PaidAmount, &l.ContractID, &created); err != nil {
		return l, err
	}
	l.WorkType = core.WorkType(work)
	l.LabourType = core.LabourType(kind)
	var err error
	l.CreatedAt, err = parseTime(created)
	return l, err
}

func (r *SQLiteRepository) ListLabours(ctx context.Context) ([]core.Labour, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+labourColumns+" FROM labours ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list labours: %w", err)
	}
	defer rows.Close()

	var out []core.Labour
	for rows.Next() {
		l, err := scanLabour(rows)
		if err != nil {
			return nil, fmt.Errorf("scan labour: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetLabour(ctx context.Context, id string) (core.Labour, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+labourColumns+" FROM labours WHERE id = ?", id)
	l, err := scanLabour(row)
	if err != nil {
		return core.Labour{}, notFound(err, "labours", id)
	}
	return l, nil
}

const upsertLabour = `
		INSERT INTO labours (` + labourColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			work_type = excluded.work_type,
			labour_type = excluded.labour_type,
			daily_salary = excluded.daily_salary,
			days_worked = excluded.days_worked,
			paid_amount = excluded.paid_amount,
			contract_id = excluded.contract_id,
			created_at = excluded.created_at`

func labourArgs(l core.Labour) []any {
	return []any{
		l.ID, l.Name, l.Phone, string(l.WorkType), string(l.LabourType),
		l.DailySalary.String(), l.DaysWorked.String(), l.PaidAmount.String(), l.ContractID, formatTime(l.CreatedAt),
	}
}

func (r *SQLiteRepository) SaveLabour(ctx context.Context, l core.Labour) error {
	_, err := r.db.ExecContext(ctx, upsertLabour, labourArgs(l)...)
	if err != nil {
		return fmt.Errorf("save labour: %w", err)
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Labour saved to SQLite", "id", l.ID, "name", l.Name, "work_type", string(l.WorkType))
	return nil
}

func (r *SQLiteRepository) DeleteLabour(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "labours", id)
}

// Loans

const loanColumns = "id, loan_type, lender_name, principal_amount, interest_rate, interest_type, start_date, total_paid, created_at"

func scanLoan(s rowScanner) (core.Loan, error) {
	var (
		l                              core.Loan
		kind, interest, start, created string
	)
	if err := s.Scan(&l.ID, &kind, &l.LenderName, &l.PrincipalAmount, &l.InterestRate, &interest, &start, &l.TotalPaid, &created); err != nil {
		return l, err
	}
	var err error
	if l.StartDate, err = parseStoredDate(start); err != nil {
		return l, err
	}
	l.LoanType = core.LoanType(kind)
	l.InterestType = core.InterestType(interest)
	l.CreatedAt, err = parseTime(created)
	return l, err
}

func (r *SQLiteRepository) ListLoans(ctx context.Context) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+loanColumns+" FROM loans ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []core.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetLoan(ctx context.Context, id string) (core.Loan, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+loanColumns+" FROM loans WHERE id = ?", id)
	l, err := scanLoan(row)
	if err != nil {
		return core.Loan{}, notFound(err, "loans", id)
	}
	return l, nil
}

const upsertLoan = `
		INSERT INTO loans (` + loanColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			loan_type = excluded.loan_type,
			lender_name = excluded.lender_name,
			principal_amount = excluded.principal_amount,
			interest_rate = excluded.interest_rate,
			interest_type = excluded.interest_type,
			start_date = excluded.start_date,
			total_paid = excluded.total_paid,
			created_at = excluded.created_at`

func loanArgs(l core.Loan) []any {
	return []any{
		l.ID, string(l.LoanType), l.LenderName, l.PrincipalAmount.String(), l.InterestRate.String(),
		string(l.InterestType), l.StartDate.String(), l.TotalPaid.String(), formatTime(l.CreatedAt),
	}
}

func (r *SQLiteRepository) SaveLoan(ctx context.Context, l core.Loan) error {
	_, err := r.db.ExecContext(ctx, upsertLoan, loanArgs(l)...)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Loan saved to SQLite", "id", l.ID, "lender", l.LenderName, "principal", l.PrincipalAmount.String())
	return nil
}

func (r *SQLiteRepository) DeleteLoan(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "loans", id)
}

// Loan payments

const paymentColumns = "id, loan_id, amount, date, notes, created_at"

func scanPayment(s rowScanner) (core.LoanPayment, error) {
	var (
		p             core.LoanPayment
		date, created string
	)
	if err := s.Scan(&p.ID, &p.LoanID, &p.Amount, &date, &p.Notes, &created); err != nil {
		return p, err
	}
	var err error
	if p.Date, err = parseStoredDate(date); err != nil {
		return p, err
	}
	p.CreatedAt, err = parseTime(created)
	return p, err
}

func (r *SQLiteRepository) ListLoanPayments(ctx context.Context) ([]core.LoanPayment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+paymentColumns+" FROM loan_payments ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list loan payments: %w", err)
	}
	defer rows.Close()

	var out []core.LoanPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const insertPayment = "INSERT INTO loan_payments (" + paymentColumns + ") VALUES (?, ?, ?, ?, ?, ?)"

func paymentArgs(p core.LoanPayment) []any {
	return []any{p.ID, p.LoanID, p.Amount.String(), p.Date.String(), p.Notes, formatTime(p.CreatedAt)}
}

// AppendLoanPayment records the payment and bumps the loan's TotalPaid in one transaction.
func (r *SQLiteRepository) AppendLoanPayment(ctx context.Context, p core.LoanPayment) (core.Loan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Loan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := scanLoan(tx.QueryRowContext(ctx, "SELECT "+loanColumns+" FROM loans WHERE id = ?", p.LoanID))
	if err != nil {
		return core.Loan{}, notFound(err, "loans", p.LoanID)
	}

	if _, err := tx.ExecContext(ctx, insertPayment, paymentArgs(p)...); err != nil {
		return core.Loan{}, fmt.Errorf("insert loan payment: %w", err)
	}

	loan.TotalPaid = loan.TotalPaid.Add(p.Amount)
	if _, err := tx.ExecContext(ctx, "UPDATE loans SET total_paid = ? WHERE id = ?", loan.TotalPaid.String(), loan.ID); err != nil {
		return core.Loan{}, fmt.Errorf("update loan total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Loan{}, fmt.Errorf("commit loan payment: %w", err)
	}
	r.version.Add(1)

	slog.InfoContext(ctx, "Loan payment recorded",
		"loan_id", loan.ID,
		"payment_id", p.ID,
		"amount", p.Amount.String(),
		"total_paid", loan.TotalPaid.String())
	return loan, nil
}

// Restore swaps every collection for the snapshot's content in one transaction.
func (r *SQLiteRepository) Restore(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"contracts", "incomes", "expenses", "labours", "loans", "loan_payments"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insert := func(query string, args []any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	for _, c := range snap.Contracts {
		if err := insert(upsertContract, contractArgs(c)); err != nil {
			return fmt.Errorf("restore contract %s: %w", c.ID, err)
		}
	}
	for _, i := range snap.Incomes {
		if err := insert(upsertIncome, incomeArgs(i)); err != nil {
			return fmt.Errorf("restore income %s: %w", i.ID, err)
		}
	}
	for _, e := range snap.Expenses {
		if err := insert(upsertExpense, expenseArgs(e)); err != nil {
			return fmt.Errorf("restore expense %s: %w", e.ID, err)
		}
	}
	for _, l := range snap.Labours {
		if err := insert(upsertLabour, labourArgs(l)); err != nil {
			return fmt.Errorf("restore labour %s: %w", l.ID, err)
		}
	}
	for _, l := range snap.Loans {
		if err := insert(upsertLoan, loanArgs(l)); err != nil {
			return fmt.Errorf("restore loan %s: %w", l.ID, err)
		}
	}
	for _, p := range snap.LoanPayments {
		if err := insert(insertPayment, paymentArgs(p)); err != nil {
			return fmt.Errorf("restore loan payment %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	r.version.Add(1)

	slog.InfoContext(ctx, "Ledger restored",
		"contracts", len(snap.Contracts),
		"incomes", len(snap.Incomes),
		"expenses", len(snap.Expenses),
		"labours", len(snap.Labours),
		"loans", len(snap.Loans),
		"loan_payments", len(snap.LoanPayments))
	return nil
}

// Settings

func (r *SQLiteRepository) setting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return v, true, nil
}

func putSetting(ctx context.Context, ex interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, key, value string) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	s := core.DefaultSettings()
	if v, ok, err := r.setting(ctx, settingLanguage); err != nil {
		return s, err
	} else if ok {
		s.Language = core.Language(v)
	}
	if v, ok, err := r.setting(ctx, settingReminder); err != nil {
		return s, err
	} else if ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("parse %s: %w", settingReminder, err)
		}
		s.ReminderEnabled = enabled
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := putSetting(ctx, tx, settingLanguage, string(s.Language)); err != nil {
		return err
	}
	if err := putSetting(ctx, tx, settingReminder, strconv.FormatBool(s.ReminderEnabled)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	slog.InfoContext(ctx, "Settings saved", "language", string(s.Language), "reminder_enabled", s.ReminderEnabled)
	return nil
}

// PINHash returns "" when no PIN has been set.
func (r *SQLiteRepository) PINHash(ctx context.Context) (string, error) {
	v, _, err := r.setting(ctx, settingPINHash)
	return v, err
}

// SetPINHash stores the hash; an empty hash removes the PIN.
func (r *SQLiteRepository) SetPINHash(ctx context.Context, hash string) error {
	if hash == "" {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", settingPINHash); err != nil {
			return fmt.Errorf("clear pin: %w", err)
		}
		return nil
	}
	return putSetting(ctx, r.db, settingPINHash, hash)
}
