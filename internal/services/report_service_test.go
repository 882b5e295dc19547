package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
	"kharcha/internal/ports"
	"kharcha/internal/storage/memory"
)

type countingSource struct {
	*memory.Store
	reads int
}

func (c *countingSource) Snapshot(ctx context.Context) (core.Snapshot, error) {
	c.reads++
	return c.Store.Snapshot(ctx)
}

func seedReportStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	_ = store.SaveContract(ctx, core.Contract{ID: "c1", Name: "Hall", StartDate: core.NewDate(2024, 1, 1), IsActive: true})
	_ = store.SaveIncome(ctx, core.Income{ID: "i1", Date: core.NewDate(2024, 1, 5), Amount: decimal.NewFromInt(100000), ContractID: "c1", PaymentMode: core.Cash})
	_ = store.SaveExpense(ctx, core.Expense{ID: "e1", Date: core.NewDate(2024, 1, 6), Amount: decimal.NewFromInt(40000), Scope: core.BusinessScope("c1"), ExpenseType: core.Material, PaymentMode: core.Cash})
	_ = store.SaveLoan(ctx, core.Loan{ID: "l1", LoanType: core.LocalLoan, LenderName: "Shetty", PrincipalAmount: decimal.NewFromInt(100000), InterestRate: decimal.NewFromInt(2), InterestType: core.Monthly, StartDate: core.NewDate(2024, 1, 15)})
	return store
}

func TestReportService_Report(t *testing.T) {
	src := &countingSource{Store: seedReportStore(t)}
	svc := NewReportService(src, FixedClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)), 4, time.Hour)

	r, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !r.OverallProfitLoss.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("overall = %s, want 60000", r.OverallProfitLoss)
	}
	// 3 months at 2% monthly on 1,00,000
	if !r.Loans[0].TotalInterest.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("interest = %s, want 6000", r.Loans[0].TotalInterest)
	}
	if !r.TotalPendingLoans.Equal(decimal.NewFromInt(106000)) {
		t.Errorf("pending loans = %s", r.TotalPendingLoans)
	}
}

func TestReportService_CachesPerVersionAndDay(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{Store: seedReportStore(t)}
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc := NewReportService(src, func() time.Time { return now }, 4, time.Hour)

	_, _ = svc.Report(ctx)
	_, _ = svc.Report(ctx)
	if src.reads != 1 {
		t.Fatalf("snapshot read %d times, want 1", src.reads)
	}

	_ = src.SaveIncome(ctx, core.Income{ID: "i2", Date: core.NewDate(2024, 3, 1), Amount: decimal.NewFromInt(1), ContractID: "c1", PaymentMode: core.Cash})
	_, _ = svc.Report(ctx)
	if src.reads != 2 {
		t.Errorf("write did not change cache key, reads = %d", src.reads)
	}

	now = now.Add(20 * time.Minute)
	_, _ = svc.Report(ctx)
	if src.reads != 2 {
		t.Errorf("same day should hit cache, reads = %d", src.reads)
	}

	now = time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	_, _ = svc.Report(ctx)
	if src.reads != 3 {
		t.Errorf("new day should rebuild, reads = %d", src.reads)
	}

	svc.Invalidate()
	if svc.Cache().Size() != 0 {
		t.Errorf("invalidate left %d entries", svc.Cache().Size())
	}
}

func TestReportService_ContractSummary(t *testing.T) {
	svc := NewReportService(seedReportStore(t), FixedClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)), 0, 0)

	s, err := svc.ContractSummary(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ContractSummary: %v", err)
	}
	if !s.ProfitLoss.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("profit = %s", s.ProfitLoss)
	}
	if _, err := svc.ContractSummary(context.Background(), "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("unknown contract: %v", err)
	}
}

func TestReportService_LoanPayments(t *testing.T) {
	ctx := context.Background()
	store := seedReportStore(t)
	_, _ = store.AppendLoanPayment(ctx, core.LoanPayment{ID: "p1", LoanID: "l1", Amount: decimal.NewFromInt(100), Date: core.NewDate(2024, 2, 1)})
	_, _ = store.AppendLoanPayment(ctx, core.LoanPayment{ID: "p2", LoanID: "l1", Amount: decimal.NewFromInt(200), Date: core.NewDate(2024, 3, 1)})
	svc := NewReportService(store, FixedClock(time.Now()), 0, 0)

	payments, err := svc.LoanPayments(ctx, "l1")
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 2 || payments[0].ID != "p1" || payments[1].ID != "p2" {
		t.Errorf("payments = %+v", payments)
	}
}
