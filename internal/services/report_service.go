package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kharcha/internal/cache"
	"kharcha/internal/calc"
	"kharcha/internal/core"
	"kharcha/internal/ports"
)

// ReportSource is the read side of a store.
type ReportSource interface {
	ports.SnapshotReader
	ports.Versioned
}

// ReportService builds portfolio reports and keeps the latest ones cached.
// A cached report is valid for one store version on one calendar day, since
// loan interest moves with the date even when nothing is written.
type ReportService struct {
	source ReportSource
	clock  Clock
	cache  *cache.LRUCache[core.Report]
}

func NewReportService(source ReportSource, clock Clock, size int, ttl time.Duration) *ReportService {
	if clock == nil {
		clock = SystemClock(nil)
	}
	if size <= 0 {
		size = 16
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportService{
		source: source,
		clock:  clock,
		cache:  cache.NewLRUCache[core.Report](size, ttl),
	}
}

// Cache exposes the report cache so a cache.Manager can sweep it.
func (s *ReportService) Cache() *cache.LRUCache[core.Report] {
	return s.cache
}

func (s *ReportService) key(now time.Time) string {
	return fmt.Sprintf("%d|%s", s.source.Version(), core.DateOf(now))
}

// Report returns the report as of the clock's current time.
func (s *ReportService) Report(ctx context.Context) (core.Report, error) {
	now := s.clock()
	key := s.key(now)
	if r, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Report cache hit", "key", key)
		return r, nil
	}

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("read ledger: %w", err)
	}
	r, err := calc.BuildReport(snap, now)
	if err != nil {
		return core.Report{}, fmt.Errorf("build report: %w", err)
	}
	s.cache.Set(key, r)
	slog.DebugContext(ctx, "Report built",
		"key", key,
		"contracts", len(r.Contracts),
		"labours", len(r.Labours),
		"loans", len(r.Loans))
	return r, nil
}

// ContractSummary returns one contract with its totals.
func (s *ReportService) ContractSummary(ctx context.Context, id string) (core.ContractSummary, error) {
	r, err := s.Report(ctx)
	if err != nil {
		return core.ContractSummary{}, err
	}
	for _, c := range r.Contracts {
		if c.ID == id {
			return c, nil
		}
	}
	return core.ContractSummary{}, fmt.Errorf("%w: contract %s", ports.ErrNotFound, id)
}

// LoanPayments returns the payment log of one loan in insertion order.
func (s *ReportService) LoanPayments(ctx context.Context, loanID string) ([]core.LoanPayment, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return calc.PaymentsForLoan(loanID, snap.LoanPayments), nil
}

// Invalidate drops every cached report.
func (s *ReportService) Invalidate() {
	s.cache.Purge()
}
