// Package worker turns ledger change events into report exports.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/sheets"
)

// Reports builds the current report. Invalidate forces the next build to
// re-read the ledger, since writes from another process do not reach this
// process's cache key.
type Reports interface {
	Report(ctx context.Context) (core.Report, error)
	Invalidate()
}

// ReportSyncWorker exports the whole report after ledger changes. A message
// stamped before the start of the last successful export is already covered
// by it and is skipped.
type ReportSyncWorker struct {
	reports Reports
	writer  sheets.ReportWriter
	now     func() time.Time

	mu         sync.Mutex
	lastExport time.Time
}

func NewReportSyncWorker(reports Reports, writer sheets.ReportWriter) *ReportSyncWorker {
	return &ReportSyncWorker{
		reports: reports,
		writer:  writer,
		now:     time.Now,
	}
}

// LastExport returns the start time of the last successful export.
func (w *ReportSyncWorker) LastExport() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastExport
}

// HandleLedgerChanged processes a single ledger change message from AMQP.
func (w *ReportSyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	if msg == nil {
		return errors.New("nil ledger message")
	}

	if last := w.LastExport(); !last.IsZero() && msg.Timestamp.Before(last) {
		slog.DebugContext(ctx, "Ledger change already exported, skipping",
			"entity", msg.Entity,
			"id", msg.ID,
			"message_at", msg.Timestamp,
			"last_export", last)
		return nil
	}

	slog.InfoContext(ctx, "Processing ledger change",
		"entity", msg.Entity,
		"id", msg.ID,
		"op", msg.Op)
	return w.Export(ctx)
}

// Export rebuilds the report from the ledger and writes it out.
func (w *ReportSyncWorker) Export(ctx context.Context) error {
	if w.reports == nil || w.writer == nil {
		return errors.New("report worker not properly initialized")
	}

	started := w.now()
	w.reports.Invalidate()
	report, err := w.reports.Report(ctx)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := w.writer.WriteReport(ctx, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	w.mu.Lock()
	if started.After(w.lastExport) {
		w.lastExport = started
	}
	w.mu.Unlock()

	slog.InfoContext(ctx, "Report exported",
		"as_of", report.AsOf.String(),
		"contracts", len(report.Contracts),
		"duration", w.now().Sub(started))
	return nil
}

// StartupSync exports once at startup, to recover from messages missed
// while the worker was down.
func (w *ReportSyncWorker) StartupSync(ctx context.Context) error {
	if err := w.Export(ctx); err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	return nil
}
