// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/ports"
	"kharcha/internal/services"
)

// Options tune the server. Zero values pick defaults.
type Options struct {
	Language       core.Language
	RateLimit      ratelimit.Config
	TrustedProxies []string
	// MaxBodyBytes caps ledger request bodies; backups get MaxBackupBytes.
	MaxBodyBytes   int64
	MaxBackupBytes int64
	// Logger is put in every request context; nil uses the default slog handler.
	Logger *log.Logger
	// PINs guards the app lock; nil builds one on the store.
	PINs *services.PINService
}

// Server is an http.Server wired to the ledger services.
type Server struct {
	*http.Server

	ledger  *services.LedgerService
	reports *services.ReportService
	pins    *services.PINService
	store   ports.Store
	clock   services.Clock
	lang    core.Language

	maxBody   int64
	maxBackup int64

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, ledger *services.LedgerService, reports *services.ReportService, store ports.Store, clock services.Clock, opts Options) (*Server, error) {
	if clock == nil {
		clock = services.SystemClock(nil)
	}
	if opts.Language.Validate() != nil {
		opts.Language = core.Kannada
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.MaxBackupBytes <= 0 {
		opts.MaxBackupBytes = 32 << 20
	}
	if opts.PINs == nil {
		opts.PINs = services.NewPINService(store)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Handler: slog.Default().Handler(), Component: log.ComponentHTTP})
	}

	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		ledger:    ledger,
		reports:   reports,
		pins:      opts.PINs,
		store:     store,
		clock:     clock,
		lang:      opts.Language,
		maxBody:   opts.MaxBodyBytes,
		maxBackup: opts.MaxBackupBytes,
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		detector:  detector,
		tracer:    trace.NewMiddleware(detector.ExtractClientIP),
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(r, http.StatusTooManyRequests, "rate limit exceeded, try again in a minute").Write(w)
	})(handler)
	handler = security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = log.Middleware(opts.Logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/contracts", s.handleListContracts)
	mux.HandleFunc("POST /api/contracts", s.handleCreateContract)
	mux.HandleFunc("PUT /api/contracts/{id}", s.handleUpdateContract)
	mux.HandleFunc("DELETE /api/contracts/{id}", s.handleDeleteContract)
	mux.HandleFunc("GET /api/contracts/{id}/summary", s.handleContractSummary)

	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleUpdateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/labours", s.handleListLabours)
	mux.HandleFunc("POST /api/labours", s.handleCreateLabour)
	mux.HandleFunc("GET /api/labours/summary", s.handleLabourSummary)
	mux.HandleFunc("PUT /api/labours/{id}", s.handleUpdateLabour)
	mux.HandleFunc("DELETE /api/labours/{id}", s.handleDeleteLabour)

	mux.HandleFunc("GET /api/loans", s.handleListLoans)
	mux.HandleFunc("POST /api/loans", s.handleCreateLoan)
	mux.HandleFunc("GET /api/loans/summary", s.handleLoanSummary)
	mux.HandleFunc("PUT /api/loans/{id}", s.handleUpdateLoan)
	mux.HandleFunc("DELETE /api/loans/{id}", s.handleDeleteLoan)
	mux.HandleFunc("GET /api/loans/{id}/payments", s.handleListLoanPayments)
	mux.HandleFunc("POST /api/loans/{id}/payments", s.handleAddLoanPayment)

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/backup", s.handleExportBackup)
	mux.HandleFunc("POST /api/backup", s.handleImportBackup)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	mux.HandleFunc("POST /api/pin", s.handleSetPIN)
	mux.HandleFunc("POST /api/pin/verify", s.handleVerifyPIN)
	mux.HandleFunc("DELETE /api/pin", s.handleClearPIN)
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call twice.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
