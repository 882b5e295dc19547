package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kharcha/internal/backup"
	"kharcha/internal/core"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/services"
	"kharcha/internal/storage/memory"
)

var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	store *memory.Store
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	store := memory.New()
	clock := services.FixedClock(testNow)
	ledger := services.NewLedgerService(store, nil, clock)
	reports := services.NewReportService(store, clock, 4, time.Minute)
	ledger.Watch(reports)

	if opts.RateLimit.RequestsPerMinute == 0 {
		opts.RateLimit = ratelimit.Config{RequestsPerMinute: 1000}
	}
	if opts.PINs == nil {
		opts.PINs = services.NewPINService(store).WithCost(bcrypt.MinCost)
	}
	srv, err := NewServer(":0", ledger, reports, store, clock, opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{Server: srv, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func (ts *testServer) createContract(t *testing.T, name string) backup.ContractRecord {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/contracts",
		`{"name":"`+name+`","clientName":"Ramesh","startDate":"2026-01-10","isActive":true}`)
	expectStatus(t, rec, http.StatusCreated)
	return decodeBody[backup.ContractRecord](t, rec)
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodGet, "/healthz", "")
	expectStatus(t, rec, http.StatusOK)
	if body := decodeBody[map[string]any](t, rec); body["status"] != "ok" {
		t.Errorf("health status = %v", body["status"])
	}

	rec = ts.do(t, http.MethodGet, "/readyz", "")
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody[map[string]any](t, rec)
	if body["status"] != "ready" {
		t.Errorf("ready status = %v", body["status"])
	}
	checks, _ := body["checks"].(map[string]any)
	if checks["ledger"] != "ok" {
		t.Errorf("ledger check = %v", checks["ledger"])
	}
}

func TestContractLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{})

	created := ts.createContract(t, "School building")
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", created.ID, err)
	}
	if created.CreatedAt == "" {
		t.Error("createdAt not set")
	}

	rec := ts.do(t, http.MethodPut, "/api/contracts/"+created.ID,
		`{"name":"School building","startDate":"2026-01-10","endDate":"2026-09-30","isActive":false}`)
	expectStatus(t, rec, http.StatusOK)
	updated := decodeBody[backup.ContractRecord](t, rec)
	if updated.IsActive || updated.EndDate != "2026-09-30" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Errorf("createdAt changed from %s to %s", created.CreatedAt, updated.CreatedAt)
	}

	ts.createContract(t, "Temple hall")
	rec = ts.do(t, http.MethodGet, "/api/contracts?active=true", "")
	expectStatus(t, rec, http.StatusOK)
	if active := decodeBody[[]backup.ContractRecord](t, rec); len(active) != 1 || active[0].Name != "Temple hall" {
		t.Errorf("active contracts = %+v", active)
	}

	rec = ts.do(t, http.MethodDelete, "/api/contracts/"+created.ID, "")
	expectStatus(t, rec, http.StatusNoContent)
	if rec.Body.Len() != 0 {
		t.Errorf("204 carried a body: %q", rec.Body.String())
	}

	rec = ts.do(t, http.MethodDelete, "/api/contracts/"+created.ID, "")
	expectStatus(t, rec, http.StatusNotFound)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t, Options{})
	contract := ts.createContract(t, "Villa")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/contracts", `{"name":`, http.StatusBadRequest},
		{"trailing data", http.MethodPost, "/api/contracts", `{"name":"a","startDate":"2026-01-01"} {}`, http.StatusBadRequest},
		{"wrong field type", http.MethodPost, "/api/contracts", `{"name":42}`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/contracts", "", http.StatusBadRequest},
		{"empty name", http.MethodPost, "/api/contracts", `{"name":"  ","startDate":"2026-01-01"}`, http.StatusUnprocessableEntity},
		{"bad date", http.MethodPost, "/api/contracts", `{"name":"a","startDate":"17/10/2026"}`, http.StatusUnprocessableEntity},
		{"end date on active", http.MethodPost, "/api/contracts", `{"name":"a","startDate":"2026-01-01","endDate":"2026-02-01","isActive":true}`, http.StatusUnprocessableEntity},
		{"unknown contract", http.MethodPut, "/api/contracts/" + uuid.NewString(), `{"name":"a","startDate":"2026-01-01"}`, http.StatusNotFound},
		{"income for missing contract", http.MethodPost, "/api/incomes", `{"date":"2026-02-01","amount":1000,"contractId":"nope","paymentMode":"cash"}`, http.StatusUnprocessableEntity},
		{"negative amount", http.MethodPost, "/api/incomes", `{"date":"2026-02-01","amount":-5,"contractId":"` + contract.ID + `","paymentMode":"cash"}`, http.StatusUnprocessableEntity},
		{"unknown payment mode", http.MethodPost, "/api/incomes", `{"date":"2026-02-01","amount":5,"contractId":"` + contract.ID + `","paymentMode":"cheque"}`, http.StatusUnprocessableEntity},
		{"bad createdAt", http.MethodPost, "/api/contracts", `{"name":"X","startDate":"2026-01-10","isActive":true,"createdAt":"yesterday"}`, http.StatusUnprocessableEntity},
		{"amount exponent", http.MethodPost, "/api/incomes", `{"date":"2026-02-01","amount":1e20000,"contractId":"` + contract.ID + `","paymentMode":"cash"}`, http.StatusUnprocessableEntity},
		{"amount too precise", http.MethodPost, "/api/incomes", `{"date":"2026-02-01","amount":10.123456,"contractId":"` + contract.ID + `","paymentMode":"cash"}`, http.StatusUnprocessableEntity},
		{"payment too large", http.MethodPost, "/api/loans/missing/payments", `{"amount":12345678901234567}`, http.StatusUnprocessableEntity},
		{"unknown language", http.MethodGet, "/api/report?lang=fr", "", http.StatusUnprocessableEntity},
		{"method not allowed", http.MethodPatch, "/api/contracts", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			expectStatus(t, rec, tt.want)
			if tt.want == http.StatusMethodNotAllowed {
				return
			}
			body := decodeBody[ErrorBody](t, rec)
			if body.Error == "" {
				t.Error("error message missing")
			}
			if body.RequestID == "" {
				t.Error("request id missing from error body")
			}
		})
	}
}

func TestWrongContentType(t *testing.T) {
	ts := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/contracts", strings.NewReader(`name=a`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestIncomeAndExpenseFlow(t *testing.T) {
	ts := newTestServer(t, Options{})
	villa := ts.createContract(t, "Villa")
	shop := ts.createContract(t, "Shop")

	for _, body := range []string{
		`{"date":"2026-02-01","amount":100000,"contractId":"` + villa.ID + `","paymentMode":"phonepe"}`,
		`{"date":"2026-03-01","amount":25000.50,"contractId":"` + shop.ID + `","paymentMode":"cash"}`,
	} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/incomes", body), http.StatusCreated)
	}
	for _, body := range []string{
		`{"date":"2026-02-05","amount":30000,"contractId":"` + villa.ID + `","expenseType":"material","paymentMode":"cash"}`,
		`{"date":"2026-02-06","amount":2000,"contractId":"personal","expenseType":"personal","paymentMode":"gpay"}`,
	} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/expenses", body), http.StatusCreated)
	}

	rec := ts.do(t, http.MethodGet, "/api/incomes?contractId="+villa.ID, "")
	expectStatus(t, rec, http.StatusOK)
	incomes := decodeBody[[]backup.IncomeRecord](t, rec)
	if len(incomes) != 1 || incomes[0].Amount.String() != "100000" {
		t.Fatalf("villa incomes = %+v", incomes)
	}

	rec = ts.do(t, http.MethodGet, "/api/expenses?contractId=personal", "")
	expectStatus(t, rec, http.StatusOK)
	if personal := decodeBody[[]backup.ExpenseRecord](t, rec); len(personal) != 1 || personal[0].ExpenseType != "personal" {
		t.Errorf("personal expenses = %+v", personal)
	}

	rec = ts.do(t, http.MethodGet, "/api/contracts/"+villa.ID+"/summary", "")
	expectStatus(t, rec, http.StatusOK)
	summary := decodeBody[ContractSummaryView](t, rec)
	if summary.ProfitLoss.Value != "70000.00" || !summary.IsProfit {
		t.Errorf("villa summary = %+v", summary)
	}
	if summary.ProfitLoss.Formatted != "₹70,000" {
		t.Errorf("formatted = %q", summary.ProfitLoss.Formatted)
	}

	rec = ts.do(t, http.MethodPut, "/api/incomes/"+incomes[0].ID,
		`{"date":"2026-02-01","amount":90000,"contractId":"`+villa.ID+`","paymentMode":"phonepe"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/contracts/"+villa.ID+"/summary", "")
	if summary := decodeBody[ContractSummaryView](t, rec); summary.ProfitLoss.Value != "60000.00" {
		t.Errorf("profit after update = %s, want 60000.00", summary.ProfitLoss.Value)
	}

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/incomes/"+incomes[0].ID, ""), http.StatusNoContent)
	expectStatus(t, ts.do(t, http.MethodDelete, "/api/incomes/"+incomes[0].ID, ""), http.StatusNotFound)
}

func TestLabourSummary(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodPost, "/api/labours",
		`{"name":"Manju","workType":"mason","labourType":"permanent","dailySalary":800,"daysWorked":10,"paidAmount":5000}`)
	expectStatus(t, rec, http.StatusCreated)

	rec = ts.do(t, http.MethodGet, "/api/labours/summary?lang=en", "")
	expectStatus(t, rec, http.StatusOK)
	summary := decodeBody[LabourTotalsView](t, rec)
	if len(summary.Labours) != 1 {
		t.Fatalf("labours = %+v", summary.Labours)
	}
	l := summary.Labours[0]
	if l.TotalSalary.Value != "8000.00" || l.Balance.Value != "3000.00" {
		t.Errorf("salary %s balance %s, want 8000.00 and 3000.00", l.TotalSalary.Value, l.Balance.Value)
	}
	if summary.TotalPending.Value != "3000.00" {
		t.Errorf("total pending = %s", summary.TotalPending.Value)
	}
	if l.WorkTypeLabel != core.Label("mason", core.English) {
		t.Errorf("work type label = %q", l.WorkTypeLabel)
	}
}

func TestLoanPayments(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodPost, "/api/loans",
		`{"loanType":"local","lenderName":"Shivappa","principalAmount":100000,"interestRate":2,"interestType":"monthly","startDate":"2026-01-01"}`)
	expectStatus(t, rec, http.StatusCreated)
	loan := decodeBody[backup.LoanRecord](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/payments", `{"amount":10000,"notes":"first"}`)
	expectStatus(t, rec, http.StatusCreated)
	paid := decodeBody[PaymentResponse](t, rec)
	if paid.Loan.TotalPaid.String() != "10000" {
		t.Errorf("total paid = %s", paid.Loan.TotalPaid)
	}
	if paid.Payment.Date.String() != "2026-10-17" {
		t.Errorf("payment date = %s, want today", paid.Payment.Date)
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"zero amount", "/api/loans/" + loan.ID + "/payments", `{"amount":0}`, http.StatusUnprocessableEntity},
		{"negative amount", "/api/loans/" + loan.ID + "/payments", `{"amount":-1}`, http.StatusUnprocessableEntity},
		{"unknown loan", "/api/loans/" + uuid.NewString() + "/payments", `{"amount":10}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, ts.do(t, http.MethodPost, tt.path, tt.body), tt.want)
		})
	}

	rec = ts.do(t, http.MethodGet, "/api/loans/"+loan.ID+"/payments", "")
	expectStatus(t, rec, http.StatusOK)
	if payments := decodeBody[[]backup.LoanPaymentRecord](t, rec); len(payments) != 1 || payments[0].Notes != "first" {
		t.Errorf("payments = %+v", payments)
	}
	expectStatus(t, ts.do(t, http.MethodGet, "/api/loans/"+uuid.NewString()+"/payments", ""), http.StatusNotFound)

	// Nine months at 2% on 1,00,000 is 18,000 of interest.
	rec = ts.do(t, http.MethodGet, "/api/loans/summary", "")
	expectStatus(t, rec, http.StatusOK)
	summary := decodeBody[LoanTotalsView](t, rec)
	if len(summary.Loans) != 1 {
		t.Fatalf("loans = %+v", summary.Loans)
	}
	if got := summary.Loans[0]; got.MonthsElapsed != 9 || got.TotalInterest.Value != "18000.00" || got.PendingBalance.Value != "108000.00" {
		t.Errorf("loan summary = %+v", got)
	}
}

func TestSummariesMarkSettledRows(t *testing.T) {
	ts := newTestServer(t, Options{})

	for _, body := range []string{
		`{"name":"Manju","workType":"mason","labourType":"permanent","dailySalary":800,"daysWorked":10,"paidAmount":5000}`,
		`{"name":"Ravi","workType":"helper","labourType":"temporary","dailySalary":500,"daysWorked":4,"paidAmount":2500}`,
	} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/labours", body), http.StatusCreated)
	}
	rec := ts.do(t, http.MethodGet, "/api/labours/summary?lang=en", "")
	expectStatus(t, rec, http.StatusOK)
	labours := decodeBody[LabourTotalsView](t, rec)
	if labours.PendingCount != 1 || labours.SettledCount != 1 {
		t.Fatalf("pending %d settled %d, want 1 and 1", labours.PendingCount, labours.SettledCount)
	}
	for _, l := range labours.Labours {
		wantSettled := l.Name == "Ravi"
		if l.Settled != wantSettled {
			t.Errorf("%s settled = %v, want %v", l.Name, l.Settled, wantSettled)
		}
		if wantSettled && l.StatusLabel != core.Label("paid", core.English) {
			t.Errorf("%s status label = %q", l.Name, l.StatusLabel)
		}
	}

	rec = ts.do(t, http.MethodPost, "/api/loans",
		`{"loanType":"bank","lenderName":"SBI","principalAmount":1000,"interestRate":0,"interestType":"yearly","startDate":"2026-01-01"}`)
	expectStatus(t, rec, http.StatusCreated)
	loan := decodeBody[backup.LoanRecord](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/loans/summary", "")
	expectStatus(t, rec, http.StatusOK)
	if loans := decodeBody[LoanTotalsView](t, rec); loans.ActiveCount != 1 || loans.Loans[0].Settled {
		t.Fatalf("fresh loan should be active: %+v", loans)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/payments", `{"amount":1000}`), http.StatusCreated)
	rec = ts.do(t, http.MethodGet, "/api/loans/summary", "")
	expectStatus(t, rec, http.StatusOK)
	if loans := decodeBody[LoanTotalsView](t, rec); loans.SettledCount != 1 || !loans.Loans[0].Settled {
		t.Errorf("repaid loan should be settled: %+v", loans)
	}
}

func TestReportLanguage(t *testing.T) {
	ts := newTestServer(t, Options{Language: core.Kannada})
	villa := ts.createContract(t, "Villa")
	expectStatus(t, ts.do(t, http.MethodPost, "/api/expenses",
		`{"date":"2026-02-05","amount":5000,"contractId":"`+villa.ID+`","expenseType":"material","paymentMode":"cash"}`), http.StatusCreated)

	tests := []struct {
		query string
		lang  core.Language
	}{
		{"", core.Kannada},
		{"?lang=en", core.English},
		{"?lang=KN", core.Kannada},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang)+tt.query, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/report"+tt.query, "")
			expectStatus(t, rec, http.StatusOK)
			report := decodeBody[ReportView](t, rec)
			if report.Language != tt.lang {
				t.Errorf("language = %s, want %s", report.Language, tt.lang)
			}
			if report.Title != core.Label("reports", tt.lang) {
				t.Errorf("title = %q", report.Title)
			}
			if report.IsProfit || report.ResultLabel != core.Label("loss", tt.lang) {
				t.Errorf("result = %v %q, want a loss", report.IsProfit, report.ResultLabel)
			}
			if report.Labours == nil || report.Loans == nil || report.Mismatches == nil {
				t.Error("empty sections must encode as arrays")
			}
			if len(report.Overview) != 6 {
				t.Errorf("overview has %d lines", len(report.Overview))
			}
		})
	}
}

func TestBackupRoundTrip(t *testing.T) {
	src := newTestServer(t, Options{})
	villa := src.createContract(t, "Villa")
	expectStatus(t, src.do(t, http.MethodPost, "/api/incomes",
		`{"date":"2026-02-01","amount":1000,"contractId":"`+villa.ID+`","paymentMode":"cash"}`), http.StatusCreated)

	rec := src.do(t, http.MethodGet, "/api/backup", "")
	expectStatus(t, rec, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "kharcha-backup-2026-10-17.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := rec.Body.String()

	dst := newTestServer(t, Options{})
	rec = dst.do(t, http.MethodPost, "/api/backup", exported)
	expectStatus(t, rec, http.StatusOK)
	res := decodeBody[backup.Result](t, rec)
	if res.Contracts != 1 || res.Incomes != 1 || !res.Settings {
		t.Errorf("import result = %+v", res)
	}

	rec = dst.do(t, http.MethodGet, "/api/contracts/"+villa.ID+"/summary", "")
	expectStatus(t, rec, http.StatusOK)
	if s := decodeBody[ContractSummaryView](t, rec); s.TotalIncome.Value != "1000.00" {
		t.Errorf("restored income = %s", s.TotalIncome.Value)
	}
}

func TestBackupImportRejectsBadDocuments(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.createContract(t, "Keep me")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{"contracts": x}`, http.StatusBadRequest},
		{"invalid record", `{"contracts":[{"id":"c1","name":"","startDate":"2026-01-01"}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, ts.do(t, http.MethodPost, "/api/backup", tt.body), tt.want)
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/contracts", "")
	if contracts := decodeBody[[]backup.ContractRecord](t, rec); len(contracts) != 1 {
		t.Errorf("failed import changed the ledger: %+v", contracts)
	}
}

func TestSettingsAndPIN(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodPut, "/api/settings", `{"language":"en","reminderEnabled":true}`)
	expectStatus(t, rec, http.StatusOK)
	settings := decodeBody[SettingsResponse](t, rec)
	if settings.Language != "en" || !settings.ReminderEnabled || settings.PINSet {
		t.Errorf("settings = %+v", settings)
	}
	expectStatus(t, ts.do(t, http.MethodPut, "/api/settings", `{"language":"de"}`), http.StatusUnprocessableEntity)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin/verify", `{"pin":"1234"}`), http.StatusConflict)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin", `{"pin":"12a4"}`), http.StatusUnprocessableEntity)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin", `{"pin":"1234"}`), http.StatusNoContent)

	rec = ts.do(t, http.MethodGet, "/api/settings", "")
	if s := decodeBody[SettingsResponse](t, rec); !s.PINSet {
		t.Error("pinSet = false after setting a PIN")
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin/verify", `{"pin":"1234"}`), http.StatusOK)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin/verify", `{"pin":"4321"}`), http.StatusUnauthorized)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin", `{"pin":"5678","currentPin":"0000"}`), http.StatusUnauthorized)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/pin", `{"pin":"5678","currentPin":"1234"}`), http.StatusNoContent)

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/pin", `{"pin":"1234"}`), http.StatusUnauthorized)
	expectStatus(t, ts.do(t, http.MethodDelete, "/api/pin", `{"pin":"5678"}`), http.StatusNoContent)

	hash, err := ts.store.PINHash(context.Background())
	if err != nil || hash != "" {
		t.Errorf("PIN hash after clear = %q, %v", hash, err)
	}
}

func TestResponseHeaders(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodGet, "/api/contracts", "")
	expectStatus(t, rec, http.StatusOK)
	if id := rec.Header().Get(trace.HeaderRequestID); id == "" {
		t.Error("response has no request id")
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty list body = %q, want []", body)
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(trace.HeaderRequestID, id)
	rec = httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(trace.HeaderRequestID); got != id {
		t.Errorf("request id = %q, want the incoming %q", got, id)
	}
}

func TestRateLimitRejectsWrites(t *testing.T) {
	ts := newTestServer(t, Options{RateLimit: ratelimit.Config{RequestsPerMinute: 2, WritesOnly: true}})

	body := `{"name":"a","startDate":"2026-01-01"}`
	expectStatus(t, ts.do(t, http.MethodPost, "/api/contracts", body), http.StatusCreated)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/contracts", body), http.StatusCreated)

	rec := ts.do(t, http.MethodPost, "/api/contracts", body)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if e := decodeBody[ErrorBody](t, rec); e.Error == "" {
		t.Error("429 without a JSON error")
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/api/contracts", ""), http.StatusOK)
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, Options{MaxBodyBytes: 64})
	body := `{"name":"` + strings.Repeat("x", 200) + `","startDate":"2026-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contracts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)
}
