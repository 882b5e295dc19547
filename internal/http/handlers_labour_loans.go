package http

import (
	"encoding/json"
	"net/http"

	"kharcha/internal/amqp"
	"kharcha/internal/backup"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

// Labour

func (s *Server) handleListLabours(w http.ResponseWriter, r *http.Request) {
	labours, err := s.store.ListLabours(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	contractID := r.URL.Query().Get("contractId")
	out := make([]backup.LabourRecord, 0, len(labours))
	for _, l := range labours {
		if contractID != "" && l.ContractID != contractID {
			continue
		}
		out = append(out, backup.FromLabour(l))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) decodeLabour(w http.ResponseWriter, r *http.Request) (core.Labour, error) {
	var rec backup.LabourRecord
	if err := decodeJSON(w, r, s.maxBody, &rec); err != nil {
		return core.Labour{}, err
	}
	l, err := rec.Core()
	if err != nil {
		return core.Labour{}, err
	}
	l.Name = sanitizeInput(l.Name)
	l.Phone = sanitizeInput(l.Phone)
	return l, nil
}

func (s *Server) handleCreateLabour(w http.ResponseWriter, r *http.Request) {
	l, err := s.decodeLabour(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.ledger.CreateLabour(r.Context(), l)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logWrite(r, log.OpCreate, amqp.EntityLabour, saved.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(backup.FromLabour(saved)).Write(w)
}

func (s *Server) handleUpdateLabour(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	l, err := s.decodeLabour(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	l.ID = id
	saved, err := s.ledger.UpdateLabour(r.Context(), l)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logWrite(r, log.OpUpdate, amqp.EntityLabour, saved.ID)
	NewJSONResponse().Data(backup.FromLabour(saved)).Write(w)
}

func (s *Server) handleDeleteLabour(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteLabour(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	s.logWrite(r, log.OpDelete, amqp.EntityLabour, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleLabourSummary lists every worker's balance and the total still owed.
func (s *Server) handleLabourSummary(w http.ResponseWriter, r *http.Request) {
	lang, err := parseLanguage(r, s.lang)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	report, err := s.reports.Report(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(labourTotalsView(report, lang)).Write(w)
}

// Loans

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.store.ListLoans(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	out := make([]backup.LoanRecord, 0, len(loans))
	for _, l := range loans {
		out = append(out, backup.FromLoan(l))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) decodeLoan(w http.ResponseWriter, r *http.Request) (core.Loan, error) {
	var rec backup.LoanRecord
	if err := decodeJSON(w, r, s.maxBody, &rec); err != nil {
		return core.Loan{}, err
	}
	l, err := rec.Core()
	if err != nil {
		return core.Loan{}, err
	}
	l.LenderName = sanitizeInput(l.LenderName)
	return l, nil
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	l, err := s.decodeLoan(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.ledger.CreateLoan(r.Context(), l)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logWrite(r, log.OpCreate, amqp.EntityLoan, saved.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(backup.FromLoan(saved)).Write(w)
}

// handleUpdateLoan edits the loan terms. TotalPaid only moves through payments.
func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	l, err := s.decodeLoan(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	l.ID = id
	saved, err := s.ledger.UpdateLoan(r.Context(), l)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logWrite(r, log.OpUpdate, amqp.EntityLoan, saved.ID)
	NewJSONResponse().Data(backup.FromLoan(saved)).Write(w)
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteLoan(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	s.logWrite(r, log.OpDelete, amqp.EntityLoan, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleLoanSummary(w http.ResponseWriter, r *http.Request) {
	lang, err := parseLanguage(r, s.lang)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	report, err := s.reports.Report(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(loanTotalsView(report, lang)).Write(w)
}

func (s *Server) handleListLoanPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if _, err := s.store.GetLoan(r.Context(), id); err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	payments, err := s.reports.LoanPayments(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	out := make([]backup.LoanPaymentRecord, 0, len(payments))
	for _, p := range payments {
		out = append(out, backup.FromLoanPayment(p))
	}
	NewJSONResponse().Data(out).Write(w)
}

// PaymentRequest is the body of POST /api/loans/{id}/payments. A missing
// date means today.
type PaymentRequest struct {
	Amount json.Number `json:"amount"`
	Date   core.Date   `json:"date"`
	Notes  string      `json:"notes,omitempty"`
}

type PaymentResponse struct {
	Loan    backup.LoanRecord        `json:"loan"`
	Payment backup.LoanPaymentRecord `json:"payment"`
}

func (s *Server) handleAddLoanPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	var req PaymentRequest
	if err := decodeJSON(w, r, s.maxBody, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	loan, payment, err := s.ledger.AddLoanPayment(r.Context(), id, amount, req.Date, sanitizeInput(req.Notes))
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logWrite(r, log.OpCreate, amqp.EntityLoanPayment, payment.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(PaymentResponse{
		Loan:    backup.FromLoan(loan),
		Payment: backup.FromLoanPayment(payment),
	}).Write(w)
}
