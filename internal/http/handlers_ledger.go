package http

import (
	"net/http"
	"strings"

	"kharcha/internal/amqp"
	"kharcha/internal/backup"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

func (s *Server) logWrite(r *http.Request, op, entity, id string) {
	log.LedgerWrite(r.Context(), op, entity, id)
}

// Contracts

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.store.ListContracts(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	active := strings.TrimSpace(r.URL.Query().Get("active"))
	out := make([]backup.ContractRecord, 0, len(contracts))
	for _, c := range contracts {
		if active != "" && (active == "true") != c.IsActive {
			continue
		}
		out = append(out, backup.FromContract(c))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) decodeContract(w http.ResponseWriter, r *http.Request) (core.Contract, error) {
	var rec backup.ContractRecord
	if err := decodeJSON(w, r, s.maxBody, &rec); err != nil {
		return core.Contract{}, err
	}
	c, err := rec.Core()
	if err != nil {
		return core.Contract{}, err
	}
	c.Name = sanitizeInput(c.Name)
	c.ClientName = sanitizeInput(c.ClientName)
	return c, nil
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	c, err := s.decodeContract(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.ledger.CreateContract(r.Context(), c)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logWrite(r, log.OpCreate, amqp.EntityContract, saved.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(backup.FromContract(saved)).Write(w)
}

func (s *Server) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	c, err := s.decodeContract(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	c.ID = id
	saved, err := s.ledger.UpdateContract(r.Context(), c)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logWrite(r, log.OpUpdate, amqp.EntityContract, saved.ID)
	NewJSONResponse().Data(backup.FromContract(saved)).Write(w)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteContract(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	s.logWrite(r, log.OpDelete, amqp.EntityContract, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleContractSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	summary, err := s.reports.ContractSummary(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(contractSummaryView(summary)).Write(w)
}

// Incomes

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.store.ListIncomes(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	contractID := strings.TrimSpace(r.URL.Query().Get("contractId"))
	out := make([]backup.IncomeRecord, 0, len(incomes))
	for _, i := range incomes {
		if contractID != "" && i.ContractID != contractID {
			continue
		}
		out = append(out, backup.FromIncome(i))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) decodeIncome(w http.ResponseWriter, r *http.Request) (core.Income, error) {
	var rec backup.IncomeRecord
	if err := decodeJSON(w, r, s.maxBody, &rec); err != nil {
		return core.Income{}, err
	}
	i, err := rec.Core()
	if err != nil {
		return core.Income{}, err
	}
	i.Notes = sanitizeInput(i.Notes)
	return i, nil
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	i, err := s.decodeIncome(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.ledger.CreateIncome(r.Context(), i)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logWrite(r, log.OpCreate, amqp.EntityIncome, saved.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(backup.FromIncome(saved)).Write(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	i, err := s.decodeIncome(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	i.ID = id
	saved, err := s.ledger.UpdateIncome(r.Context(), i)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logWrite(r, log.OpUpdate, amqp.EntityIncome, saved.ID)
	NewJSONResponse().Data(backup.FromIncome(saved)).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteIncome(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	s.logWrite(r, log.OpDelete, amqp.EntityIncome, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// Expenses

// handleListExpenses filters by ?contractId= (use "personal" for living
// costs) and ?type=.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	q := r.URL.Query()
	scope := strings.TrimSpace(q.Get("contractId"))
	kind := core.ExpenseType(strings.TrimSpace(q.Get("type")))

	out := make([]backup.ExpenseRecord, 0, len(expenses))
	for _, e := range expenses {
		if scope != "" && e.Scope.Legacy() != scope {
			continue
		}
		if kind != "" && e.ExpenseType != kind {
			continue
		}
		out = append(out, backup.FromExpense(e))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) decodeExpense(w http.ResponseWriter, r *http.Request) (core.Expense, error) {
	var rec backup.ExpenseRecord
	if err := decodeJSON(w, r, s.maxBody, &rec); err != nil {
		return core.Expense{}, err
	}
	e, err := rec.Core()
	if err != nil {
		return core.Expense{}, err
	}
	e.Notes = sanitizeInput(e.Notes)
	return e, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.decodeExpense(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.ledger.CreateExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logWrite(r, log.OpCreate, amqp.EntityExpense, saved.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(backup.FromExpense(saved)).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	e, err := s.decodeExpense(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	e.ID = id
	saved, err := s.ledger.UpdateExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logWrite(r, log.OpUpdate, amqp.EntityExpense, saved.ID)
	NewJSONResponse().Data(backup.FromExpense(saved)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	s.logWrite(r, log.OpDelete, amqp.EntityExpense, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
