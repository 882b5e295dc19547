package http

import (
	"bytes"
	"fmt"
	"net/http"

	"kharcha/internal/backup"
	"kharcha/internal/log"
)

// handleReport renders the full report. ?lang= overrides the configured language.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
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
	NewJSONResponse().Data(reportView(report, lang)).Write(w)
}

// handleExportBackup streams the whole ledger as a download. The document is
// built in memory first so a read failure still gets a JSON error.
func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	now := s.clock()
	var buf bytes.Buffer
	if err := backup.Export(r.Context(), s.store, &buf, now); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="kharcha-backup-%s.json"`, now.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	log.FromContext(r.Context()).WithComponent(log.ComponentBackup).InfoContext(r.Context(), "Backup exported",
		append(log.NewFields().WithOperation(log.OpExport).ToSlice(), "bytes", buf.Len())...)
}

// handleImportBackup restores the collections present in the uploaded
// document and answers with what was restored.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.maxBackup)
	res, err := backup.Import(r.Context(), s.store, body)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	s.ledger.Restored(r.Context())

	log.FromContext(r.Context()).WithComponent(log.ComponentBackup).InfoContext(r.Context(), "Backup restored",
		append(log.NewFields().WithOperation(log.OpImport).ToSlice(),
			"contracts", res.Contracts, "loans", res.Loans, "settings", res.Settings)...)
	NewJSONResponse().Data(res).Write(w)
}
