package http

import (
	"net/http"

	"kharcha/internal/amqp"
	"kharcha/internal/backup"
	"kharcha/internal/log"
)

// SettingsResponse is the stored settings plus whether the app is locked.
type SettingsResponse struct {
	backup.SettingsRecord
	PINSet bool `json:"pinSet"`
}

func (s *Server) settingsResponse(r *http.Request) (SettingsResponse, error) {
	settings, err := s.ledger.Settings(r.Context())
	if err != nil {
		return SettingsResponse{}, err
	}
	set, err := s.pins.IsSet(r.Context())
	if err != nil {
		return SettingsResponse{}, err
	}
	return SettingsResponse{SettingsRecord: backup.FromSettings(settings), PINSet: set}, nil
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.settingsResponse(r)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var rec backup.SettingsRecord
	if err := decodeJSON(w, r, s.maxBody, &rec); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	settings, err := rec.ToCore()
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if _, err := s.ledger.UpdateSettings(r.Context(), settings); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logWrite(r, log.OpUpdate, amqp.EntitySettings, "")

	resp, err := s.settingsResponse(r)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(resp).Write(w)
}

// PINRequest carries the PIN to set, check or clear. CurrentPIN is only
// read when replacing an existing PIN.
type PINRequest struct {
	PIN        string `json:"pin"`
	CurrentPIN string `json:"currentPin,omitempty"`
}

func (s *Server) handleSetPIN(w http.ResponseWriter, r *http.Request) {
	var req PINRequest
	if err := decodeJSON(w, r, s.maxBody, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.pins.Set(r.Context(), req.PIN, req.CurrentPIN); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleVerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req PINRequest
	if err := decodeJSON(w, r, s.maxBody, &req); err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	if err := s.pins.Verify(r.Context(), req.PIN); err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	NewJSONResponse().Data(map[string]bool{"valid": true}).Write(w)
}

func (s *Server) handleClearPIN(w http.ResponseWriter, r *http.Request) {
	var req PINRequest
	if err := decodeJSON(w, r, s.maxBody, &req); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.pins.Clear(r.Context(), req.PIN); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
