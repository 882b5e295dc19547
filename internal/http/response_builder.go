package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kharcha/internal/backup"
	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/ports"
	"kharcha/internal/services"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the response. A 204 has no body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.data)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse creates an error response with the given status.
func ErrorResponse(r *http.Request, statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(ErrorBody{Error: message, RequestID: trace.GetRequestID(r.Context())})
}

func InternalServerError(r *http.Request) *JSONResponseBuilder {
	return ErrorResponse(r, http.StatusInternalServerError, "internal error")
}

var domainErrors = []error{
	services.ErrValidation,
	backup.ErrInvalidBackup,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrEmptyName,
	core.ErrInvalidEnum,
	core.ErrEndDateOnActive,
	core.ErrMissingReference,
	core.ErrReservedID,
}

// classify maps an error to a status and an error type for logging.
func classify(err error) (int, string) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, errBadRequest), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest, log.ErrorTypeBadRequest
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, services.ErrWrongPIN):
		return http.StatusUnauthorized, log.ErrorTypeAuth
	case errors.Is(err, services.ErrNoPIN):
		return http.StatusConflict, log.ErrorTypeAuth
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, log.ErrorTypeValidation
		}
	}
	return http.StatusInternalServerError, log.ErrorTypeInternal
}

// writeError logs err and answers with the mapped status. Internal errors
// are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := classify(err)
	fields := log.NewFields().
		WithOperation(op).
		WithErrorType(errType).
		WithError(err)
	logger := log.FromContext(r.Context())

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		InternalServerError(r).Write(w)
		return
	}
	logger.WarnContext(r.Context(), "Request rejected", fields.ToSlice()...)
	ErrorResponse(r, status, msg).Write(w)
}
