package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kharcha/internal/core"
)

// errBadRequest marks request bodies and parameters that could not be read.
var errBadRequest = errors.New("bad request")

const defaultMaxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON value from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: content type %q, want application/json", errBadRequest, ct)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: body larger than %d bytes", errBadRequest, tooLarge.Limit)
		case errors.Is(err, core.ErrInvalidDate):
			// A malformed date is a validation problem, not a syntax one.
			return err
		}
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", errBadRequest)
	}
	return nil
}

// pathID returns the {id} wildcard, rejecting blank ids.
func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", fmt.Errorf("%w: missing id", errBadRequest)
	}
	return id, nil
}

// parseLanguage reads ?lang=, falling back to def. An unknown value is an error.
func parseLanguage(r *http.Request, def core.Language) (core.Language, error) {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang")))
	if v == "" {
		return def, nil
	}
	lang := core.Language(v)
	if err := lang.Validate(); err != nil {
		return "", err
	}
	return lang, nil
}

// sanitizeInput trims s and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
