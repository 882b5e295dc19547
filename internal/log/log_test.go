package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Component: component, Handler: NewHandler(buf, "json", slog.LevelDebug)})
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("decode %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestWithComponentReplacesTag(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, ComponentHTTP).With(FieldRequestID, "r-1").WithComponent(ComponentBackup)

	logger.Info("hello")

	if n := strings.Count(buf.String(), `"component"`); n != 1 {
		t.Errorf("component appears %d times in %s", n, buf.String())
	}
	entry := lastEntry(t, &buf)
	if entry[FieldComponent] != ComponentBackup {
		t.Errorf("component = %v", entry[FieldComponent])
	}
	if entry[FieldRequestID] != "r-1" {
		t.Errorf("request id lost across WithComponent: %v", entry[FieldRequestID])
	}
	if logger.Component() != ComponentBackup {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestMiddlewareAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := jsonLogger(&buf, ComponentHTTP)

	handler := Middleware(base)(RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Request-ID")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LedgerWrite(r.Context(), OpCreate, "contract", "c-1")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/contracts", nil)
	req.Header.Set("X-Request-ID", "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := lastEntry(t, &buf)
	want := map[string]any{
		FieldRequestID: "abc",
		FieldComponent: ComponentLedger,
		FieldOperation: OpCreate,
		FieldEntity:    "contract",
		FieldEntityID:  "c-1",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Logger == nil {
		t.Fatal("FromContext returned no logger")
	}
}

func TestFieldsSkipEmptyValues(t *testing.T) {
	f := NewFields().
		WithError(nil).
		WithEntity("loan", "").
		WithHTTPRequest("GET", "/api/report", "", "", "")

	for _, k := range []string{FieldError, FieldEntityID, FieldQuery, FieldUserAgent, FieldReferer} {
		if _, ok := f[k]; ok {
			t.Errorf("%s set for an empty value", k)
		}
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Errorf("ToSlice length = %d for %d fields", len(f.ToSlice()), len(f))
	}
}
