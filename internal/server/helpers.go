package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"PricePulse/internal/model"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteText writes a plain-text response.
func WriteText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintln(w, msg)
}

// RequireMethod rejects requests with the wrong method. Returns false when
// the request was rejected.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return false
	}
	return true
}

// parseDateBound validates one optional YYYY-MM-DD query value. The bound
// name keeps the error distinct per malformed input.
func parseDateBound(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q, expected YYYY-MM-DD", name, raw)
	}
	t = model.Day(t)
	return &t, nil
}
