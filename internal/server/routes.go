package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/initdb", s.handleInitDB)
	mux.HandleFunc("/fetch", s.handleFetchAll)
	mux.HandleFunc("/fetch/", s.routeFetchSymbol)
	mux.HandleFunc("/data/", s.handleData)
	mux.HandleFunc("/dashboard", s.handleDashboard)
}

// routeFetchSymbol dispatches /fetch/{symbol} (redirect variant) and
// /fetch/{symbol}/view (render variant).
func (s *Server) routeFetchSymbol(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/fetch/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleFetchSymbol(w, r, parts[0], false)
	case len(parts) == 2 && parts[1] == "view":
		s.handleFetchSymbol(w, r, parts[0], true)
	default:
		WriteError(w, http.StatusNotFound, "not found")
	}
}
