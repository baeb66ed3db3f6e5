package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PricePulse/internal/provider"
	"PricePulse/internal/symbols"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInitDB handles GET /initdb.
func (s *Server) handleInitDB(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if err := s.store.Migrate(); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("init database: %v", err))
		return
	}
	WriteText(w, http.StatusOK, "Database initialized.")
}

// handleFetchAll handles GET /fetch: extract symbols from the configured
// source document and run the pipeline over the default trailing window.
func (s *Server) handleFetchAll(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	syms, err := symbols.ExtractFile(s.cfg.Symbols.SourceFile, s.cfg.Symbols.MaxCount)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("read symbol source: %v", err))
		return
	}
	if len(syms) == 0 {
		WriteText(w, http.StatusOK, "No symbols found in source document.")
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.cfg.Fetch.WindowDays)
	report := s.runner.Run(r.Context(), syms, start, end)
	WriteText(w, http.StatusOK, "Data fetched and stored. "+report.Summary())
}

// handleFetchSymbol handles GET /fetch/{symbol} and /fetch/{symbol}/view.
// The redirect variant sends the caller on to the dashboard; the render
// variant serves the dashboard directly with a status line.
func (s *Server) handleFetchSymbol(w http.ResponseWriter, r *http.Request, rawSymbol string, render bool) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(rawSymbol))

	start, err := parseDateBound(r.URL.Query().Get("start"), "start")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateBound(r.URL.Query().Get("end"), "end")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, to := provider.DefaultRange(time.Now())
	if end != nil {
		to = *end
	}
	if start != nil {
		from = *start
	} else if end != nil {
		from = to.AddDate(0, 0, -s.cfg.Fetch.WindowDays)
	}

	report := s.runner.RunSymbol(r.Context(), symbol, from, to)

	if !render {
		http.Redirect(w, r, "/dashboard?symbol="+url.QueryEscape(symbol), http.StatusSeeOther)
		return
	}
	s.renderDashboard(w, r, symbol, start, end, "Fetched "+symbol+": "+report.Summary())
}

// handleData handles GET /data/{symbol}: stored rows as JSON.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := strings.ToUpper(strings.Trim(strings.TrimPrefix(r.URL.Path, "/data/"), "/"))
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	start, err := parseDateBound(r.URL.Query().Get("start"), "start")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateBound(r.URL.Query().Get("end"), "end")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.store.Query(r.Context(), symbol, start, end)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("query %s: %v", symbol, err))
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

// handleDashboard handles GET /dashboard with optional symbol and
// start_date/end_date filters.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))

	start, err := parseDateBound(r.URL.Query().Get("start_date"), "start_date")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateBound(r.URL.Query().Get("end_date"), "end_date")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.renderDashboard(w, r, symbol, start, end, "")
}
