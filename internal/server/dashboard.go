package server

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"PricePulse/internal/model"
)

type dashboardView struct {
	Symbol    string
	StartDate string
	EndDate   string
	Status    string
	Records   []model.PriceRecord
	Known     []string
}

// renderDashboard queries the store for the requested symbol (if any) and
// renders the filterable dashboard page. statusPrefix, when set, is shown
// ahead of the query status.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, symbol string, start, end *time.Time, statusPrefix string) {
	view := dashboardView{
		Symbol: symbol,
		Status: statusPrefix,
	}
	if start != nil {
		view.StartDate = start.Format(model.DateLayout)
	}
	if end != nil {
		view.EndDate = end.Format(model.DateLayout)
	}

	known, err := s.store.Symbols(r.Context())
	if err != nil {
		log.Printf("[WARN] list symbols: %v", err)
	}
	view.Known = known

	if symbol != "" {
		records, err := s.store.Query(r.Context(), symbol, start, end)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("query %s: %v", symbol, err))
			return
		}
		var status string
		if len(records) > 0 {
			view.Records = records
			first := records[0].Date.Format(model.DateLayout)
			last := records[len(records)-1].Date.Format(model.DateLayout)
			status = fmt.Sprintf("Showing data for %s from %s to %s.", symbol, first, last)
		} else {
			status = fmt.Sprintf("%s not in database.", symbol)
		}
		view.Status = strings.TrimSpace(view.Status + " " + status)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, view); err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
	}
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"price": func(v *float64) string {
		if v == nil {
			return "–"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
	"volume": func(v *int64) string {
		if v == nil {
			return "–"
		}
		return strconv.FormatInt(*v, 10)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<title>PricePulse Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-top: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th { background: #f0f0f0; }
td:first-child, th:first-child { text-align: left; }
.status { margin-top: 1em; color: #444; }
</style>
</head>
<body>
<h1>Daily Prices</h1>
<form method="get" action="/dashboard">
  <label>Symbol <input name="symbol" value="{{.Symbol}}" list="known-symbols"></label>
  <datalist id="known-symbols">
    {{range .Known}}<option value="{{.}}">{{end}}
  </datalist>
  <label>From <input name="start_date" value="{{.StartDate}}" placeholder="YYYY-MM-DD"></label>
  <label>To <input name="end_date" value="{{.EndDate}}" placeholder="YYYY-MM-DD"></label>
  <button type="submit">Filter</button>
</form>
{{if .Status}}<p class="status">{{.Status}}</p>{{end}}
{{if .Records}}
<table>
  <tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th></tr>
  {{range .Records}}
  <tr>
    <td>{{.Date.Format "2006-01-02"}}</td>
    <td>{{price .Open}}</td>
    <td>{{price .High}}</td>
    <td>{{price .Low}}</td>
    <td>{{price .Close}}</td>
    <td>{{volume .Volume}}</td>
  </tr>
  {{end}}
</table>
{{end}}
</body>
</html>
`))
