// Package ingest runs the fetch-normalize-upsert pipeline over symbol lists.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"PricePulse/internal/model"
	"PricePulse/internal/normalize"
	"PricePulse/internal/provider"
	"PricePulse/internal/store"
)

// Runner fans symbols out to fetch workers and commits each symbol's batch
// atomically. One symbol's failure never aborts the others.
type Runner struct {
	Fetcher provider.Fetcher
	Store   store.Store
	Workers int
}

// NewRunner creates a Runner with a bounded worker pool. workers <= 1
// reproduces strictly sequential fetching.
func NewRunner(fetcher provider.Fetcher, st store.Store, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{Fetcher: fetcher, Store: st, Workers: workers}
}

// Report summarizes one pipeline run.
type Report struct {
	Stored  []string          // symbols whose batch committed
	Skipped []string          // symbols the provider had no data for
	Failed  map[string]string // symbol -> failure reason
	Rows    int               // total rows committed
}

// Summary renders the report as a one-line status message.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d symbols stored (%d rows), %d without data, %d failed",
		len(r.Stored), r.Rows, len(r.Skipped), len(r.Failed))
}

type symbolResult struct {
	symbol string
	rows   int
	noData bool
	err    error
}

// Run fetches and stores daily bars for every symbol over [start, end].
func (r *Runner) Run(ctx context.Context, symbols []string, start, end time.Time) *Report {
	tasks := make(chan string)
	results := make(chan symbolResult)

	var wg sync.WaitGroup
	for i := 0; i < r.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range tasks {
				results <- r.runSymbol(ctx, symbol, start, end)
			}
		}()
	}
	go func() {
		for _, symbol := range symbols {
			tasks <- symbol
		}
		close(tasks)
		wg.Wait()
		close(results)
	}()

	report := &Report{Failed: make(map[string]string)}
	for res := range results {
		switch {
		case res.err != nil:
			log.Printf("[ERROR] %s: %v", res.symbol, res.err)
			report.Failed[res.symbol] = res.err.Error()
		case res.noData:
			log.Printf("[INFO] no data for %s", res.symbol)
			report.Skipped = append(report.Skipped, res.symbol)
		default:
			log.Printf("[INFO] stored %d rows for %s", res.rows, res.symbol)
			report.Stored = append(report.Stored, res.symbol)
			report.Rows += res.rows
		}
	}
	sort.Strings(report.Stored)
	sort.Strings(report.Skipped)
	return report
}

// RunSymbol fetches and stores a single symbol.
func (r *Runner) RunSymbol(ctx context.Context, symbol string, start, end time.Time) *Report {
	return r.Run(ctx, []string{symbol}, start, end)
}

func (r *Runner) runSymbol(ctx context.Context, symbol string, start, end time.Time) symbolResult {
	log.Printf("[INFO] fetching data for %s", symbol)

	rows, err := r.Fetcher.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return symbolResult{symbol: symbol, err: fmt.Errorf("fetch: %w", err)}
	}
	if len(rows) == 0 {
		return symbolResult{symbol: symbol, noData: true}
	}

	records := make([]model.PriceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.PriceRecord{
			Symbol: symbol,
			Date:   model.Day(row.Date),
			Open:   normalize.Scalar(row.Open),
			High:   normalize.Scalar(row.High),
			Low:    normalize.Scalar(row.Low),
			Close:  normalize.Scalar(row.Close),
			Volume: normalize.Volume(row.Volume),
		})
	}
	if err := r.Store.UpsertBatch(ctx, records); err != nil {
		return symbolResult{symbol: symbol, err: fmt.Errorf("store: %w", err)}
	}
	return symbolResult{symbol: symbol, rows: len(records)}
}
