package provider

import (
	"context"
	"time"
)

// Row is one raw daily bar as returned by the provider: a calendar date plus
// the untouched column cells. Cells stay as decoded JSON values (numbers,
// nulls, or single-element column slices) until normalization.
type Row struct {
	Date   time.Time
	Open   any
	High   any
	Low    any
	Close  any
	Volume any
}

// Fetcher fetches daily bars for one symbol over an inclusive date range.
// A (nil, nil) return means the provider had no data for the symbol/range,
// which is not an error. A non-nil error means the fetch itself failed.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]Row, error)
	Name() string
}

// DefaultRange returns the default fetch window: the last 30 days ending today.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -30), now
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Rows map[string][]Row
	Errs map[string]error
	// Calls records the symbols fetched, in order.
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, symbol string, _, _ time.Time) ([]Row, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	return m.Rows[symbol], nil
}
