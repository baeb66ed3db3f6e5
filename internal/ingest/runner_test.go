package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PricePulse/internal/model"
	"PricePulse/internal/provider"
	"PricePulse/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func rawRow(date string, close any, volume any) provider.Row {
	return provider.Row{
		Date:   day(date),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: volume,
	}
}

func TestRun_StoresNormalizedRows(t *testing.T) {
	st := newTestStore(t)
	mock := &provider.MockFetcher{Rows: map[string][]provider.Row{
		"AAPL": {
			rawRow("2024-01-02", float64(185.5), float64(1000000)),
			rawRow("2024-01-03", []any{float64(186.25)}, float64(900000)),
		},
	}}

	r := NewRunner(mock, st, 1)
	report := r.Run(context.Background(), []string{"AAPL"}, day("2024-01-01"), day("2024-01-05"))

	assert.Equal(t, []string{"AAPL"}, report.Stored)
	assert.Equal(t, 2, report.Rows)
	assert.Empty(t, report.Failed)

	got, err := st.Query(context.Background(), "AAPL", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 185.5, *got[0].Close)
	// Single-element column wrapper reduces to its sole element.
	assert.Equal(t, 186.25, *got[1].Close)
	assert.Equal(t, int64(1000000), *got[0].Volume)
}

func TestRun_NormalizationGapsBecomeNulls(t *testing.T) {
	st := newTestStore(t)
	mock := &provider.MockFetcher{Rows: map[string][]provider.Row{
		"AAPL": {rawRow("2024-01-02", nil, true)},
	}}

	r := NewRunner(mock, st, 1)
	report := r.Run(context.Background(), []string{"AAPL"}, day("2024-01-01"), day("2024-01-05"))
	assert.Empty(t, report.Failed)

	got, err := st.Query(context.Background(), "AAPL", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Close)
	// Boolean volume is rejected, not coerced.
	assert.Nil(t, got[0].Volume)
}

func TestRun_FetchFailureIsolatedPerSymbol(t *testing.T) {
	st := newTestStore(t)
	mock := &provider.MockFetcher{
		Rows: map[string][]provider.Row{
			"AAA": {rawRow("2024-01-02", float64(10), float64(100))},
		},
		Errs: map[string]error{"BBB": errors.New("connection reset")},
	}

	r := NewRunner(mock, st, 1)
	report := r.Run(context.Background(), []string{"AAA", "BBB"}, day("2024-01-01"), day("2024-01-05"))

	assert.Equal(t, []string{"AAA"}, report.Stored)
	assert.Contains(t, report.Failed, "BBB")

	got, err := st.Query(context.Background(), "AAA", nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRun_StoreFailureIsolatedPerSymbol(t *testing.T) {
	st := newTestStore(t)
	mock := &provider.MockFetcher{Rows: map[string][]provider.Row{
		"AAA": {rawRow("2024-01-02", float64(10), float64(100))},
		"BBB": {rawRow("2024-01-02", float64(20), float64(200))},
	}}

	r := NewRunner(mock, &failingStore{Store: st, failSymbol: "BBB"}, 1)
	report := r.Run(context.Background(), []string{"AAA", "BBB"}, day("2024-01-01"), day("2024-01-05"))

	assert.Equal(t, []string{"AAA"}, report.Stored)
	assert.Contains(t, report.Failed, "BBB")

	got, err := st.Query(context.Background(), "BBB", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRun_NoDataSkipped(t *testing.T) {
	st := newTestStore(t)
	mock := &provider.MockFetcher{Rows: map[string][]provider.Row{}}

	r := NewRunner(mock, st, 1)
	report := r.Run(context.Background(), []string{"NODATA"}, day("2024-01-01"), day("2024-01-05"))

	assert.Equal(t, []string{"NODATA"}, report.Skipped)
	assert.Empty(t, report.Stored)
	assert.Empty(t, report.Failed)
}

func TestRun_ParallelWorkersCoverAllSymbols(t *testing.T) {
	st := newTestStore(t)
	rows := map[string][]provider.Row{}
	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"}
	for _, sym := range symbols {
		rows[sym] = []provider.Row{rawRow("2024-01-02", float64(1), float64(1))}
	}
	// MockFetcher.Calls is not synchronized; rely on the report instead.
	r := NewRunner(&parallelMock{rows: rows}, st, 4)
	report := r.Run(context.Background(), symbols, day("2024-01-01"), day("2024-01-05"))

	assert.Equal(t, symbols, report.Stored)
	assert.Equal(t, len(symbols), report.Rows)
}

func TestReport_Summary(t *testing.T) {
	report := &Report{
		Stored:  []string{"AAA"},
		Skipped: []string{"BBB", "CCC"},
		Failed:  map[string]string{"DDD": "boom"},
		Rows:    21,
	}
	assert.Equal(t, "1 symbols stored (21 rows), 2 without data, 1 failed", report.Summary())
}

type failingStore struct {
	store.Store
	failSymbol string
}

func (f *failingStore) UpsertBatch(ctx context.Context, records []model.PriceRecord) error {
	if len(records) > 0 && records[0].Symbol == f.failSymbol {
		return errors.New("disk full")
	}
	return f.Store.UpsertBatch(ctx, records)
}

type parallelMock struct {
	rows map[string][]provider.Row
}

func (p *parallelMock) Name() string { return "parallel-mock" }

func (p *parallelMock) FetchDaily(_ context.Context, symbol string, _, _ time.Time) ([]provider.Row, error) {
	return p.rows[symbol], nil
}
