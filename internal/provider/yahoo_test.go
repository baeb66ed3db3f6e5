package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartJSON(symbol string, ts []int64, closes []string) string {
	tsJSON := "["
	closesJSON := "["
	for i := range ts {
		if i > 0 {
			tsJSON += ","
			closesJSON += ","
		}
		tsJSON += fmt.Sprintf("%d", ts[i])
		closesJSON += closes[i]
	}
	tsJSON += "]"
	closesJSON += "]"
	return fmt.Sprintf(`{
		"meta": {"symbol": %q},
		"timestamp": %s,
		"indicators": {"quote": [{
			"open": %s, "high": %s, "low": %s, "close": %s,
			"volume": %s
		}]}
	}`, symbol, tsJSON, closesJSON, closesJSON, closesJSON, closesJSON, closesJSON)
}

func newTestFetcher(url string, retries int) *YahooFetcher {
	return NewYahooFetcher(url, "", 1000, retries)
}

func TestYahooFetchDaily_SingleSymbolShape(t *testing.T) {
	day := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		fmt.Fprintf(w, `{"chart":{"result":[%s],"error":null}}`, chartJSON("AAPL", []int64{day}, []string{"101.5"}))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 0)
	rows, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 101.5, rows[0].Close)
}

func TestYahooFetchDaily_MultiSymbolShapeSlicesRequested(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[%s,%s],"error":null}}`,
			chartJSON("MSFT", []int64{day}, []string{"390"}),
			chartJSON("AAPL", []int64{day}, []string{"185"}))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 0)
	rows, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(185), rows[0].Close)
}

func TestYahooFetchDaily_SymbolMissingFromMultiShapeIsNoData(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[%s,%s],"error":null}}`,
			chartJSON("MSFT", []int64{day}, []string{"390"}),
			chartJSON("GOOG", []int64{day}, []string{"140"}))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 0)
	rows, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestYahooFetchDaily_UnknownSymbolIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 0)
	rows, err := f.FetchDaily(context.Background(), "ZZZZZ", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestYahooFetchDaily_EmptyResultIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 0)
	rows, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestYahooFetchDaily_RetriesTransientFailure(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"chart":{"result":[%s],"error":null}}`, chartJSON("AAPL", []int64{day}, []string{"185"}))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 3)
	rows, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestYahooFetchDaily_ProviderErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"invalid range"}}}`)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 3)
	_, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	assert.Error(t, err)
}

func TestYahooFetchDaily_NullCellsPassThroughRaw(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[%s],"error":null}}`, chartJSON("AAPL", []int64{day}, []string{"null"}))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 0)
	rows, err := f.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Close)
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	start, end := DefaultRange(now)
	assert.Equal(t, now, end)
	assert.Equal(t, now.AddDate(0, 0, -30), start)
}
