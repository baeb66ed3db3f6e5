package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"PricePulse/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL    string
	Client     *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. reqPerSec throttles
// outbound calls; maxRetries bounds the exponential-backoff retry on
// transient failures. baseURL and proxyURL may be empty.
func NewYahooFetcher(baseURL, proxyURL string, reqPerSec float64, maxRetries int) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	if reqPerSec <= 0 {
		reqPerSec = 2
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &YahooFetcher{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter:    rate.NewLimiter(rate.Limit(reqPerSec), 1),
		maxRetries: uint64(maxRetries),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// A multi-symbol-shaped response carries several result entries, each tagged
// with its own meta symbol.
type yahooChart struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooResult struct {
	Meta struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []any `json:"open"`
			High   []any `json:"high"`
			Low    []any `json:"low"`
			Close  []any `json:"close"`
			Volume []any `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchDaily fetches daily bars for symbol over [start, end], inclusive.
// It returns (nil, nil) when the provider has no data for the symbol/range.
func (f *YahooFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]Row, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		f.BaseURL, url.PathEscape(symbol),
		model.Day(start).Unix(), model.Day(end).AddDate(0, 0, 1).Unix())

	op := func() ([]Row, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return f.fetchChart(ctx, symbol, u)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.maxRetries), ctx)
	return backoff.RetryWithData(op, policy)
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, u string) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Unknown symbol: not an error, just nothing to store.
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body)))
	case decodeErr != nil:
		return nil, backoff.Permanent(fmt.Errorf("yahoo decode: %w", decodeErr))
	case chart.Chart.Error != nil:
		return nil, backoff.Permanent(fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description))
	}

	result, ok := sliceResult(chart.Chart.Result, symbol)
	if !ok || len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, nil
	}

	quote := result.Indicators.Quote[0]
	cell := func(col []any, i int) any {
		if i < len(col) {
			return col[i]
		}
		return nil
	}

	rows := make([]Row, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		rows = append(rows, Row{
			Date:   model.Day(time.Unix(ts, 0).UTC()),
			Open:   cell(quote.Open, i),
			High:   cell(quote.High, i),
			Low:    cell(quote.Low, i),
			Close:  cell(quote.Close, i),
			Volume: cell(quote.Volume, i),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

// sliceResult picks the requested symbol's sub-table out of the response.
// A single-entry result is the symbol's own table; a multi-entry result is
// matched by meta symbol, and a missing match means no data.
func sliceResult(results []yahooResult, symbol string) (*yahooResult, bool) {
	if len(results) == 0 {
		return nil, false
	}
	if len(results) == 1 {
		return &results[0], true
	}
	for i := range results {
		if strings.EqualFold(results[i].Meta.Symbol, symbol) {
			return &results[i], true
		}
	}
	return nil, false
}
