package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// PriceRecord is one daily OHLCV bar for a symbol. The pair (Symbol, Date)
// identifies the record; a later write for the same pair replaces all field
// values. Nil pointers mean the provider had no usable value for that field.
type PriceRecord struct {
	Symbol string
	Date   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MarshalJSON renders the date as YYYY-MM-DD and absent fields as null.
func (r PriceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol string   `json:"symbol"`
		Date   string   `json:"date"`
		Open   *float64 `json:"open"`
		High   *float64 `json:"high"`
		Low    *float64 `json:"low"`
		Close  *float64 `json:"close"`
		Volume *int64   `json:"volume"`
	}{
		Symbol: r.Symbol,
		Date:   r.Date.Format(DateLayout),
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
	})
}
