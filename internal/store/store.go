// Package store persists daily price records keyed by (symbol, date).
package store

import (
	"context"
	"time"

	"PricePulse/internal/model"
)

// Store is the persistence contract for price records. The (symbol, date)
// pair is unique; both write paths replace all field values on conflict.
type Store interface {
	// Migrate creates the schema if it does not exist.
	Migrate() error
	// UpsertBatch writes records by blind replace-by-key. The whole batch
	// commits or rolls back as a unit.
	UpsertBatch(ctx context.Context, records []model.PriceRecord) error
	// MergeBatch writes records by read-modify-write: update the existing
	// row if the key exists, insert otherwise. Same final state as
	// UpsertBatch, same atomicity.
	MergeBatch(ctx context.Context, records []model.PriceRecord) error
	// Query returns records for symbol ordered by date ascending. start and
	// end are optional inclusive bounds, applied independently. No matches
	// is an empty result, not an error.
	Query(ctx context.Context, symbol string, start, end *time.Time) ([]model.PriceRecord, error)
	// Symbols returns the distinct stored symbols, sorted.
	Symbols(ctx context.Context) ([]string, error)
	Close() error
}
