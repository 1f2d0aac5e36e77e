// Package store defines the backing-store boundary the ingestion pipeline
// writes through, plus its Postgres and in-memory implementations.
package store

import (
	"context"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

// Gateway is the abstract backing-store collaborator. The pipeline only ever
// talks to the store through this interface, so tests and local runs can
// substitute the in-memory implementation. Gateway calls are the pipeline's
// only blocking points; everything else is pure in-memory computation.
type Gateway interface {
	// Connected reports store reachability; a non-nil error means the
	// pipeline must not attempt anything else.
	Connected(ctx context.Context) error
	TableExists(ctx context.Context, name string) (bool, error)
	// GetSchema fetches the authoritative column list of a destination
	// table. The pipeline never creates or alters tables.
	GetSchema(ctx context.Context, name string) (domain.TableSchema, error)
	// DeleteAll purges every row of the table.
	DeleteAll(ctx context.Context, name string) error
	// InsertBatch writes one chunk of records and returns how many rows the
	// store accepted.
	InsertBatch(ctx context.Context, name string, columns []string, records []domain.Record) (int, error)
	CountRows(ctx context.Context, name string) (int64, error)
	ListTables(ctx context.Context) ([]string, error)
}
