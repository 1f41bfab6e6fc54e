// Package store defines the answer store interface and its CSV implementation.
package store

import (
	"context"

	"github.com/okian/atsr/internal/domain/model"
)

// Store provides append-only write and full-table read access to the
// persisted evaluation records.
type Store interface {
	// Append writes a batch of records atomically with respect to this
	// process: the whole batch goes out under one file open and flush.
	Append(ctx context.Context, records []model.Record) error

	// LoadAll returns every persisted record. A store that does not exist
	// yet yields an empty result, not an error.
	LoadAll(ctx context.Context) ([]model.Record, error)

	// Count returns the number of persisted records.
	Count(ctx context.Context) (int, error)
}
