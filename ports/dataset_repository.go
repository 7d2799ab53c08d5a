package ports

import (
	"context"

	"goeda/domain/core"
	"goeda/domain/dataset"
)

// DatasetRepository defines the interface for dataset record storage
type DatasetRepository interface {
	Create(ctx context.Context, rec *dataset.Record) error
	GetByID(ctx context.Context, id core.ID) (*dataset.Record, error)
	// GetByHash returns the most recent record with the given content hash.
	GetByHash(ctx context.Context, hash core.Hash) (*dataset.Record, error)
	// List returns the most recent uploads first.
	List(ctx context.Context, limit int) ([]*dataset.Record, error)
}
