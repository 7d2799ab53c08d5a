package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goeda/domain/core"
	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"
	"goeda/ports"
)

// DatasetRepository keeps records in process memory.
type DatasetRepository struct {
	mu      sync.RWMutex
	records map[core.ID]*dataset.Record
}

var _ ports.DatasetRepository = (*DatasetRepository)(nil)

// NewDatasetRepository creates an empty repository.
func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{records: make(map[core.ID]*dataset.Record)}
}

func (r *DatasetRepository) Create(_ context.Context, rec *dataset.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.ID]; exists {
		return apperrors.ValidationError(fmt.Sprintf("dataset %s already exists", rec.ID))
	}
	stored := *rec
	r.records[rec.ID] = &stored
	return nil
}

func (r *DatasetRepository) GetByID(_ context.Context, id core.ID) (*dataset.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	out := *rec
	return &out, nil
}

func (r *DatasetRepository) GetByHash(ctx context.Context, hash core.Hash) (*dataset.Record, error) {
	for _, rec := range r.sorted() {
		if rec.ContentHash == hash {
			return rec, nil
		}
	}
	return nil, apperrors.NotFound(fmt.Sprintf("dataset with hash %s", hash.Short()))
}

func (r *DatasetRepository) List(_ context.Context, limit int) ([]*dataset.Record, error) {
	records := r.sorted()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// sorted returns copies of all records, newest first.
func (r *DatasetRepository) sorted() []*dataset.Record {
	r.mu.RLock()
	out := make([]*dataset.Record, 0, len(r.records))
	for _, rec := range r.records {
		c := *rec
		out = append(out, &c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
