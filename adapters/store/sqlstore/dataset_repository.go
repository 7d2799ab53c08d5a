package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"goeda/domain/core"
	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
)

const datasetColumns = `id, original_filename, content_hash, format, file_path, file_size,
	row_count, column_count, skipped_rows, created_at`

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository. Queries are written
// with ? placeholders and rebound for the connection's driver.
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new dataset record
func (r *datasetRepository) Create(ctx context.Context, rec *dataset.Record) error {
	query := r.db.Rebind(`INSERT INTO datasets (` + datasetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OriginalFilename, rec.ContentHash, rec.Format, rec.FilePath, rec.FileSize,
		rec.RowCount, rec.ColumnCount, rec.SkippedRows, rec.CreatedAt,
	)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to create dataset: %w", err))
	}
	return nil
}

// GetByID retrieves a dataset record by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.ID) (*dataset.Record, error) {
	query := r.db.Rebind(`SELECT ` + datasetColumns + ` FROM datasets WHERE id = ?`)

	var rec dataset.Record
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("dataset %s", id))
		}
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to get dataset: %w", err))
	}
	return &rec, nil
}

// GetByHash retrieves the newest record for the given content
func (r *datasetRepository) GetByHash(ctx context.Context, hash core.Hash) (*dataset.Record, error) {
	query := r.db.Rebind(`SELECT ` + datasetColumns + ` FROM datasets
		WHERE content_hash = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var rec dataset.Record
	if err := r.db.GetContext(ctx, &rec, query, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("dataset with hash %s", hash.Short()))
		}
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to get dataset by hash: %w", err))
	}
	return &rec, nil
}

// List retrieves the most recent dataset records
func (r *datasetRepository) List(ctx context.Context, limit int) ([]*dataset.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`SELECT ` + datasetColumns + ` FROM datasets
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var records []*dataset.Record
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to list datasets: %w", err))
	}
	return records, nil
}
