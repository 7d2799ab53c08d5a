package dataset

import (
	"path/filepath"
	"strings"
	"time"

	"goeda/domain/core"
)

// Format is the on-disk format of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// MimeType returns the canonical MIME type of the format.
func (f Format) MimeType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Record is the persisted description of an uploaded dataset.
type Record struct {
	ID               core.ID   `json:"id" db:"id"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	ContentHash      core.Hash `json:"content_hash" db:"content_hash"`
	Format           Format    `json:"format" db:"format"`
	FilePath         string    `json:"-" db:"file_path"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	RowCount         int       `json:"row_count" db:"row_count"`
	ColumnCount      int       `json:"column_count" db:"column_count"`
	SkippedRows      int       `json:"skipped_rows" db:"skipped_rows"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// NewRecord creates a record with a fresh ID.
func NewRecord(filename string, hash core.Hash, format Format, size int64) *Record {
	return &Record{
		ID:               core.NewID(),
		OriginalFilename: filename,
		ContentHash:      hash,
		Format:           format,
		FileSize:         size,
		CreatedAt:        time.Now().UTC(),
	}
}

// NoticeLevel mirrors the message boxes shown by the dashboard.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user facing message produced while loading or analysing data.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Upload is a file received from a client before it is parsed.
type Upload struct {
	Filename string
	Content  []byte
}
