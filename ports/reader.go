package ports

import (
	"io"

	"goeda/domain/dataset"
)

// SpreadsheetReader parses CSV and Excel content into raw string tables.
type SpreadsheetReader interface {
	Read(name string, src io.Reader) (*dataset.RawTable, error)
}
