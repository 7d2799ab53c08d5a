package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"
	"goeda/internal/logging"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config ReaderConfig
	nulls  map[string]bool
	logger zerolog.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig) *DataReader {
	nulls := make(map[string]bool, len(config.NullMarkers))
	for _, m := range config.NullMarkers {
		nulls[m] = true
	}
	return &DataReader{
		config: config,
		nulls:  nulls,
		logger: logging.WithComponent("excel"),
	}
}

// ReadFile reads a spreadsheet from disk.
func (r *DataReader) ReadFile(path string) (*dataset.RawTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound(fmt.Sprintf("file %s", path))
		}
		return nil, apperrors.Wrapf(err, "failed to open %s", path)
	}
	return r.Read(path, bytes.NewReader(content))
}

// Read parses src using the format implied by name's extension.
func (r *DataReader) Read(name string, src io.Reader) (*dataset.RawTable, error) {
	format, ok := dataset.FormatFromFilename(name)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported file type for %q: only .csv and .xlsx are accepted", name))
	}

	start := time.Now()
	var (
		table *dataset.RawTable
		err   error
	)
	switch format {
	case dataset.FormatCSV:
		table, err = r.readCSV(src)
	case dataset.FormatXLSX:
		table, err = r.readExcel(src)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("file", name).
		Int("columns", len(table.Headers)).
		Int("rows", len(table.Rows)).
		Int("skipped", table.SkippedRows).
		Dur("elapsed", time.Since(start)).
		Msg("spreadsheet read")
	return table, nil
}

// readCSV reads comma separated text. Lines with more fields than the header are
// skipped; shorter lines are padded with missing cells.
func (r *DataReader) readCSV(src io.Reader) (*dataset.RawTable, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.InvalidInput("no columns to parse from file")
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read CSV header: %w", err))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &dataset.RawTable{Headers: normalizeHeaders(header)}
	width := len(table.Headers)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				table.SkippedRows++
				continue
			}
			return nil, apperrors.Wrap(err, "failed to read CSV file")
		}
		if len(record) > width {
			table.SkippedRows++
			continue
		}
		table.Rows = append(table.Rows, r.normalizeRow(record, width))
		if r.config.MaxRows > 0 && len(table.Rows) >= r.config.MaxRows {
			break
		}
	}

	return table, nil
}

// readExcel reads the configured worksheet, or the first one in workbook order.
func (r *DataReader) readExcel(src io.Reader) (*dataset.RawTable, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.InvalidInput("workbook has no worksheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	restoreNumbers(f, sheet, rows, raw)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, apperrors.InvalidInput("no columns to parse from file")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	header := make([]string, width)
	copy(header, rows[0])

	table := &dataset.RawTable{Headers: normalizeHeaders(header), Sheet: sheet}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, r.normalizeRow(row, width))
		if r.config.MaxRows > 0 && len(table.Rows) >= r.config.MaxRows {
			break
		}
	}
	return table, nil
}

// normalizeRow trims cells, maps null markers to "" and pads to width.
func (r *DataReader) normalizeRow(record []string, width int) []string {
	row := make([]string, width)
	for j := 0; j < width && j < len(record); j++ {
		cell := strings.TrimSpace(record[j])
		if r.nulls[cell] {
			cell = ""
		}
		row[j] = cell
	}
	return row
}

// normalizeHeaders trims names, names blank headers "Unnamed: i" and suffixes
// duplicates with ".1", ".2", ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			candidate := fmt.Sprintf("%s.%d", name, n)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s.%d", name, n)
			}
			seen[name] = n + 1
			name = candidate
		}
		seen[name]++
		headers[i] = name
	}
	return headers
}
