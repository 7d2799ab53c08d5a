package dataset

// RawTable is a spreadsheet read as text: a header row and equally wide data rows.
// Missing cells are empty strings.
type RawTable struct {
	Headers     []string
	Rows        [][]string
	SkippedRows int    // CSV lines dropped for having more fields than the header
	Sheet       string // worksheet the rows came from (xlsx only)
}

// Column returns the cells of column j.
func (t *RawTable) Column(j int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Columns transposes the rows into per-column cell slices.
func (t *RawTable) Columns() [][]string {
	out := make([][]string, len(t.Headers))
	for j := range t.Headers {
		out[j] = t.Column(j)
	}
	return out
}
