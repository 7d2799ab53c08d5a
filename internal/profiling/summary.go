package profiling

import (
	"fmt"
	"sort"

	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"
)

// NotAvailable is shown as the most frequent value of an entirely missing column.
const NotAvailable = "N/A"

// Overview is the first look at a frame: a preview plus its shape and dtypes.
type Overview struct {
	Columns []string              `json:"columns"`
	Head    [][]string            `json:"head"`
	Rows    int                   `json:"rows"`
	Cols    int                   `json:"cols"`
	Dtypes  []dataset.ColumnDtype `json:"dtypes"`
}

// PreviewRows is how many rows Overview shows.
const PreviewRows = 5

// BuildOverview returns the preview, shape and dtypes of frame.
func BuildOverview(frame *dataset.Frame) Overview {
	rows, cols := frame.Shape()
	return Overview{
		Columns: frame.ColumnNames(),
		Head:    frame.Head(PreviewRows),
		Rows:    rows,
		Cols:    cols,
		Dtypes:  frame.Dtypes(),
	}
}

// MissingCount is the number of missing cells in a column.
type MissingCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing_count"`
}

// MissingValues lists columns with at least one missing cell, most missing first.
func MissingValues(frame *dataset.Frame) []MissingCount {
	var out []MissingCount
	for _, col := range frame.Columns {
		if n := col.MissingCount(); n > 0 {
			out = append(out, MissingCount{Column: col.Name, Missing: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Missing > out[j].Missing
	})
	return out
}

// CategoricalStat summarises a categorical column.
type CategoricalStat struct {
	Column       string `json:"column"`
	Unique       int    `json:"unique_values"`
	MostFrequent string `json:"most_frequent_value"`
}

// CategoricalSummary reports distinct counts and modes of categorical columns.
func CategoricalSummary(frame *dataset.Frame) []CategoricalStat {
	var out []CategoricalStat
	for _, col := range frame.Columns {
		if col.Kind() != dataset.KindCategorical {
			continue
		}
		counts := countValues(col)
		out = append(out, CategoricalStat{
			Column:       col.Name,
			Unique:       len(counts),
			MostFrequent: mode(counts),
		})
	}
	return out
}

// ValueCount is one row of a value_counts table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts the non-missing values of a categorical column, most
// frequent first. Equal counts keep the order values first appear in.
func ValueCounts(frame *dataset.Frame, column string) ([]ValueCount, error) {
	col, ok := frame.Column(column)
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("column %q", column))
	}
	if col.Kind() != dataset.KindCategorical {
		return nil, apperrors.InvalidInput(fmt.Sprintf("column %q is not categorical", column))
	}

	counts := countValues(col)
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

// countValues tallies non-missing values in first-appearance order.
func countValues(col *dataset.Column) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for i := range col.Values {
		key, ok := col.Key(i)
		if !ok {
			continue
		}
		if pos, seen := index[key]; seen {
			counts[pos].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, ValueCount{Value: key, Count: 1})
	}
	return counts
}

// mode picks the most frequent value, breaking ties by the smallest value.
func mode(counts []ValueCount) string {
	if len(counts) == 0 {
		return NotAvailable
	}
	best := counts[0]
	for _, vc := range counts[1:] {
		if vc.Count > best.Count || (vc.Count == best.Count && vc.Value < best.Value) {
			best = vc
		}
	}
	return best.Value
}
