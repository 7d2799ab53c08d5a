package profiling

import (
	"math"
	"sort"

	"goeda/domain/dataset"

	"github.com/montanaflynn/stats"
)

// NumericSummary is one column of a describe() table. Pointer fields are nil
// when the statistic is undefined for the column.
type NumericSummary struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Q50    *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// DescribeRows are the row labels of the describe table in display order.
var DescribeRows = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Cell returns the statistic for a describe row label.
func (s NumericSummary) Cell(label string) *float64 {
	switch label {
	case "count":
		c := float64(s.Count)
		return &c
	case "mean":
		return s.Mean
	case "std":
		return s.Std
	case "min":
		return s.Min
	case "25%":
		return s.Q25
	case "50%":
		return s.Q50
	case "75%":
		return s.Q75
	case "max":
		return s.Max
	}
	return nil
}

// Describe summarises every numeric column of the frame.
func Describe(frame *dataset.Frame) []NumericSummary {
	var out []NumericSummary
	for _, col := range frame.Columns {
		if col.Kind() != dataset.KindNumeric {
			continue
		}
		out = append(out, DescribeColumn(col.Name, col.Floats()))
	}
	return out
}

// DescribeColumn computes count, mean, sample standard deviation, extremes and
// quartiles of data.
func DescribeColumn(name string, data []float64) NumericSummary {
	summary := NumericSummary{Column: name, Count: len(data)}
	if len(data) == 0 {
		return summary
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	if mean, err := stats.Mean(sorted); err == nil {
		summary.Mean = ptr(mean)
	}
	if len(sorted) > 1 {
		if std, err := stats.StandardDeviationSample(sorted); err == nil {
			summary.Std = ptr(std)
		}
	}
	summary.Min = ptr(sorted[0])
	summary.Max = ptr(sorted[len(sorted)-1])
	summary.Q25 = ptr(Quantile(sorted, 0.25))
	summary.Q50 = ptr(Quantile(sorted, 0.50))
	summary.Q75 = ptr(Quantile(sorted, 0.75))
	return summary
}

// Quantile returns the p-quantile of already sorted data, interpolating
// linearly between the two closest ranks: position (n-1)*p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= n || frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func ptr(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
