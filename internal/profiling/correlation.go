package profiling

import (
	"math"

	"goeda/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a square Pearson matrix over numeric columns. Cells are
// nil where fewer than two complete pairs exist or a side is constant.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// Correlation computes pairwise Pearson coefficients, using for each pair only
// the rows where both columns are present.
func Correlation(frame *dataset.Frame) CorrelationMatrix {
	var cols []*dataset.Column
	for _, col := range frame.Columns {
		if col.Kind() == dataset.KindNumeric {
			cols = append(cols, col)
		}
	}

	m := CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]*float64, len(cols)),
	}
	for i, col := range cols {
		m.Columns[i] = col.Name
		m.Values[i] = make([]*float64, len(cols))
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwisePearson(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwisePearson(a, b *dataset.Column) *float64 {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		x, okX := a.Float(i)
		y, okY := b.Float(i)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return nil
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	// rounding can push |r| a hair past 1
	r = math.Max(-1, math.Min(1, r))
	return &r
}
