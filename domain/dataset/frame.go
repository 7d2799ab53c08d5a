package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Dtype is the storage type of a column, named the way dataframe previews name them.
type Dtype string

const (
	DtypeInt64    Dtype = "int64"
	DtypeFloat64  Dtype = "float64"
	DtypeBool     Dtype = "bool"
	DtypeObject   Dtype = "object"
	DtypeDatetime Dtype = "datetime64[ns]"
)

// Kind groups dtypes by how they can be analysed and charted.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
)

// Kind maps a dtype to its analysis kind.
func (d Dtype) Kind() Kind {
	switch d {
	case DtypeInt64, DtypeFloat64:
		return KindNumeric
	case DtypeDatetime:
		return KindDatetime
	default:
		return KindCategorical
	}
}

// Value is a single cell. Which field is meaningful depends on the owning column's dtype.
type Value struct {
	Null bool
	Num  float64
	Str  string
	Bool bool
	Time time.Time

	// exact integer for int64 columns; Num holds the nearest float
	integer int64
	isInt   bool
}

// Null returns a missing value.
func Null() Value { return Value{Null: true} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Num: f} }

// Integer returns an int64 value that keeps full precision beyond 2^53.
func Integer(i int64) Value { return Value{Num: float64(i), integer: i, isInt: true} }

// Int64 returns the exact integer, falling back to truncating Num.
func (v Value) Int64() int64 {
	if v.isInt {
		return v.integer
	}
	return int64(v.Num)
}

// Text returns an object value.
func Text(s string) Value { return Value{Str: s} }

// Boolean returns a bool value.
func Boolean(b bool) Value { return Value{Bool: b} }

// Timestamp returns a datetime value.
func Timestamp(t time.Time) Value { return Value{Time: t} }

// Column is a named, typed vector of cells.
type Column struct {
	Name   string
	Dtype  Dtype
	Values []Value
}

// Kind returns the analysis kind of the column.
func (c *Column) Kind() Kind { return c.Dtype.Kind() }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// MissingCount counts null cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Null {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i.
func (c *Column) Float(i int) (float64, bool) {
	v := c.Values[i]
	if v.Null || c.Kind() != KindNumeric {
		return 0, false
	}
	return v.Num, true
}

// Floats returns all non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for i := range c.Values {
		if f, ok := c.Float(i); ok {
			out = append(out, f)
		}
	}
	return out
}

// Key returns a grouping key for row i. Missing cells have no key.
func (c *Column) Key(i int) (string, bool) {
	if c.Values[i].Null {
		return "", false
	}
	return c.Format(i), true
}

// Format renders row i the way a dataframe preview would.
func (c *Column) Format(i int) string {
	v := c.Values[i]
	if v.Null {
		switch c.Dtype {
		case DtypeDatetime:
			return "NaT"
		case DtypeObject:
			return "None"
		default:
			return "NaN"
		}
	}
	switch c.Dtype {
	case DtypeInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case DtypeFloat64:
		return FormatFloat(v.Num)
	case DtypeBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case DtypeDatetime:
		return FormatTime(v.Time)
	default:
		return v.Str
	}
}

// JSONValue returns a JSON friendly representation of row i (nil for missing).
func (c *Column) JSONValue(i int) any {
	v := c.Values[i]
	if v.Null {
		return nil
	}
	switch c.Dtype {
	case DtypeInt64:
		return v.Int64()
	case DtypeFloat64:
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			return FormatFloat(v.Num)
		}
		return v.Num
	case DtypeBool:
		return v.Bool
	case DtypeDatetime:
		return FormatTime(v.Time)
	default:
		return v.Str
	}
}

// FormatFloat renders floats with the shortest exact representation, keeping a
// trailing ".0" on integral values so they still read as floats.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatTime renders a timestamp, dropping the clock when it is midnight.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// Frame is an in-memory table of equally long columns.
type Frame struct {
	Name    string
	Columns []*Column
}

// NewFrame validates that all columns have the same length and unique names.
func NewFrame(name string, columns []*Column) (*Frame, error) {
	seen := make(map[string]bool, len(columns))
	rows := -1
	for _, c := range columns {
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), rows)
		}
	}
	return &Frame{Name: name, Columns: columns}, nil
}

// Shape returns the number of rows and columns.
func (f *Frame) Shape() (rows, cols int) {
	if len(f.Columns) == 0 {
		return 0, 0
	}
	return f.Columns[0].Len(), len(f.Columns)
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	rows, _ := f.Shape()
	return rows
}

// Column looks up a column by name.
func (f *Frame) Column(name string) (*Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns every column name in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnsOfKind returns the names of columns with the given kind, in frame order.
func (f *Frame) ColumnsOfKind(kind Kind) []string {
	var names []string
	for _, c := range f.Columns {
		if c.Kind() == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

// ColumnDtype pairs a column name with its dtype.
type ColumnDtype struct {
	Column string `json:"column"`
	Dtype  Dtype  `json:"dtype"`
}

// Dtypes lists the dtype of every column.
func (f *Frame) Dtypes() []ColumnDtype {
	out := make([]ColumnDtype, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = ColumnDtype{Column: c.Name, Dtype: c.Dtype}
	}
	return out
}

// Head returns up to n rows rendered as strings.
func (f *Frame) Head(n int) [][]string {
	rows := f.NumRows()
	if n > rows {
		n = rows
	}
	if n < 0 {
		n = 0
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(f.Columns))
		for j, c := range f.Columns {
			row[j] = c.Format(i)
		}
		out[i] = row
	}
	return out
}
