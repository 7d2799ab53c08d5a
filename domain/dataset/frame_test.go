package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := NewFrame("sample", []*Column{
		{Name: "id", Dtype: DtypeInt64, Values: []Value{Number(1), Number(2), Number(3)}},
		{Name: "score", Dtype: DtypeFloat64, Values: []Value{Number(1.5), Null(), Number(3)}},
		{Name: "city", Dtype: DtypeObject, Values: []Value{Text("Oslo"), Text("Rome"), Null()}},
		{Name: "active", Dtype: DtypeBool, Values: []Value{Boolean(true), Boolean(false), Boolean(true)}},
		{Name: "seen", Dtype: DtypeDatetime, Values: []Value{
			Timestamp(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
			Timestamp(time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC)),
			Null(),
		}},
	})
	require.NoError(t, err)
	return f
}

func TestFrameShapeAndKinds(t *testing.T) {
	f := sampleFrame(t)

	rows, cols := f.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 5, cols)

	assert.Equal(t, []string{"id", "score"}, f.ColumnsOfKind(KindNumeric))
	assert.Equal(t, []string{"city", "active"}, f.ColumnsOfKind(KindCategorical))
	assert.Equal(t, []string{"seen"}, f.ColumnsOfKind(KindDatetime))
}

func TestFrameHeadFormatting(t *testing.T) {
	f := sampleFrame(t)

	head := f.Head(5)
	require.Len(t, head, 3)
	assert.Equal(t, []string{"1", "1.5", "Oslo", "True", "2024-01-02"}, head[0])
	assert.Equal(t, []string{"2", "NaN", "Rome", "False", "2024-01-03 10:30:00"}, head[1])
	assert.Equal(t, []string{"3", "3.0", "None", "True", "NaT"}, head[2])
}

func TestNewFrameRejectsRaggedColumns(t *testing.T) {
	_, err := NewFrame("bad", []*Column{
		{Name: "a", Dtype: DtypeInt64, Values: []Value{Number(1)}},
		{Name: "b", Dtype: DtypeInt64, Values: []Value{Number(1), Number(2)}},
	})
	assert.Error(t, err)

	_, err = NewFrame("dup", []*Column{
		{Name: "a", Dtype: DtypeInt64, Values: []Value{Number(1)}},
		{Name: "a", Dtype: DtypeInt64, Values: []Value{Number(1)}},
	})
	assert.Error(t, err)
}

func TestColumnHelpers(t *testing.T) {
	f := sampleFrame(t)

	score, ok := f.Column("score")
	require.True(t, ok)
	assert.Equal(t, 1, score.MissingCount())
	assert.Equal(t, []float64{1.5, 3}, score.Floats())
	assert.Nil(t, score.JSONValue(1))

	city, _ := f.Column("city")
	_, ok = city.Float(0)
	assert.False(t, ok, "object columns have no numeric value")
	key, ok := city.Key(1)
	assert.True(t, ok)
	assert.Equal(t, "Rome", key)
	_, ok = city.Key(2)
	assert.False(t, ok)
}

func TestFormatFromFilename(t *testing.T) {
	tests := map[string]struct {
		format Format
		ok     bool
	}{
		"sales.csv":    {FormatCSV, true},
		"Sales.XLSX":   {FormatXLSX, true},
		"report.xls":   {"", false},
		"notes.txt":    {"", false},
		"no-extension": {"", false},
	}
	for name, want := range tests {
		got, ok := FormatFromFilename(name)
		assert.Equal(t, want.ok, ok, name)
		assert.Equal(t, want.format, got, name)
	}
}
