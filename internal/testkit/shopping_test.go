package testkit

import (
	"bytes"
	"testing"

	"goeda/adapters/datareadiness/coercer"
	"goeda/adapters/excel"
	"goeda/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() ShoppingConfig {
	cfg := DefaultShoppingConfig()
	cfg.Orders = 40
	cfg.MissingRate = 0.2
	return cfg
}

func TestShoppingGeneratorIsDeterministic(t *testing.T) {
	a, err := NewShoppingGenerator(smallConfig()).CSV()
	require.NoError(t, err)
	b, err := NewShoppingGenerator(smallConfig()).CSV()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := smallConfig()
	other.Seed = 7
	c, err := NewShoppingGenerator(other).CSV()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestShoppingCSVTypes(t *testing.T) {
	content, err := NewShoppingGenerator(smallConfig()).CSV()
	require.NoError(t, err)

	table, err := excel.NewDataReader(excel.DefaultReaderConfig()).Read("orders.csv", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, ShoppingColumns, table.Headers)
	assert.Len(t, table.Rows, 40)

	frame, notices, err := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()).BuildFrame("orders", table.Headers, table.Columns())
	require.NoError(t, err)
	assert.Equal(t, []dataset.Notice{{Level: dataset.NoticeInfo, Message: "Converted column 'order_date' to Datetime type."}}, notices)

	kinds := map[string]dataset.Kind{}
	for _, c := range frame.Columns {
		kinds[c.Name] = c.Kind()
	}
	assert.Equal(t, dataset.KindNumeric, kinds["quantity"])
	assert.Equal(t, dataset.KindNumeric, kinds["unit_price"])
	assert.Equal(t, dataset.KindCategorical, kinds["returned"])
	assert.Equal(t, dataset.KindCategorical, kinds["device"])
	assert.Equal(t, dataset.KindDatetime, kinds["order_date"])
}

func TestShoppingXLSXRoundTrip(t *testing.T) {
	content, err := NewShoppingGenerator(smallConfig()).XLSX("Orders")
	require.NoError(t, err)

	cfg := excel.DefaultReaderConfig()
	cfg.Sheet = "Orders"
	table, err := excel.NewDataReader(cfg).Read("orders.xlsx", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "Orders", table.Sheet)
	assert.Equal(t, ShoppingColumns, table.Headers)
	assert.Len(t, table.Rows, 40)
	assert.Equal(t, "order_0001", table.Rows[0][0])
}
