package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const inventoryCSV = `sku,category,stock,cost,received
a1,tools,4,2.5,2024-02-01
a2,tools,7,1.25,2024-02-03
b1,garden,,8,2024-02-04
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(inventoryCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOverviewCommand(t *testing.T) {
	path := writeFixture(t)

	out, err := run(t, "overview", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[info] Converted column 'received' to Datetime type.")
	assert.Contains(t, out, "Rows: 3, Columns: 5")

	out, err = run(t, "overview", "--json", path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), gjson.Get(out, "overview.rows").Int())
}

func TestStatsCommand(t *testing.T) {
	path := writeFixture(t)

	out, err := run(t, "stats", "--json", "--value-counts", "category", path)
	require.NoError(t, err)
	assert.Equal(t, `["stock","cost"]`, gjson.Get(out, "statistics.describe.#.column").Raw)
	assert.Equal(t, "tools", gjson.Get(out, "value_counts.0.value").String())
	assert.Equal(t, int64(2), gjson.Get(out, "value_counts.0.count").Int())

	out, err = run(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Missing Values")
	assert.Contains(t, out, "Categorical Column Analysis")

	_, err = run(t, "stats", "--value-counts", "cost", path)
	assert.Error(t, err)
}

func TestChartCommands(t *testing.T) {
	path := writeFixture(t)

	out, err := run(t, "charts", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Time Series Plot (Line Chart)")

	out, err = run(t, "chart", "--type", "scatter", path)
	require.NoError(t, err)
	assert.Equal(t, "Scatter Plot: stock vs cost", gjson.Get(out, "layout.title.text").String())

	_, err = run(t, "chart", "--type", "scatter-matrix", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Requires at least three numeric columns for an effective matrix.")

	_, err = run(t, "chart", "--type", "pie", path)
	assert.Error(t, err)

	target := filepath.Join(t.TempDir(), "fig.json")
	_, err = run(t, "chart", "--type", "treemap", "--path", "sku,category", "-o", target, path)
	require.NoError(t, err)
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "treemap", gjson.GetBytes(raw, "data.0.type").String())
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "cli.db"))

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite database is up to date")

	t.Setenv("DATABASE_DRIVER", "memory")
	_, err = run(t, "migrate")
	assert.Error(t, err)
}

func TestSampleCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "orders.xlsx")

	out, err := run(t, "sample", "--orders", "25", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 25 orders")

	out, err = run(t, "overview", "--json", target)
	require.NoError(t, err)
	assert.Equal(t, int64(25), gjson.Get(out, "overview.rows").Int())

	_, err = run(t, "sample", filepath.Join(dir, "orders.txt"))
	assert.Error(t, err)
}
