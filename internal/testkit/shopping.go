// Package testkit generates deterministic sample spreadsheets for tests and
// demos.
package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"goeda/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// ShoppingColumns is the header row of a generated order table.
var ShoppingColumns = []string{
	"order_id", "country", "signup_channel", "device", "payment_method", "shipping_speed",
	"quantity", "unit_price", "order_total", "returned", "order_date",
}

// ShoppingConfig configures the shopping order generator
type ShoppingConfig struct {
	Orders      int       `json:"orders"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	ReturnRate  float64   `json:"return_rate"`
	MissingRate float64   `json:"missing_rate"` // share of unit prices and devices left blank
	Seed        int64     `json:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for order generation
func DefaultShoppingConfig() ShoppingConfig {
	return ShoppingConfig{
		Orders:      200,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		ReturnRate:  0.08,
		MissingRate: 0.05,
		Seed:        42,
	}
}

// ShoppingGenerator produces e-commerce order rows. The same seed always
// yields the same table.
type ShoppingGenerator struct {
	config ShoppingConfig
	rng    *rand.Rand
}

// NewShoppingGenerator creates a generator
func NewShoppingGenerator(config ShoppingConfig) *ShoppingGenerator {
	return &ShoppingGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Rows generates the orders. Missing cells are nil.
func (g *ShoppingGenerator) Rows() [][]any {
	rows := make([][]any, 0, g.config.Orders)
	for i := 0; i < g.config.Orders; i++ {
		quantity := 1 + g.rng.Intn(5)
		price := math.Round((5+g.rng.ExpFloat64()*20)*100) / 100
		expedited := g.weighted([]string{"standard", "expedited"}, []float64{0.8, 0.2})

		var unitPrice, total any = price, math.Round(price*float64(quantity)*100) / 100
		if g.rng.Float64() < g.config.MissingRate {
			unitPrice, total = nil, nil
		}
		var device any = g.weighted([]string{"mobile", "desktop", "tablet"}, []float64{0.6, 0.35, 0.05})
		if g.rng.Float64() < g.config.MissingRate {
			device = nil
		}

		rows = append(rows, []any{
			fmt.Sprintf("order_%04d", i+1),
			g.pick([]string{"US", "CA", "GB", "DE", "FR", "AU", "JP"}),
			g.weighted([]string{"organic", "paid_search", "social", "email", "direct"}, []float64{0.4, 0.3, 0.15, 0.1, 0.05}),
			device,
			g.weighted([]string{"credit_card", "debit_card", "paypal", "apple_pay", "bank_transfer"}, []float64{0.5, 0.2, 0.15, 0.1, 0.05}),
			expedited,
			quantity,
			unitPrice,
			total,
			g.rng.Float64() < g.config.ReturnRate,
			g.randomTimeInRange(g.config.StartDate, g.config.EndDate).Truncate(time.Hour),
		})
	}
	return rows
}

// CSV renders the orders as comma separated text.
func (g *ShoppingGenerator) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ShoppingColumns); err != nil {
		return nil, err
	}
	for _, row := range g.Rows() {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// XLSX renders the orders as a single sheet workbook.
func (g *ShoppingGenerator) XLSX(sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return nil, err
		}
	}
	name := f.GetSheetName(0)

	header := make([]any, len(ShoppingColumns))
	for i, c := range ShoppingColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range g.Rows() {
		cells := make([]any, len(row))
		for j, v := range row {
			// dates are written as text so the reader sees them as a spreadsheet user typed them
			if t, ok := v.(time.Time); ok {
				cells[j] = dataset.FormatTime(t)
				continue
			}
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return dataset.FormatFloat(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case time.Time:
		return dataset.FormatTime(x)
	}
	return fmt.Sprint(v)
}

func (g *ShoppingGenerator) randomTimeInRange(start, end time.Time) time.Time {
	if start.After(end) {
		start, end = end, start
	}
	duration := end.Sub(start)
	if duration <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(int64(duration))))
}

func (g *ShoppingGenerator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *ShoppingGenerator) weighted(options []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return options[i]
		}
	}
	return options[0]
}
