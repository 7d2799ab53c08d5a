package charts

import (
	"fmt"
	"strings"

	"goeda/domain/dataset"
)

// DefaultHeight is the pixel height of every figure.
const DefaultHeight = 500

// None is the selector value meaning "no colour or grouping".
const None = "None"

// Count is the hierarchy value option that sizes nodes by row count.
const Count = "Count"

// Type names a visualization as it is offered to the user.
type Type string

const (
	CorrelationHeatmap Type = "Correlation Heatmap"
	Histogram          Type = "Histogram (Distribution)"
	Scatter            Type = "Scatter Plot (Relationship)"
	Box                Type = "Box Plot (Outliers/Comparison)"
	Violin             Type = "Violin Plot (Density/Distribution)"
	ScatterMatrix      Type = "Scatter Matrix (Multivariate)"
	CountPlot          Type = "Count Plot (Bar Chart)"
	TimeSeries         Type = "Time Series Plot (Line Chart)"
	Sunburst           Type = "Sunburst Chart (Hierarchy)"
	Treemap            Type = "Treemap (Hierarchy)"
)

var slugs = map[string]Type{
	"heatmap":        CorrelationHeatmap,
	"correlation":    CorrelationHeatmap,
	"histogram":      Histogram,
	"scatter":        Scatter,
	"box":            Box,
	"violin":         Violin,
	"scatter-matrix": ScatterMatrix,
	"count":          CountPlot,
	"time-series":    TimeSeries,
	"sunburst":       Sunburst,
	"treemap":        Treemap,
}

// ParseType accepts either a display name or a short slug such as "box".
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	if t, ok := slugs[strings.ToLower(s)]; ok {
		return t, true
	}
	for _, t := range []Type{CorrelationHeatmap, Histogram, Scatter, Box, Violin, ScatterMatrix, CountPlot, TimeSeries, Sunburst, Treemap} {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Slug returns the short name of t.
func (t Type) Slug() string {
	for slug, typ := range slugs {
		if typ == t && slug != "correlation" {
			return slug
		}
	}
	return ""
}

// Available lists the visualizations the frame's column kinds support.
func Available(frame *dataset.Frame) []Type {
	numeric := frame.ColumnsOfKind(dataset.KindNumeric)
	categorical := frame.ColumnsOfKind(dataset.KindCategorical)
	dates := frame.ColumnsOfKind(dataset.KindDatetime)

	available := []Type{CorrelationHeatmap}
	if len(numeric) > 0 {
		available = append(available, Histogram, Scatter, Box, Violin, ScatterMatrix)
	}
	if len(categorical) > 0 {
		available = append(available, CountPlot)
	}
	if len(dates) > 0 && len(numeric) > 0 {
		available = append(available, TimeSeries)
	}
	if len(categorical) >= 2 {
		available = append(available, Sunburst, Treemap)
	}
	return available
}

// Request carries the user's selections. Empty fields take defaults.
type Request struct {
	Type   Type     `json:"type"`
	X      string   `json:"x,omitempty"`
	Y      string   `json:"y,omitempty"`
	Color  string   `json:"color,omitempty"`
	Group  string   `json:"group,omitempty"`
	Dims   []string `json:"dims,omitempty"`
	Path   []string `json:"path,omitempty"`
	Values string   `json:"values,omitempty"`
}

// Control describes one selector: its options and the resolved selection.
type Control struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Selected []string `json:"selected"`
	Multi    bool     `json:"multi,omitempty"`
}

// Result is either a figure or a notice explaining why none was drawn.
type Result struct {
	Type     Type            `json:"type"`
	Figure   *Figure         `json:"figure,omitempty"`
	Notice   *dataset.Notice `json:"notice,omitempty"`
	Controls []Control       `json:"controls,omitempty"`
}

// Drawn reports whether the result holds a figure.
func (r Result) Drawn() bool { return r.Figure != nil }

// Outcome is a short label for metrics: "figure" or the notice level.
func (r Result) Outcome() string {
	if r.Figure != nil {
		return "figure"
	}
	if r.Notice != nil {
		return string(r.Notice.Level)
	}
	return "empty"
}

// Build draws the requested visualization.
func Build(frame *dataset.Frame, req Request) Result {
	b := &builder{
		frame:       frame,
		req:         req,
		numeric:     frame.ColumnsOfKind(dataset.KindNumeric),
		categorical: frame.ColumnsOfKind(dataset.KindCategorical),
		dates:       frame.ColumnsOfKind(dataset.KindDatetime),
		all:         frame.ColumnNames(),
		result:      Result{Type: req.Type},
	}

	switch req.Type {
	case Histogram:
		b.histogram()
	case Scatter:
		b.scatter()
	case ScatterMatrix:
		b.scatterMatrix()
	case Box:
		b.box()
	case Violin:
		b.violin()
	case CountPlot:
		b.countPlot()
	case TimeSeries:
		b.timeSeries()
	case CorrelationHeatmap:
		b.heatmap()
	case Sunburst, Treemap:
		b.hierarchy()
	default:
		b.notify(dataset.NoticeError, fmt.Sprintf("Unknown visualization type %q.", string(req.Type)))
	}
	return b.result
}

type builder struct {
	frame       *dataset.Frame
	req         Request
	numeric     []string
	categorical []string
	dates       []string
	all         []string
	result      Result
}

func (b *builder) notify(level dataset.NoticeLevel, msg string) {
	b.result.Figure = nil
	b.result.Notice = &dataset.Notice{Level: level, Message: msg}
}

func (b *builder) draw(fig Figure) {
	b.result.Figure = &fig
}

// pick resolves a single selection against options, defaulting to the
// option at index def. It records the control and reports false (with an
// error notice) when the requested value is not an option.
func (b *builder) pick(name, label, requested string, options []string, def int) (string, bool) {
	selected := ""
	if requested == "" {
		if def < len(options) {
			selected = options[def]
		}
	} else if contains(options, requested) {
		selected = requested
	}
	b.result.Controls = append(b.result.Controls, Control{
		Name: name, Label: label, Options: options, Selected: []string{selected},
	})
	if selected == "" {
		b.notify(dataset.NoticeError, fmt.Sprintf("Column '%s' is not a valid choice for %s.", requested, label))
		return "", false
	}
	return selected, true
}

// pickOptional is pick with a leading "None" option; it returns "" for None.
func (b *builder) pickOptional(name, label, requested string, options []string) (string, bool) {
	withNone := append([]string{None}, options...)
	if requested == "" {
		requested = None
	}
	selected, ok := b.pick(name, label, requested, withNone, 0)
	if !ok || selected == None {
		return "", ok
	}
	return selected, true
}

// pickMany resolves a multi selection, defaulting to the first n options.
func (b *builder) pickMany(name, label string, requested, options []string, n int) ([]string, bool) {
	var selected []string
	if requested == nil {
		selected = append(selected, options[:min(n, len(options))]...)
	} else {
		for _, r := range requested {
			if !contains(options, r) {
				b.result.Controls = append(b.result.Controls, Control{Name: name, Label: label, Options: options, Multi: true})
				b.notify(dataset.NoticeError, fmt.Sprintf("Column '%s' is not a valid choice for %s.", r, label))
				return nil, false
			}
			if !contains(selected, r) {
				selected = append(selected, r)
			}
		}
	}
	if selected == nil {
		selected = []string{}
	}
	b.result.Controls = append(b.result.Controls, Control{
		Name: name, Label: label, Options: options, Selected: selected, Multi: true,
	})
	return selected, true
}

func (b *builder) column(name string) *dataset.Column {
	col, _ := b.frame.Column(name)
	return col
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
