package charts

import (
	"fmt"
	"sort"

	"goeda/domain/dataset"
	"goeda/internal/profiling"
)

// palette is plotly's default qualitative sequence.
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

func paletteColor(i int) string { return palette[i%len(palette)] }

// continuousScale is used when points are coloured by a numeric column.
const continuousScale = "Plasma"

// group is a category value and the rows holding it.
type group struct {
	key  string
	rows []int
}

// groupRows buckets rows by the column's value in first-appearance order.
// Rows where the column is missing are left out.
func groupRows(col *dataset.Column, rows []int) []group {
	index := make(map[string]int)
	var groups []group
	for _, i := range rows {
		key, ok := col.Key(i)
		if !ok {
			continue
		}
		pos, seen := index[key]
		if !seen {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, group{key: key})
		}
		groups[pos].rows = append(groups[pos].rows, i)
	}
	return groups
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// values returns the JSON values of col at rows.
func values(col *dataset.Column, rows []int) []any {
	out := make([]any, len(rows))
	for k, i := range rows {
		out[k] = col.JSONValue(i)
	}
	return out
}

func repeat(s string, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func (b *builder) histogram() {
	if len(b.numeric) == 0 {
		b.notify(dataset.NoticeWarning, "Requires numeric columns.")
		return
	}
	x, ok := b.pick("x", "Select Numeric Column", b.req.X, b.numeric, 0)
	if !ok {
		return
	}
	color, ok := b.pickOptional("color", "Color by (Optional Categorical)", b.req.Color, b.categorical)
	if !ok {
		return
	}

	xcol := b.column(x)
	rows := allRows(b.frame.NumRows())

	if color == "" {
		layout := newLayout(fmt.Sprintf("Histogram of %s", x))
		layout.XAxis = axisTitle(x)
		layout.YAxis = axisTitle("count")
		b.draw(Figure{
			Data:   []Trace{{Type: "histogram", Name: x, X: values(xcol, rows)}},
			Layout: layout,
		})
		return
	}

	groups := groupRows(b.column(color), rows)
	var traces, boxes []Trace
	for i, g := range groups {
		marker := &Marker{Color: paletteColor(i)}
		traces = append(traces, Trace{
			Type:        "histogram",
			Name:        g.key,
			LegendGroup: g.key,
			X:           values(xcol, g.rows),
			Marker:      marker,
		})
		boxes = append(boxes, Trace{
			Type:        "box",
			Name:        g.key,
			LegendGroup: g.key,
			ShowLegend:  boolPtr(false),
			Orientation: "h",
			X:           values(xcol, g.rows),
			XAxis:       "x",
			YAxis:       "y2",
			Marker:      marker,
		})
	}

	layout := newLayout(fmt.Sprintf("Histogram of %s grouped by %s", x, color))
	layout.BarMode = "relative"
	layout.XAxis = axisTitle(x)
	layout.YAxis = &Axis{Title: &Title{Text: "count"}, Domain: []float64{0, 0.7326}}
	layout.YAxis2 = &Axis{Domain: []float64{0.7426, 1}, Anchor: "x", Matches: "y2", ShowTickLabels: boolPtr(false)}
	layout.Legend = legendTitled(color)
	b.draw(Figure{Data: append(traces, boxes...), Layout: layout})
}

func (b *builder) scatter() {
	if len(b.numeric) < 2 {
		b.notify(dataset.NoticeWarning, "Requires at least two numeric columns.")
		return
	}
	x, ok := b.pick("x", "Select X Axis", b.req.X, b.numeric, 0)
	if !ok {
		return
	}
	y, ok := b.pick("y", "Select Y Axis", b.req.Y, b.numeric, 1)
	if !ok {
		return
	}
	color, ok := b.pickOptional("color", "Color by (Optional)", b.req.Color, b.all)
	if !ok {
		return
	}

	xcol, ycol := b.column(x), b.column(y)
	rows := allRows(b.frame.NumRows())
	title := fmt.Sprintf("Scatter Plot: %s vs %s", x, y)

	var traces []Trace
	switch {
	case color == "":
		traces = []Trace{{Type: "scatter", Mode: "markers", X: values(xcol, rows), Y: values(ycol, rows)}}
	case b.column(color).Kind() == dataset.KindNumeric:
		title += " by " + color
		traces = []Trace{{
			Type: "scatter",
			Mode: "markers",
			X:    values(xcol, rows),
			Y:    values(ycol, rows),
			Marker: &Marker{
				Color:      values(b.column(color), rows),
				ColorScale: continuousScale,
				ShowScale:  true,
				ColorBar:   &Title{Text: color},
			},
		}}
	default:
		title += " by " + color
		for i, g := range groupRows(b.column(color), rows) {
			traces = append(traces, Trace{
				Type:        "scatter",
				Mode:        "markers",
				Name:        g.key,
				LegendGroup: g.key,
				X:           values(xcol, g.rows),
				Y:           values(ycol, g.rows),
				Marker:      &Marker{Color: paletteColor(i)},
			})
		}
	}

	layout := newLayout(title)
	layout.XAxis = axisTitle(x)
	layout.YAxis = axisTitle(y)
	if color != "" {
		layout.Legend = legendTitled(color)
	}
	b.draw(Figure{Data: traces, Layout: layout})
}

func (b *builder) scatterMatrix() {
	if len(b.numeric) < 3 {
		b.notify(dataset.NoticeWarning, "Requires at least three numeric columns for an effective matrix.")
		return
	}
	dims, ok := b.pickMany("dims", "Select Numeric Columns to Plot (3+ recommended)", b.req.Dims, b.numeric, 5)
	if !ok {
		return
	}
	color, ok := b.pickOptional("color", "Color by (Optional Categorical)", b.req.Color, b.categorical)
	if !ok {
		return
	}
	if len(dims) < 2 {
		b.notify(dataset.NoticeInfo, "Please select at least two columns.")
		return
	}

	splom := func(rows []int) []SplomDim {
		out := make([]SplomDim, len(dims))
		for i, d := range dims {
			out[i] = SplomDim{Label: d, Values: values(b.column(d), rows)}
		}
		return out
	}

	rows := allRows(b.frame.NumRows())
	title := "Scatter Matrix"
	var traces []Trace
	if color == "" {
		traces = []Trace{{Type: "splom", Dims: splom(rows)}}
	} else {
		title = "Scatter Matrix colored by " + color
		for i, g := range groupRows(b.column(color), rows) {
			traces = append(traces, Trace{
				Type:        "splom",
				Name:        g.key,
				LegendGroup: g.key,
				Dims:        splom(g.rows),
				Marker:      &Marker{Color: paletteColor(i)},
			})
		}
	}

	layout := newLayout(title)
	if color != "" {
		layout.Legend = legendTitled(color)
	}
	b.draw(Figure{Data: traces, Layout: layout})
}

func (b *builder) box() {
	if len(b.numeric) == 0 {
		b.notify(dataset.NoticeWarning, "Requires numeric columns.")
		return
	}
	y, ok := b.pick("y", "Select Numeric Column (Y-axis)", b.req.Y, b.numeric, 0)
	if !ok {
		return
	}
	grp, ok := b.pickOptional("group", "Group by (Optional Categorical Column for X-axis)", b.req.Group, b.categorical)
	if !ok {
		return
	}

	ycol := b.column(y)
	rows := allRows(b.frame.NumRows())

	if grp == "" {
		layout := newLayout(fmt.Sprintf("Box Plot of %s", y))
		layout.YAxis = axisTitle(y)
		b.draw(Figure{Data: []Trace{{Type: "box", Name: y, Y: values(ycol, rows)}}, Layout: layout})
		return
	}

	gcol := b.column(grp)
	var x, yv []any
	for _, g := range groupRows(gcol, rows) {
		x = append(x, repeat(g.key, len(g.rows))...)
		yv = append(yv, values(ycol, g.rows)...)
	}

	layout := newLayout(fmt.Sprintf("Box Plot of %s grouped by %s", y, grp))
	layout.XAxis = axisTitle(grp)
	layout.YAxis = axisTitle(y)
	layout.BoxMode = "group"
	b.draw(Figure{Data: []Trace{{Type: "box", X: x, Y: yv}}, Layout: layout})
}

func (b *builder) violin() {
	if len(b.numeric) == 0 {
		b.notify(dataset.NoticeWarning, "Requires numeric columns.")
		return
	}
	y, ok := b.pick("y", "Select Numeric Column (Y-axis)", b.req.Y, b.numeric, 0)
	if !ok {
		return
	}
	grp, ok := b.pickOptional("group", "Group by (Optional Categorical Column for X-axis)", b.req.Group, b.categorical)
	if !ok {
		return
	}

	ycol := b.column(y)
	rows := allRows(b.frame.NumRows())
	inner := &InnerBox{Visible: true}

	if grp == "" {
		layout := newLayout(fmt.Sprintf("Violin Plot of %s", y))
		layout.YAxis = axisTitle(y)
		b.draw(Figure{
			Data:   []Trace{{Type: "violin", Name: y, Y: values(ycol, rows), Box: inner, Points: "all"}},
			Layout: layout,
		})
		return
	}

	var traces []Trace
	for i, g := range groupRows(b.column(grp), rows) {
		traces = append(traces, Trace{
			Type:        "violin",
			Name:        g.key,
			LegendGroup: g.key,
			OffsetGroup: g.key,
			X:           repeat(g.key, len(g.rows)),
			Y:           values(ycol, g.rows),
			Box:         inner,
			Points:      "all",
			Marker:      &Marker{Color: paletteColor(i)},
		})
	}

	layout := newLayout(fmt.Sprintf("Violin Plot of %s grouped by %s", y, grp))
	layout.XAxis = axisTitle(grp)
	layout.YAxis = axisTitle(y)
	layout.ViolinMode = "group"
	layout.Legend = legendTitled(grp)
	b.draw(Figure{Data: traces, Layout: layout})
}

func (b *builder) countPlot() {
	if len(b.categorical) == 0 {
		b.notify(dataset.NoticeWarning, "Requires categorical columns.")
		return
	}
	x, ok := b.pick("x", "Select Categorical Column", b.req.X, b.categorical, 0)
	if !ok {
		return
	}

	var keys, counts []any
	for _, g := range groupRows(b.column(x), allRows(b.frame.NumRows())) {
		keys = append(keys, g.key)
		counts = append(counts, len(g.rows))
	}

	layout := newLayout(fmt.Sprintf("Count Plot of %s", x))
	layout.XAxis = &Axis{Title: &Title{Text: x}, Type: "category"}
	layout.YAxis = axisTitle("count")
	b.draw(Figure{Data: []Trace{{Type: "bar", Name: x, X: keys, Y: counts}}, Layout: layout})
}

func (b *builder) timeSeries() {
	if len(b.dates) == 0 || len(b.numeric) == 0 {
		b.notify(dataset.NoticeWarning, "Requires at least one Date and one Numeric column.")
		return
	}
	d, ok := b.pick("x", "Select Date Column (X-axis)", b.req.X, b.dates, 0)
	if !ok {
		return
	}
	v, ok := b.pick("y", "Select Value Column (Y-axis)", b.req.Y, b.numeric, 0)
	if !ok {
		return
	}
	color, ok := b.pickOptional("color", "Group/Color by (Optional Categorical)", b.req.Color, b.categorical)
	if !ok {
		return
	}

	dcol, vcol := b.column(d), b.column(v)
	var rows []int
	for i := 0; i < dcol.Len(); i++ {
		if !dcol.Values[i].Null {
			rows = append(rows, i)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return dcol.Values[rows[i]].Time.Before(dcol.Values[rows[j]].Time)
	})

	title := fmt.Sprintf("Time Series of %s over %s", v, d)
	var traces []Trace
	if color == "" {
		traces = []Trace{{Type: "scatter", Mode: "lines", X: values(dcol, rows), Y: values(vcol, rows)}}
	} else {
		title += " by " + color
		for i, g := range groupRows(b.column(color), rows) {
			traces = append(traces, Trace{
				Type:        "scatter",
				Mode:        "lines",
				Name:        g.key,
				LegendGroup: g.key,
				X:           values(dcol, g.rows),
				Y:           values(vcol, g.rows),
				Marker:      &Marker{Color: paletteColor(i)},
			})
		}
	}

	layout := newLayout(title)
	layout.XAxis = &Axis{Title: &Title{Text: d}, Type: "date"}
	layout.YAxis = axisTitle(v)
	if color != "" {
		layout.Legend = legendTitled(color)
	}
	b.draw(Figure{Data: traces, Layout: layout})
}

func (b *builder) heatmap() {
	if len(b.numeric) == 0 {
		b.notify(dataset.NoticeWarning, "No numeric columns found to compute a Correlation Heatmap.")
		return
	}

	m := profiling.Correlation(b.frame)
	labels := make([]any, len(m.Columns))
	for i, c := range m.Columns {
		labels[i] = c
	}

	layout := newLayout("Correlation Heatmap")
	layout.YAxis = &Axis{AutoRange: "reversed"}
	b.draw(Figure{
		Data: []Trace{{
			Type:         "heatmap",
			X:            labels,
			Y:            labels,
			Z:            m.Values,
			ColorScale:   "Inferno",
			TextTemplate: "%{z}",
		}},
		Layout: layout,
	})
}

func (b *builder) hierarchy() {
	if len(b.categorical) < 2 {
		b.notify(dataset.NoticeWarning, "Requires at least two categorical columns for hierarchical plots.")
		return
	}
	path, ok := b.pickMany("path", "Select Categorical Columns for Hierarchy Path (order matters)", b.req.Path, b.categorical, 3)
	if !ok {
		return
	}
	weight, ok := b.pick("values", "Select Numeric Column for Values (Optional)", b.req.Values, append([]string{Count}, b.numeric...), 0)
	if !ok {
		return
	}
	if len(path) == 0 {
		b.notify(dataset.NoticeInfo, "Please select columns for the hierarchy path.")
		return
	}

	cols := make([]*dataset.Column, len(path))
	for i, p := range path {
		cols[i] = b.column(p)
	}
	var weights *dataset.Column
	if weight != Count {
		weights = b.column(weight)
	}

	nodes := buildHierarchy(cols, weights)
	if len(nodes) == 0 {
		b.notify(dataset.NoticeWarning, "No complete rows to build the hierarchy from.")
		return
	}

	trace := Trace{Type: "sunburst", BranchValues: "total"}
	title := "Sunburst Chart"
	if b.req.Type == Treemap {
		trace.Type = "treemap"
		title = "Treemap"
	}
	for _, n := range nodes {
		trace.IDs = append(trace.IDs, n.id)
		trace.Labels = append(trace.Labels, n.label)
		trace.Parents = append(trace.Parents, n.parent)
		trace.Values = append(trace.Values, n.value)
	}
	b.draw(Figure{Data: []Trace{trace}, Layout: newLayout(title)})
}
