package charts

// Figure is a plotly.js figure: traces plus layout, serialised the way
// Plotly.newPlot expects them.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of plotly trace attributes the dashboard emits.
type Trace struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Orientation string `json:"orientation,omitempty"`

	X []any        `json:"x,omitempty"`
	Y []any        `json:"y,omitempty"`
	Z [][]*float64 `json:"z,omitempty"`

	XAxis string `json:"xaxis,omitempty"`
	YAxis string `json:"yaxis,omitempty"`

	LegendGroup    string `json:"legendgroup,omitempty"`
	ShowLegend     *bool  `json:"showlegend,omitempty"`
	OffsetGroup    string `json:"offsetgroup,omitempty"`
	AlignmentGroup string `json:"alignmentgroup,omitempty"`

	Marker *Marker `json:"marker,omitempty"`

	// box and violin
	BoxPoints string     `json:"boxpoints,omitempty"`
	Points    string     `json:"points,omitempty"`
	Box       *InnerBox  `json:"box,omitempty"`
	Dims      []SplomDim `json:"dimensions,omitempty"`

	// heatmap
	ColorScale   string `json:"colorscale,omitempty"`
	TextTemplate string `json:"texttemplate,omitempty"`

	// sunburst and treemap
	IDs          []string  `json:"ids,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	Parents      []string  `json:"parents,omitempty"`
	Values       []float64 `json:"values,omitempty"`
	BranchValues string    `json:"branchvalues,omitempty"`
}

// Marker styles points and bars.
type Marker struct {
	Color      any    `json:"color,omitempty"`
	ColorScale string `json:"colorscale,omitempty"`
	ShowScale  bool   `json:"showscale,omitempty"`
	ColorBar   *Title `json:"colorbar,omitempty"`
}

// InnerBox draws a box inside a violin.
type InnerBox struct {
	Visible bool `json:"visible"`
}

// SplomDim is one dimension of a scatter matrix.
type SplomDim struct {
	Label  string `json:"label"`
	Values []any  `json:"values"`
}

// Layout is the figure layout.
type Layout struct {
	Title      *Title  `json:"title,omitempty"`
	Height     int     `json:"height"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	YAxis2     *Axis   `json:"yaxis2,omitempty"`
	BarMode    string  `json:"barmode,omitempty"`
	BoxMode    string  `json:"boxmode,omitempty"`
	ViolinMode string  `json:"violinmode,omitempty"`
	Legend     *Legend `json:"legend,omitempty"`
}

// Title is a text title.
type Title struct {
	Text string `json:"text"`
}

// Axis configures a cartesian axis.
type Axis struct {
	Title          *Title    `json:"title,omitempty"`
	Domain         []float64 `json:"domain,omitempty"`
	Anchor         string    `json:"anchor,omitempty"`
	Matches        string    `json:"matches,omitempty"`
	ShowTickLabels *bool     `json:"showticklabels,omitempty"`
	AutoRange      string    `json:"autorange,omitempty"`
	Type           string    `json:"type,omitempty"`
}

// Legend configures the legend.
type Legend struct {
	Title *Title `json:"title,omitempty"`
}

func axisTitle(text string) *Axis {
	return &Axis{Title: &Title{Text: text}}
}

func newLayout(title string) Layout {
	return Layout{Title: &Title{Text: title}, Height: DefaultHeight}
}

func legendTitled(text string) *Legend {
	return &Legend{Title: &Title{Text: text}}
}

func boolPtr(b bool) *bool { return &b }
