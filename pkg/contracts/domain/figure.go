package domain

// Figure is a chart description in the shape Plotly consumes ({data, layout}).
// The zero Figure marshals to {} and means "nothing to draw".
type Figure struct {
	Data   []BarTrace    `json:"data,omitempty"`
	Layout *FigureLayout `json:"layout,omitempty"`
}

// IsEmpty reports whether the figure has no series
func (f Figure) IsEmpty() bool {
	return len(f.Data) == 0 && f.Layout == nil
}

// BarTrace is one bar series; in a grouped chart there is one trace per metric
type BarTrace struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	X           []string  `json:"x"`
	Y           []float64 `json:"y"`
	OffsetGroup string    `json:"offsetgroup,omitempty"`
	LegendGroup string    `json:"legendgroup,omitempty"`
}

// FigureLayout describes the chart frame
type FigureLayout struct {
	BarMode string `json:"barmode"`
	Height  int    `json:"height"`
	XAxis   Axis   `json:"xaxis"`
	YAxis   Axis   `json:"yaxis"`
	Legend  Legend `json:"legend"`
}

// Axis holds axis settings
type Axis struct {
	Title     Title  `json:"title"`
	Type      string `json:"type,omitempty"`
	TickAngle int    `json:"tickangle,omitempty"`
}

// Title is a text with an optional font
type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

// Font describes a text font
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Legend holds legend settings
type Legend struct {
	Title Title `json:"title"`
}

// SeriesCount returns the number of traces
func (f Figure) SeriesCount() int {
	return len(f.Data)
}
