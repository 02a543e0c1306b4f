package domain

// SectorDataset is the wide table loaded from one sector file.
// The first header is the company identifier column, the others are metric columns.
// A dataset is immutable once built: every accessor hands out copies.
type SectorDataset struct {
	name    string
	source  string
	headers []string
	rows    [][]string
}

// NewSectorDataset builds a dataset from a header row and data rows.
// Rows shorter than the header are padded with empty cells, longer rows are truncated.
func NewSectorDataset(name, source string, headers []string, rows [][]string) *SectorDataset {
	h := make([]string, len(headers))
	copy(h, headers)

	rs := make([][]string, 0, len(rows))
	for _, row := range rows {
		r := make([]string, len(h))
		copy(r, row)
		rs = append(rs, r)
	}

	return &SectorDataset{
		name:    name,
		source:  source,
		headers: h,
		rows:    rs,
	}
}

// Name returns the sector name (file base name without extension)
func (d *SectorDataset) Name() string { return d.name }

// Source returns the path the dataset was read from
func (d *SectorDataset) Source() string { return d.source }

// Headers returns a copy of all column headers
func (d *SectorDataset) Headers() []string {
	h := make([]string, len(d.headers))
	copy(h, d.headers)
	return h
}

// IDColumn returns the identifier column header, or "" for a dataset without columns
func (d *SectorDataset) IDColumn() string {
	if len(d.headers) == 0 {
		return ""
	}
	return d.headers[0]
}

// MetricColumns returns a copy of the metric column headers
func (d *SectorDataset) MetricColumns() []string {
	if len(d.headers) < 2 {
		return []string{}
	}
	m := make([]string, len(d.headers)-1)
	copy(m, d.headers[1:])
	return m
}

// Len returns the number of company rows
func (d *SectorDataset) Len() int { return len(d.rows) }

// Companies returns the identifier of every row in file order
func (d *SectorDataset) Companies() []string {
	out := make([]string, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[0]
	}
	return out
}

// Cell returns the raw text at row i, column j
func (d *SectorDataset) Cell(i, j int) string {
	return d.rows[i][j]
}

// Column identifies a table column and its display title
type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TableRow is one company record as shown in the data table.
// Keys are raw column ids: the identifier column maps to the company, metric columns to float64 values.
type TableRow map[string]any

// MeltedRow is one (company, metric, value) record of the long form
type MeltedRow struct {
	Company string  `json:"company"`
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
}

// SectorView is everything the dashboard needs to draw one selection
type SectorView struct {
	Sector  string     `json:"sector,omitempty"`
	Figure  Figure     `json:"figure"`
	Rows    []TableRow `json:"rows"`
	Columns []Column   `json:"columns"`
}

// EmptySectorView is the "nothing selected" view
func EmptySectorView() SectorView {
	return SectorView{
		Rows:    []TableRow{},
		Columns: []Column{},
	}
}

// MetricSummary holds descriptive statistics of one metric across a sector's companies
type MetricSummary struct {
	Column string  `json:"column"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// SectorSummary aggregates every metric of a sector
type SectorSummary struct {
	Sector    string          `json:"sector"`
	Companies int             `json:"companies"`
	Metrics   []MetricSummary `json:"metrics"`
}
