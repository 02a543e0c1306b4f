package dataprocessing

import (
	"fmt"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/pkg/contracts/domain"
)

// Chart frame settings
const (
	ChartHeight    = 800
	ChartBarMode   = "group"
	XAxisTitle     = "Entreprise"
	YAxisTitle     = "Pourcentage (%)"
	LegendTitle    = "Metric"
	XTickAngle     = 15
	AxisFontFamily = "Arial Black"
	AxisFontSize   = 16
	AxisFontColor  = "#333"
)

// Transformer turns a sector selection into chart and table data
type Transformer struct {
	store      *Store
	labels     *LabelMap
	normalizer Normalizer
}

// NewTransformer creates a transformer. A nil labels map means DefaultLabels.
func NewTransformer(store *Store, labels *LabelMap, normalizer Normalizer) *Transformer {
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Transformer{store: store, labels: labels, normalizer: normalizer}
}

// Labels returns the label map in use
func (t *Transformer) Labels() *LabelMap { return t.labels }

// Transform builds the view of one sector. An empty sector yields the empty view.
// Calling it twice with the same sector gives equal results.
func (t *Transformer) Transform(sector string) (domain.SectorView, error) {
	if sector == "" {
		return domain.EmptySectorView(), nil
	}

	ds, values, err := t.normalized(sector)
	if err != nil {
		return domain.SectorView{}, err
	}

	columns, err := t.columns(ds)
	if err != nil {
		return domain.SectorView{}, err
	}

	figure, err := t.figure(ds, values)
	if err != nil {
		return domain.SectorView{}, err
	}

	return domain.SectorView{
		Sector:  sector,
		Figure:  figure,
		Rows:    tableRows(ds, values),
		Columns: columns,
	}, nil
}

// Melt returns the long form of a sector with metric names replaced by their titles
func (t *Transformer) Melt(sector string) ([]domain.MeltedRow, error) {
	if sector == "" {
		return []domain.MeltedRow{}, nil
	}

	ds, values, err := t.normalized(sector)
	if err != nil {
		return nil, err
	}

	melted := melt(ds, values)
	for i := range melted {
		title, ok := t.labels.Title(melted[i].Metric)
		if !ok {
			return nil, apierrors.NewLabelMissingError(melted[i].Metric).WithContext("sector", sector)
		}
		melted[i].Metric = title
	}
	return melted, nil
}

// normalized looks up a sector and converts all of its metric cells.
// values[i][j] is company i, metric j.
func (t *Transformer) normalized(sector string) (*domain.SectorDataset, [][]float64, error) {
	ds, ok := t.store.Get(sector)
	if !ok {
		return nil, nil, apierrors.NewSectorNotFoundError(sector)
	}

	metrics := ds.MetricColumns()
	values := make([][]float64, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		values[i] = make([]float64, len(metrics))
		for j, col := range metrics {
			raw := ds.Cell(i, j+1)
			v, err := t.normalizer.Normalize(raw)
			if err != nil {
				return nil, nil, apierrors.NewParsingError(
					fmt.Sprintf("sector %q company %q column %q", sector, ds.Cell(i, 0), col), err).
					WithContext("sector", sector).
					WithContext("company", ds.Cell(i, 0)).
					WithContext("column", col).
					WithContext("value", raw)
			}
			values[i][j] = v
		}
	}
	return ds, values, nil
}

func (t *Transformer) columns(ds *domain.SectorDataset) ([]domain.Column, error) {
	headers := ds.Headers()
	cols := make([]domain.Column, 0, len(headers))
	for _, h := range headers {
		title, ok := t.labels.Title(h)
		if !ok {
			return nil, apierrors.NewLabelMissingError(h).WithContext("sector", ds.Name())
		}
		cols = append(cols, domain.Column{ID: h, Name: title})
	}
	return cols, nil
}

// figure draws one bar trace per metric, in column order, companies in file order
func (t *Transformer) figure(ds *domain.SectorDataset, values [][]float64) (domain.Figure, error) {
	metrics := ds.MetricColumns()
	traces := make([]domain.BarTrace, len(metrics))
	for j, m := range metrics {
		title, ok := t.labels.Title(m)
		if !ok {
			return domain.Figure{}, apierrors.NewLabelMissingError(m).WithContext("sector", ds.Name())
		}
		y := make([]float64, ds.Len())
		for i := range y {
			y[i] = values[i][j]
		}
		traces[j] = domain.BarTrace{
			Type:        "bar",
			Name:        title,
			X:           ds.Companies(),
			Y:           y,
			OffsetGroup: title,
			LegendGroup: title,
		}
	}

	return domain.Figure{Data: traces, Layout: NewBarLayout()}, nil
}

// NewBarLayout returns the grouped bar chart frame
func NewBarLayout() *domain.FigureLayout {
	font := func() *domain.Font {
		return &domain.Font{Family: AxisFontFamily, Size: AxisFontSize, Color: AxisFontColor}
	}
	return &domain.FigureLayout{
		BarMode: ChartBarMode,
		Height:  ChartHeight,
		XAxis: domain.Axis{
			Title:     domain.Title{Text: XAxisTitle, Font: font()},
			Type:      "category",
			TickAngle: XTickAngle,
		},
		YAxis: domain.Axis{
			Title: domain.Title{Text: YAxisTitle, Font: font()},
		},
		Legend: domain.Legend{Title: domain.Title{Text: LegendTitle}},
	}
}

// melt reshapes the wide table: metric-major, companies in file order within each metric
func melt(ds *domain.SectorDataset, values [][]float64) []domain.MeltedRow {
	metrics := ds.MetricColumns()
	out := make([]domain.MeltedRow, 0, len(metrics)*ds.Len())
	for j, m := range metrics {
		for i := 0; i < ds.Len(); i++ {
			out = append(out, domain.MeltedRow{
				Company: ds.Cell(i, 0),
				Metric:  m,
				Value:   values[i][j],
			})
		}
	}
	return out
}

func tableRows(ds *domain.SectorDataset, values [][]float64) []domain.TableRow {
	id := ds.IDColumn()
	metrics := ds.MetricColumns()
	rows := make([]domain.TableRow, ds.Len())
	for i := range rows {
		row := domain.TableRow{id: ds.Cell(i, 0)}
		for j, m := range metrics {
			row[m] = values[i][j]
		}
		rows[i] = row
	}
	return rows
}
