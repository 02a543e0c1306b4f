package dataprocessing

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"bvmtdash/pkg/contracts/domain"
)

// Summarize computes per-metric statistics over a sector's companies
func (t *Transformer) Summarize(sector string) (domain.SectorSummary, error) {
	if sector == "" {
		return domain.SectorSummary{Metrics: []domain.MetricSummary{}}, nil
	}

	ds, values, err := t.normalized(sector)
	if err != nil {
		return domain.SectorSummary{}, err
	}

	metrics := ds.MetricColumns()
	summary := domain.SectorSummary{
		Sector:    sector,
		Companies: ds.Len(),
		Metrics:   make([]domain.MetricSummary, 0, len(metrics)),
	}

	for j, col := range metrics {
		label, _ := t.labels.Title(col)
		series := make(stats.Float64Data, ds.Len())
		for i := range series {
			series[i] = values[i][j]
		}
		summary.Metrics = append(summary.Metrics, summarizeSeries(col, label, series))
	}
	return summary, nil
}

func summarizeSeries(column, label string, data stats.Float64Data) domain.MetricSummary {
	ms := domain.MetricSummary{Column: column, Label: label, Count: data.Len()}
	if data.Len() == 0 {
		return ms
	}

	// errors only come from empty input, checked above
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	minV, _ := stats.Min(data)
	maxV, _ := stats.Max(data)

	var std float64
	if data.Len() > 1 {
		std, _ = stats.StandardDeviationSample(data)
	}

	ms.Mean = round2(mean)
	ms.Median = round2(median)
	ms.Min = round2(minV)
	ms.Max = round2(maxV)
	ms.StdDev = round2(std)
	return ms
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Decimals).InexactFloat64()
}
