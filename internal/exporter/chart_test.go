package exporter

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"bvmtdash/pkg/contracts/domain"
)

func sampleFigure() domain.Figure {
	return domain.Figure{
		Data: []domain.BarTrace{
			{Type: "bar", Name: "ROE( resultat / vc )", X: []string{"BIAT", "STB"}, Y: []float64{15.2, 8.75}},
			{Type: "bar", Name: "ratio 1( dette / total )", X: []string{"BIAT", "STB"}, Y: []float64{88.1, 91.3}},
		},
		Layout: &domain.FigureLayout{
			BarMode: "group",
			XAxis:   domain.Axis{Title: domain.Title{Text: "Entreprise"}, TickAngle: 15},
			YAxis:   domain.Axis{Title: domain.Title{Text: "Pourcentage (%)"}},
		},
	}
}

func TestWriteChartPNG(t *testing.T) {
	var buf bytes.Buffer
	opts := ChartOptions{Width: 6 * vg.Inch, Height: 4 * vg.Inch, Title: "Banques"}
	require.NoError(t, WriteChartPNG(&buf, sampleFigure(), opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
	assert.Greater(t, img.Bounds().Dy(), 0)
}

func TestWriteChartPNG_EmptyFigure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChartPNG(&buf, domain.Figure{}, ChartOptions{}))

	_, err := png.Decode(&buf)
	require.NoError(t, err)
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(ChartOptions{Width: 2 * vg.Inch})
	assert.Equal(t, 2*vg.Inch, opts.Width)
	assert.Equal(t, DefaultChartOptions().Height, opts.Height)
}
