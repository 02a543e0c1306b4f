package exporter

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bvmtdash/pkg/contracts/domain"
)

// ChartOptions sizes the rendered chart
type ChartOptions struct {
	Width  vg.Length
	Height vg.Length
	Title  string
}

// DefaultChartOptions matches the dashboard figure height (800px at 96 dpi)
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:  14 * vg.Inch,
		Height: 8.33 * vg.Inch,
	}
}

// WriteChartPNG renders a figure as a grouped bar chart: one bar series per
// trace, offset around each company's slot on the x axis.
func WriteChartPNG(out io.Writer, fig domain.Figure, opts ChartOptions) error {
	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)

	if fig.Layout != nil {
		p.X.Label.Text = fig.Layout.XAxis.Title.Text
		p.Y.Label.Text = fig.Layout.YAxis.Title.Text
		if fig.Layout.XAxis.TickAngle != 0 {
			p.X.Tick.Label.Rotation = float64(fig.Layout.XAxis.TickAngle) * math.Pi / 180
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var companies []string
	if len(fig.Data) > 0 {
		companies = fig.Data[0].X
	}

	if len(companies) > 0 {
		n := len(fig.Data)
		width := vg.Points(60) / vg.Length(n)
		for i, trace := range fig.Data {
			values := make(plotter.Values, len(trace.Y))
			copy(values, trace.Y)

			bars, err := plotter.NewBarChart(values, width)
			if err != nil {
				return fmt.Errorf("trace %q: %w", trace.Name, err)
			}
			bars.LineStyle.Width = vg.Length(0)
			bars.Color = plotutil.Color(i)
			bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width

			p.Add(bars)
			p.Legend.Add(trace.Name, bars)
		}
		p.NominalX(companies...)
	}

	opts = withDefaults(opts)
	w, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err = w.WriteTo(out)
	return err
}

func withDefaults(opts ChartOptions) ChartOptions {
	def := DefaultChartOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	return opts
}
