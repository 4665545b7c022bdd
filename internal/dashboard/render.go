package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"salesd/pkg/types"
)

// FormatLines renders each point as "YYYY-MM-DD: 123.45".
func FormatLines(fc types.Forecast) []string {
	out := make([]string, len(fc))
	for i, p := range fc {
		out[i] = fmt.Sprintf("%s: %.2f", p.Date.Format(types.DateLayout), p.Value)
	}
	return out
}

// RenderChart draws the forecast as an SVG line chart with dated x labels.
func RenderChart(w io.Writer, fc types.Forecast) error {
	if len(fc) < 2 {
		return fmt.Errorf("need at least two points to chart, got %d", len(fc))
	}
	xs := make([]time.Time, len(fc))
	ys := make([]float64, len(fc))
	lo, hi := fc[0].Value, fc[0].Value
	for i, p := range fc {
		xs[i], ys[i] = p.Date, p.Value
		lo, hi = min(lo, p.Value), max(hi, p.Value)
	}
	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(types.DateLayout),
			TickStyle:      chart.Style{TextRotationDegrees: 45.0},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "prediction",
				Style:   chart.Style{StrokeWidth: 2, DotWidth: 4},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	// a flat forecast has no y-range of its own
	if lo == hi {
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return graph.Render(chart.SVG, w)
}
