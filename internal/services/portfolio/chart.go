package portfolio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/granahq/grana/internal/models"
)

// RenderAllocationChart renders a PNG bar chart of portfolio value per
// category. Returns raw PNG bytes.
func RenderAllocationChart(breakdown []models.CategoryBreakdown) ([]byte, error) {
	if len(breakdown) == 0 {
		return nil, fmt.Errorf("no categories to chart")
	}

	bars := make([]chart.Value, len(breakdown))
	for i, cb := range breakdown {
		bars[i] = chart.Value{
			Label: string(cb.Category),
			Value: cb.TotalValue,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("16a34a"), // green-600
				StrokeColor: drawing.ColorFromHex("16a34a"),
			},
		}
	}

	graph := chart.BarChart{
		Title:  "Allocation by Category",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth: 60,
		Bars:     bars,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("R$%.0f", f)
				}
				return ""
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderHistoryChart renders a PNG line chart of portfolio value over time
// from persisted snapshots. Two series: current value (green solid) and
// invested amount (gray dashed).
func RenderHistoryChart(snapshots []*models.PortfolioSnapshot) ([]byte, error) {
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(snapshots))
	}

	xValues := make([]time.Time, len(snapshots))
	valueY := make([]float64, len(snapshots))
	investedY := make([]float64, len(snapshots))

	for i, s := range snapshots {
		xValues[i] = s.TakenAt
		valueY[i] = s.TotalValue
		investedY[i] = s.TotalInvested
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("16a34a"), // green-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	investedSeries := chart.TimeSeries{
		Name: "Invested",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: investedY,
	}

	graph := chart.Chart{
		Title:  "Portfolio History",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("R$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			investedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
