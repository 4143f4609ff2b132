// Package chart は予測データのPNGチャートを描画します。
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

// Renderer draws forecast charts. The zero value uses the default size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a Renderer with the default 900x400 size.
func NewRenderer() *Renderer {
	return &Renderer{Width: 900, Height: 400}
}

// RenderPNG renders a line chart of the predicted close with the high/low band.
// Three series: Close (blue solid), High (green dashed), Low (red dashed).
func (r *Renderer) RenderPNG(ticker string, predictions []entity.PricePrediction) ([]byte, error) {
	if len(predictions) < 2 {
		return nil, fmt.Errorf("need at least 2 predictions, got %d", len(predictions))
	}

	xValues := make([]time.Time, len(predictions))
	closeY := make([]float64, len(predictions))
	highY := make([]float64, len(predictions))
	lowY := make([]float64, len(predictions))
	for i, p := range predictions {
		xValues[i] = p.Date
		closeY[i] = p.Close
		highY[i] = p.High
		lowY[i] = p.Low
	}

	band := func(name, hex string, ys []float64) chart.TimeSeries {
		return chart.TimeSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(hex),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues,
			YValues: ys,
		}
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: closeY,
	}

	width, height := r.Width, r.Height
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 400
	}

	graph := chart.Chart{
		Title:  ticker + " 7-day forecast",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).UTC().Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			closeSeries,
			band("High", "16a34a", highY), // green-600
			band("Low", "dc2626", lowY),   // red-600
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
