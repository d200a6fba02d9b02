// dashboard/chart.go
package dashboard

import (
	"bytes"
	"errors"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "300px"
	dailyUsageColor    = "#8884d8"
)

// ChartOptions tunes the rendered daily usage chart.
type ChartOptions struct {
	Title string
	// Theme is a go-echarts theme name; empty uses the light theme.
	Theme string
	// AssetsHost overrides where the ECharts script is loaded from.
	AssetsHost string
	Height     string
}

// RenderDailyUsageChart renders the daily try-on series of o as a standalone HTML
// page with a single line chart.
func RenderDailyUsageChart(o *Overview, options ChartOptions) (string, error) {
	if o == nil {
		return "", errors.New("overview is nil")
	}
	if options.Title == "" {
		options.Title = "Daily Usage"
	}
	if options.Theme == "" {
		options.Theme = types.ThemeWesteros
	}
	if options.Height == "" {
		options.Height = defaultChartHeight
	}

	initOpts := opts.Initialization{
		Theme:  options.Theme,
		Width:  "100%",
		Height: options.Height,
	}
	if options.AssetsHost != "" {
		initOpts.AssetsHost = options.AssetsHost
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: options.Title, Subtitle: o.Period}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	labels := make([]string, len(o.Daily))
	data := make([]opts.LineData, len(o.Daily))
	for i, p := range o.Daily {
		labels[i] = p.Label
		data[i] = opts.LineData{Name: p.Label, Value: p.TryOns}
	}

	line.SetXAxis(labels).AddSeries("Try-Ons", data)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: dailyUsageColor, Width: 2}),
	)

	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
