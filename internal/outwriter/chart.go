package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
)

const (
	pointColor    = "steelblue"
	selectedColor = "#ff6b6b"
	pieRadius     = "60%"
	minSymbolSize = 2
)

// WriteChart writes the chart page as a self-contained HTML document.
func WriteChart(data schema.ChartData, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.TextOut, schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return RenderChartPage(w, data)
		}, "Wrote chart")
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, data)
		}, "Wrote JSON")
	default:
		return unsupported(cfg.Output, "chart")
	}
}

// RenderChartPage renders the commit scatter, the breakdown pie and both summary panels.
func RenderChartPage(w io.Writer, data schema.ChartData) error {
	page := components.NewPage()
	page.PageTitle = data.Title
	page.AddCharts(buildScatter(data), buildBreakdownPie(data.Selection.Breakdown))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}

	if err := RenderDefinitionList(w, "stats", StatsPairs(data.Stats)); err != nil {
		return err
	}
	return RenderDefinitionList(w, "breakdown", BreakdownPairs(data.Selection.Breakdown))
}

func buildScatter(data schema.ChartData) *charts.Scatter {
	scatter := charts.NewScatter()

	subtitle := data.Selection.CountText
	if data.Selection.Readout != "" {
		subtitle = fmt.Sprintf("%s, up to %s", subtitle, data.Selection.Readout)
	}

	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: data.Title,
			Width:     fmt.Sprintf("%.0fpx", data.Width),
			Height:    fmt.Sprintf("%.0fpx", data.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: "Commits by time of day", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Date",
			Type: "time",
			Min:  data.XMin.UnixMilli(),
			Max:  data.XMax.UnixMilli(),
		}),
		charts.WithYAxisOpts(hourAxis(data.YTicks)),
	)

	plain := make([]opts.ScatterData, 0, len(data.Points))
	selected := make([]opts.ScatterData, 0, len(data.Selection.Selected))
	for _, p := range data.Points {
		point := opts.ScatterData{
			Name:       p.ID,
			Value:      []any{p.DateTime.UnixMilli(), p.HourFrac, p.TotalLines, p.ID, p.Tooltip},
			SymbolSize: max(int(2*p.Attrs.R), minSymbolSize),
		}
		if p.Selected {
			selected = append(selected, point)
		} else {
			plain = append(plain, point)
		}
	}

	scatter.AddSeries("Commits", plain,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: pointColor}),
	)
	if len(selected) > 0 {
		scatter.AddSeries("Selected", selected,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: selectedColor}),
		)
	}
	return scatter
}

// hourAxis pins the y axis to a day and labels it with the given ticks,
// which must be evenly spaced.
func hourAxis(ticks []schema.AxisTick) opts.YAxis {
	axis := opts.YAxis{
		Name: "Time of day",
		Type: "value",
		Min:  0,
		Max:  24,
	}
	if len(ticks) < 2 {
		return axis
	}

	step := ticks[1].Value - ticks[0].Value
	axis.SplitNumber = len(ticks) - 1
	axis.MinInterval = step
	axis.MaxInterval = step

	var labels strings.Builder
	for i, t := range ticks {
		if i > 0 {
			labels.WriteString(",")
		}
		fmt.Fprintf(&labels, "%s:'%s'", strconv.FormatFloat(t.Value, 'f', -1, 64), t.Label)
	}
	axis.AxisLabel = &opts.AxisLabel{
		Formatter: opts.FuncOpts(fmt.Sprintf("function (value) { var labels = {%s}; return labels[value] || ''; }", labels.String())),
	}
	return axis
}

func buildBreakdownPie(b schema.Breakdown) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Lines by type"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "400px"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	pieData := make([]opts.PieData, 0, len(b.Entries))
	for _, e := range b.Entries {
		pieData = append(pieData, opts.PieData{Name: e.Type, Value: e.Count})
	}

	pie.AddSeries("Lines", pieData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
			}),
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		)
	return pie
}
