package core

import (
	"github.com/leen324/locscope/schema"
)

// BuildChartData captures the drawn surface and the current frame as a static chart.
func BuildChartData(title string, s *Session) (schema.ChartData, error) {
	frame, err := s.Dispatcher.Snapshot()
	if err != nil {
		return schema.ChartData{}, err
	}
	st, err := s.Dispatcher.State()
	if err != nil {
		return schema.ChartData{}, err
	}

	byID := make(map[string]schema.Commit, len(st.Visible))
	for _, c := range st.Visible {
		byID[c.ID] = c
	}

	area := st.Scales.Layout.UsableArea()
	data := schema.ChartData{
		Title:     title,
		Width:     st.Scales.Layout.Width,
		Height:    st.Scales.Layout.Height,
		XMin:      st.Scales.X.Invert(area.Left),
		XMax:      st.Scales.X.Invert(area.Right),
		Stats:     frame.Stats,
		Selection: frame.Selection,
	}
	for _, h := range HourTicks(HourTickStep) {
		data.YTicks = append(data.YTicks, schema.AxisTick{Value: h, Label: FormatHourTick(h)})
	}
	for _, e := range s.Surface.Elements() {
		c, ok := byID[e.ID]
		if !ok || !c.HasTime() {
			continue
		}
		data.Points = append(data.Points, schema.ChartPoint{
			ID:         c.ID,
			URL:        c.URL,
			Author:     c.Author,
			DateTime:   *c.DateTime,
			HourFrac:   *c.HourFrac,
			TotalLines: c.TotalLines,
			Attrs:      e.Attrs,
			Selected:   e.Selected,
			Tooltip:    FormatTooltipDate(*c.DateTime, s.Dispatcher.loc),
		})
	}
	return data, nil
}
