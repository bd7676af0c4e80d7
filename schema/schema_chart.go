package schema

import "time"

// ChartPoint is one projected commit, ready for a renderer.
type ChartPoint struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Author     string     `json:"author"`
	DateTime   time.Time  `json:"datetime"`
	HourFrac   float64    `json:"hour_frac"`
	TotalLines int        `json:"total_lines"`
	Attrs      PointAttrs `json:"attrs"`
	Selected   bool       `json:"selected"`
	Tooltip    string     `json:"tooltip"` // full tooltip date
}

// AxisTick is one labelled tick on a chart axis.
type AxisTick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// ChartData is a complete static rendering of the chart at one cutoff and brush.
type ChartData struct {
	Title     string           `json:"title"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	XMin      time.Time        `json:"x_min"`
	XMax      time.Time        `json:"x_max"`
	YTicks    []AxisTick       `json:"y_ticks"` // hour-of-day ticks, ascending
	Points    []ChartPoint     `json:"points"` // draw order, largest first
	Stats     GlobalStats      `json:"stats"`
	Selection SelectionSummary `json:"selection"`
}
