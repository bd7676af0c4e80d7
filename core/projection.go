package core

import (
	"fmt"
	"math"
	"time"

	"github.com/leen324/locscope/core/algo"
	"github.com/leen324/locscope/schema"
)

// Chart layout defaults.
const (
	DefaultWidth  = 1000.0
	DefaultHeight = 600.0
)

// Margin is the padding between the chart edge and the plotting area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout is the fixed frame the scales project into.
type Layout struct {
	Width  float64
	Height float64
	Margin Margin
}

// Area is the usable plotting rectangle of a Layout.
type Area struct {
	Top, Right, Bottom, Left float64
	Width, Height            float64
}

// DefaultLayout returns a 1000x600 frame with room for both axes.
func DefaultLayout() Layout {
	return Layout{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Margin: Margin{Top: 10, Right: 10, Bottom: 30, Left: 20},
	}
}

// UsableArea returns the plotting rectangle inside the margins.
func (l Layout) UsableArea() Area {
	return Area{
		Top:    l.Margin.Top,
		Right:  l.Width - l.Margin.Right,
		Bottom: l.Height - l.Margin.Bottom,
		Left:   l.Margin.Left,
		Width:  l.Width - l.Margin.Left - l.Margin.Right,
		Height: l.Height - l.Margin.Top - l.Margin.Bottom,
	}
}

// Scales project a commit onto the chart: time on x, hour of day on y and size as radius.
type Scales struct {
	Layout Layout
	X      algo.TimeScale
	Y      algo.LinearScale
	R      algo.SqrtScale
}

// emptyDomainSpan is the fixed x domain width used when no commit is visible.
const emptyDomainSpan = 2 * time.Minute

// NewScales builds scales for the visible commits, niced in each timestamp's own offset.
func NewScales(visible []schema.Commit, layout Layout, radius [2]float64) Scales {
	return NewScalesIn(visible, layout, radius, nil)
}

// NewScalesIn builds scales for the visible commits. The x domain is niced to whole
// days, or whole hours when it spans less than two days, read in loc.
func NewScalesIn(visible []schema.Commit, layout Layout, radius [2]float64, loc *time.Location) Scales {
	area := layout.UsableArea()
	s := Scales{
		Layout: layout,
		Y:      algo.NewLinearScale(0, 24, area.Bottom, area.Top),
	}

	lo, hi, ok := timeExtent(visible)
	if !ok {
		epoch := time.Unix(0, 0).UTC()
		s.X = algo.NewTimeScale(epoch, epoch.Add(emptyDomainSpan), area.Left, area.Right)
		s.R = algo.NewSqrtScale(0, 0, radius[0], radius[0])
		return s
	}
	if lo.Equal(hi) {
		lo, hi = lo.Add(-time.Minute), hi.Add(time.Minute)
	}
	unit := algo.NiceDay
	if hi.Sub(lo) < 48*time.Hour {
		unit = algo.NiceHour
	}
	s.X = algo.NewTimeScale(lo, hi, area.Left, area.Right).Nice(unit, loc)

	minLines, maxLines := lineExtent(visible)
	s.R = algo.NewSqrtScale(float64(minLines), float64(maxLines), radius[0], radius[1])
	return s
}

// Project maps a commit to chart coordinates. Commits without a timestamp cannot be projected.
func (s Scales) Project(c schema.Commit) (x, y float64, ok bool) {
	if !c.HasTime() {
		return 0, 0, false
	}
	return s.X.Scale(*c.DateTime), s.Y.Scale(*c.HourFrac), true
}

// Radius maps a commit's size to its point radius.
func (s Scales) Radius(c schema.Commit) float64 {
	return s.R.Scale(float64(c.TotalLines))
}

// Attrs returns the visual attributes of a commit point at its resting opacity.
func (s Scales) Attrs(c schema.Commit) schema.PointAttrs {
	x, y, _ := s.Project(c)
	return schema.PointAttrs{
		CX:          x,
		CY:          y,
		R:           s.Radius(c),
		Fill:        PointFill,
		FillOpacity: RestingOpacity,
	}
}

// FormatHourTick renders a y-axis tick as "HH:00"; 24 wraps to "00:00".
func FormatHourTick(h float64) string {
	hour := int(math.Floor(h)) % 24
	if hour < 0 {
		hour += 24
	}
	return fmt.Sprintf("%02d:00", hour)
}

// HourTicks lists the y-axis tick values at the given step in hours.
func HourTicks(step int) []float64 {
	if step <= 0 {
		step = 2
	}
	var ticks []float64
	for h := 0; h <= 24; h += step {
		ticks = append(ticks, float64(h))
	}
	return ticks
}

// timeExtent returns the earliest and latest timestamps among commits that have one.
func timeExtent(commits []schema.Commit) (lo, hi time.Time, ok bool) {
	for _, c := range commits {
		if c.DateTime == nil {
			continue
		}
		t := *c.DateTime
		if !ok {
			lo, hi, ok = t, t, true
			continue
		}
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return lo, hi, ok
}

func lineExtent(commits []schema.Commit) (lo, hi int) {
	for i, c := range commits {
		if i == 0 || c.TotalLines < lo {
			lo = c.TotalLines
		}
		if i == 0 || c.TotalLines > hi {
			hi = c.TotalLines
		}
	}
	return lo, hi
}
