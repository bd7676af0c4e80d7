package core

import (
	"math"
	"testing"
	"time"

	"github.com/leen324/locscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutUsableArea(t *testing.T) {
	area := DefaultLayout().UsableArea()
	assert.Equal(t, 20.0, area.Left)
	assert.Equal(t, 990.0, area.Right)
	assert.Equal(t, 10.0, area.Top)
	assert.Equal(t, 570.0, area.Bottom)
	assert.Equal(t, 970.0, area.Width)
	assert.Equal(t, 560.0, area.Height)
}

func TestNewScalesEmpty(t *testing.T) {
	s := NewScales(nil, DefaultLayout(), [2]float64{2, 30})
	area := DefaultLayout().UsableArea()

	assert.Equal(t, area.Left, s.X.Scale(time.Unix(0, 0)))
	assert.Equal(t, 2.0, s.R.Scale(100), "empty set radius is the minimum")
	assert.False(t, math.IsNaN(s.X.Scale(time.Now())))
}

func TestNewScalesSingleTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := timedCommit("only", ts, 5)
	s := NewScales([]schema.Commit{c}, DefaultLayout(), [2]float64{2, 30})

	x, y, ok := s.Project(c)
	require.True(t, ok)
	area := DefaultLayout().UsableArea()
	assert.False(t, math.IsNaN(x))
	assert.GreaterOrEqual(t, x, area.Left)
	assert.LessOrEqual(t, x, area.Right)
	assert.InDelta(t, area.Bottom-(12.0/24.0)*area.Height, y, 1e-9)

	r := s.Radius(c)
	assert.False(t, math.IsNaN(r))
	assert.InDelta(t, 16.0, r, 1e-9, "degenerate size domain maps to the middle of the range")
}

func TestNewScalesNiceDomain(t *testing.T) {
	a := timedCommit("a", time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), 1)
	b := timedCommit("b", time.Date(2024, 1, 5, 15, 45, 0, 0, time.UTC), 100)
	s := NewScales([]schema.Commit{a, b}, DefaultLayout(), [2]float64{2, 30})

	assert.True(t, s.X.D0.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.X.D1.Equal(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)))

	assert.InDelta(t, 2.0, s.Radius(a), 1e-9)
	assert.InDelta(t, 30.0, s.Radius(b), 1e-9)

	short := timedCommit("c", time.Date(2024, 1, 1, 11, 10, 0, 0, time.UTC), 3)
	hourly := NewScales([]schema.Commit{a, short}, DefaultLayout(), [2]float64{2, 30})
	assert.True(t, hourly.X.D0.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, hourly.X.D1.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestScalesAttrs(t *testing.T) {
	c := timedCommit("a", time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), 4)
	s := NewScales([]schema.Commit{c}, DefaultLayout(), [2]float64{2, 30})
	attrs := s.Attrs(c)

	assert.Equal(t, PointFill, attrs.Fill)
	assert.Equal(t, RestingOpacity, attrs.FillOpacity)
	assert.Equal(t, s.Radius(c), attrs.R)

	_, _, ok := s.Project(schema.Commit{ID: "untimed"})
	assert.False(t, ok)
}

func TestFormatHourTick(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{6, "06:00"},
		{13.5, "13:00"},
		{24, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHourTick(tt.in))
	}
}

func TestHourTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 6, 12, 18, 24}, HourTicks(6))
	assert.Len(t, HourTicks(0), 13)
}
