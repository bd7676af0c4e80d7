// Package algo has the pure math behind projection and reconciliation: scales,
// draw ordering and keyed diffs.
package algo

import (
	"math"
	"time"
)

// NiceUnit is the calendar unit a time domain is rounded out to.
type NiceUnit int

// Supported nice units.
const (
	NiceHour NiceUnit = iota
	NiceDay
)

// TimeScale maps a time domain linearly onto a numeric range.
type TimeScale struct {
	D0, D1 time.Time
	R0, R1 float64
}

// NewTimeScale creates a time scale.
func NewTimeScale(d0, d1 time.Time, r0, r1 float64) TimeScale {
	return TimeScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Scale maps t into the range. A zero-width domain maps to the range midpoint.
func (s TimeScale) Scale(t time.Time) float64 {
	span := s.D1.Sub(s.D0)
	if span == 0 {
		return (s.R0 + s.R1) / 2
	}
	frac := float64(t.Sub(s.D0)) / float64(span)
	return s.R0 + frac*(s.R1-s.R0)
}

// Invert maps a range value back into the domain. A zero-width range returns D0.
func (s TimeScale) Invert(v float64) time.Time {
	if s.R1 == s.R0 {
		return s.D0
	}
	frac := (v - s.R0) / (s.R1 - s.R0)
	return s.D0.Add(time.Duration(math.Round(frac * float64(s.D1.Sub(s.D0)))))
}

// Nice widens the domain outward to whole units, read in loc (nil keeps each
// endpoint's own location).
func (s TimeScale) Nice(unit NiceUnit, loc *time.Location) TimeScale {
	s.D0 = floorTime(s.D0, unit, loc)
	s.D1 = ceilTime(s.D1, unit, loc)
	return s
}

func floorTime(t time.Time, unit NiceUnit, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	switch unit {
	case NiceDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
}

func ceilTime(t time.Time, unit NiceUnit, loc *time.Location) time.Time {
	floor := floorTime(t, unit, loc)
	if floor.Equal(t) {
		return floor
	}
	switch unit {
	case NiceDay:
		return floor.AddDate(0, 0, 1)
	default:
		return floor.Add(time.Hour)
	}
}

// LinearScale maps a numeric domain linearly onto a numeric range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinearScale creates a linear scale.
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Scale maps v into the range. A zero-width domain maps to the range midpoint.
func (s LinearScale) Scale(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Invert maps a range value back into the domain. A zero-width range returns D0.
func (s LinearScale) Invert(v float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}
	return s.D0 + (v-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// SqrtScale maps the square root of a domain linearly onto a range, so that
// area grows with the value when the output is a radius.
type SqrtScale struct {
	D0, D1 float64
	R0, R1 float64
}

// NewSqrtScale creates a square-root scale.
func NewSqrtScale(d0, d1, r0, r1 float64) SqrtScale {
	return SqrtScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Scale maps v into the range. A zero-width domain maps to the range midpoint.
func (s SqrtScale) Scale(v float64) float64 {
	t0, t1 := signedSqrt(s.D0), signedSqrt(s.D1)
	if t1 == t0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (signedSqrt(v)-t0)/(t1-t0)*(s.R1-s.R0)
}

func signedSqrt(v float64) float64 {
	if v < 0 {
		return -math.Sqrt(-v)
	}
	return math.Sqrt(v)
}
