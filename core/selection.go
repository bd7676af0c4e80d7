package core

import (
	"math"
	"time"

	"github.com/leen324/locscope/core/algo"
	"github.com/leen324/locscope/schema"
)

// CutoffScale converts a slider position into a temporal cutoff.
// Its domain is the [min, max] commit timestamp and its range the slider bounds.
type CutoffScale struct {
	scale algo.TimeScale
	ok    bool
}

// NewCutoffScale builds the slider scale over every timestamped commit.
func NewCutoffScale(commits []schema.Commit) CutoffScale {
	lo, hi, ok := timeExtent(commits)
	if !ok {
		return CutoffScale{}
	}
	return CutoffScale{scale: algo.NewTimeScale(lo, hi, schema.SliderMin, schema.SliderMax), ok: true}
}

// Cutoff returns the cutoff for a slider position, or nil when no commit has a timestamp.
// The maximum position yields exactly the latest commit time.
func (c CutoffScale) Cutoff(pos float64) *time.Time {
	if !c.ok {
		return nil
	}
	pos = ClampPosition(pos)
	var t time.Time
	if pos >= schema.SliderMax {
		t = c.scale.D1
	} else {
		t = c.scale.Invert(pos)
	}
	return &t
}

// Position maps a time back onto the slider, clamped to its bounds.
func (c CutoffScale) Position(t time.Time) float64 {
	if !c.ok {
		return schema.SliderMax
	}
	return ClampPosition(c.scale.Scale(t))
}

// Domain returns the earliest and latest commit time, if any.
func (c CutoffScale) Domain() (lo, hi time.Time, ok bool) {
	return c.scale.D0, c.scale.D1, c.ok
}

// ClampPosition bounds a slider position; NaN is treated as the maximum.
func ClampPosition(pos float64) float64 {
	if math.IsNaN(pos) {
		return schema.SliderMax
	}
	return math.Max(schema.SliderMin, math.Min(schema.SliderMax, pos))
}

// VisibleCommits keeps commits at or before the cutoff, in input order.
// Commits without a timestamp are never visible, and a nil cutoff shows nothing.
func VisibleCommits(commits []schema.Commit, cutoff *time.Time) []schema.Commit {
	if cutoff == nil {
		return nil
	}
	var visible []schema.Commit
	for _, c := range commits {
		if c.DateTime != nil && !c.DateTime.After(*cutoff) {
			visible = append(visible, c)
		}
	}
	return visible
}

// IsCommitSelected projects a commit through the current scales and tests it
// against the rectangle. No rectangle selects nothing.
func IsCommitSelected(rect *schema.Rect, c schema.Commit, scales Scales) bool {
	if rect == nil {
		return false
	}
	x, y, ok := scales.Project(c)
	return ok && rect.Contains(x, y)
}

// SelectCommits filters the visible commits by the brush rectangle.
func SelectCommits(visible []schema.Commit, rect *schema.Rect, scales Scales) []schema.Commit {
	if rect == nil {
		return nil
	}
	var selected []schema.Commit
	for _, c := range visible {
		if IsCommitSelected(rect, c, scales) {
			selected = append(selected, c)
		}
	}
	return selected
}

// BreakdownSource picks the commits whose records feed the breakdown: the selection
// when it is non-empty, otherwise the visible set. baseline reports the fallback.
func BreakdownSource(selected, visible []schema.Commit) (commits []schema.Commit, baseline bool) {
	if len(selected) > 0 {
		return selected, false
	}
	return visible, true
}

// FormatReadout renders a cutoff as "January 2, 2024 at 8:00 PM" in loc.
// A nil cutoff renders as an empty string.
func FormatReadout(cutoff *time.Time, loc *time.Location) string {
	if cutoff == nil {
		return ""
	}
	t := *cutoff
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ReadoutLayout)
}

// CommitIDs lists the ids of commits in order.
func CommitIDs(commits []schema.Commit) []string {
	ids := make([]string, len(commits))
	for i, c := range commits {
		ids[i] = c.ID
	}
	return ids
}
