package core

import (
	"slices"
	"time"

	"github.com/leen324/locscope/core/algo"
	"github.com/leen324/locscope/schema"
)

// PointHandlers are the pointer listeners attached to a point when it is created.
type PointHandlers struct {
	OnEnter func(id string, x, y float64)
	OnLeave func(id string)
}

// Surface is the rendering target for commit points and the tooltip.
// Elements are keyed by commit id.
type Surface interface {
	Create(id string, attrs schema.PointAttrs, handlers PointHandlers)
	Update(id string, attrs schema.PointAttrs)
	Remove(id string)
	SetSelected(id string, selected bool)
	Order(ids []string)
	ShowTooltip(t schema.Tooltip)
	HideTooltip()
}

// ChartState is everything the view derives from the current filters.
type ChartState struct {
	Scales    Scales
	Visible   []schema.Commit
	Selection *schema.Rect
	Selected  []schema.Commit
	Cutoff    *time.Time
	Position  float64
}

// RenderResult reports what one render did to the surface.
type RenderResult struct {
	Entered []string                     `json:"entered"`
	Updated []string                     `json:"updated"`
	Exited  []string                     `json:"exited"`
	Order   []string                     `json:"order"` // draw order, largest first
	States  map[string]schema.PointState `json:"states"` // states before settling
}

// ViewUpdater reconciles a Surface against the visible commits and owns ChartState.
type ViewUpdater struct {
	surface Surface
	layout  Layout
	radius  [2]float64
	loc     *time.Location

	state   ChartState
	points  map[string]schema.PointState
	attrs   map[string]schema.PointAttrs
	byID    map[string]schema.Commit
	drawn   []schema.Commit
	hovered string
}

// NewViewUpdater creates an updater with an empty chart.
func NewViewUpdater(surface Surface, layout Layout, radius [2]float64, loc *time.Location) *ViewUpdater {
	v := &ViewUpdater{
		surface: surface,
		layout:  layout,
		radius:  radius,
		loc:     loc,
		points:  make(map[string]schema.PointState),
		attrs:   make(map[string]schema.PointAttrs),
		byID:    make(map[string]schema.Commit),
	}
	v.state.Scales = NewScalesIn(nil, layout, radius, loc)
	v.state.Position = schema.SliderMax
	return v
}

// State returns the current chart state.
func (v *ViewUpdater) State() ChartState {
	return v.state
}

// PointState returns the lifecycle state of a point.
func (v *ViewUpdater) PointState(id string) schema.PointState {
	if s, ok := v.points[id]; ok {
		return s
	}
	return schema.PointAbsent
}

// SetCutoff records the temporal filter that produced the next visible set.
func (v *ViewUpdater) SetCutoff(cutoff *time.Time, position float64) {
	v.state.Cutoff = cutoff
	v.state.Position = position
}

// Render rescales for the next visible set and reconciles the surface by commit id.
// Retained points keep their element and listeners and only get new attributes.
func (v *ViewUpdater) Render(next []schema.Commit) RenderResult {
	scales := NewScalesIn(next, v.layout, v.radius, v.loc)
	ordered := algo.DrawOrder(next)

	nextAttrs := make(map[string]schema.PointAttrs, len(ordered))
	for _, c := range ordered {
		a := scales.Attrs(c)
		if prev, ok := v.attrs[c.ID]; ok {
			a.FillOpacity = prev.FillOpacity
		}
		nextAttrs[c.ID] = a
	}

	diff := algo.KeyedDiff(v.drawn, ordered,
		func(c schema.Commit) string { return c.ID },
		func(a, b schema.Commit) bool { return v.attrs[a.ID] != nextAttrs[b.ID] },
	)

	result := RenderResult{States: make(map[string]schema.PointState, len(ordered)+len(diff.Removed))}
	for _, c := range diff.Removed {
		v.points[c.ID] = schema.PointExiting
		result.States[c.ID] = schema.PointExiting
	}
	for _, c := range diff.Added {
		v.points[c.ID] = schema.PointEntering
		result.States[c.ID] = schema.PointEntering
	}
	for _, r := range diff.Retained {
		result.States[r.Next.ID] = schema.PointPresent
	}

	for _, c := range diff.Removed {
		if v.hovered == c.ID {
			v.hovered = ""
			v.surface.HideTooltip()
		}
		v.surface.Remove(c.ID)
		result.Exited = append(result.Exited, c.ID)
	}
	for _, c := range diff.Added {
		v.surface.Create(c.ID, nextAttrs[c.ID], v.handlers())
		result.Entered = append(result.Entered, c.ID)
	}
	for _, r := range diff.Retained {
		if r.Changed {
			v.surface.Update(r.Next.ID, nextAttrs[r.Next.ID])
			result.Updated = append(result.Updated, r.Next.ID)
		}
	}
	result.Order = CommitIDs(ordered)
	if !diff.Empty() || !slices.Equal(CommitIDs(v.drawn), result.Order) {
		v.surface.Order(result.Order)
	}

	// Settle.
	for _, c := range diff.Removed {
		delete(v.points, c.ID)
		delete(v.byID, c.ID)
	}
	for _, c := range ordered {
		v.points[c.ID] = schema.PointPresent
		v.byID[c.ID] = c
	}
	v.attrs = nextAttrs
	v.drawn = ordered
	v.state.Scales = scales
	v.state.Visible = next
	return result
}

// Highlight applies the brush to the drawn points without rescaling and returns
// the selected commits in visible order.
func (v *ViewUpdater) Highlight(rect *schema.Rect) []schema.Commit {
	v.state.Selection = rect
	v.state.Selected = SelectCommits(v.state.Visible, rect, v.state.Scales)

	selected := make(map[string]struct{}, len(v.state.Selected))
	for _, c := range v.state.Selected {
		selected[c.ID] = struct{}{}
	}
	for _, c := range v.drawn {
		_, ok := selected[c.ID]
		v.surface.SetSelected(c.ID, ok)
	}
	return v.state.Selected
}

// PointerEnter raises the point's opacity and shows its tooltip at (x, y).
// It reports false when no such point is drawn.
func (v *ViewUpdater) PointerEnter(id string, x, y float64) bool {
	c, ok := v.byID[id]
	if !ok {
		return false
	}
	a := v.attrs[id]
	a.FillOpacity = HoverOpacity
	v.attrs[id] = a
	v.surface.Update(id, a)
	v.hovered = id
	v.surface.ShowTooltip(v.tooltipFor(c, x, y))
	return true
}

// PointerLeave restores the point's opacity. The tooltip is hidden only when
// it belongs to this point.
func (v *ViewUpdater) PointerLeave(id string) bool {
	if _, ok := v.byID[id]; !ok {
		return false
	}
	a := v.attrs[id]
	a.FillOpacity = RestingOpacity
	v.attrs[id] = a
	v.surface.Update(id, a)
	if v.hovered == id {
		v.hovered = ""
		v.surface.HideTooltip()
	}
	return true
}

func (v *ViewUpdater) handlers() PointHandlers {
	return PointHandlers{
		OnEnter: func(id string, x, y float64) { v.PointerEnter(id, x, y) },
		OnLeave: func(id string) { v.PointerLeave(id) },
	}
}

func (v *ViewUpdater) tooltipFor(c schema.Commit, x, y float64) schema.Tooltip {
	t := schema.Tooltip{
		Left:   x,
		Top:    y,
		Link:   c.URL,
		ID:     c.ID,
		Author: c.Author,
		Lines:  c.TotalLines,
	}
	if c.DateTime != nil {
		t.Date = FormatTooltipDate(*c.DateTime, v.loc)
	}
	return t
}

// FormatTooltipDate renders a full date such as "Monday, January 1, 2024".
func FormatTooltipDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TooltipDateLayout)
}
