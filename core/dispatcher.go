package core

import (
	"errors"
	"sync"
	"time"

	"github.com/leen324/locscope/core/agg"
	"github.com/leen324/locscope/schema"
)

// Trigger names, as reported to observers and in frames.
const (
	TriggerDataLoaded = "data_loaded"
	TriggerBrush      = "brush_changed"
	TriggerCutoff     = "cutoff_changed"
	TriggerHover      = "hover"
)

// Errors returned by the dispatcher.
var (
	ErrNoData       = errors.New("no dataset loaded")
	ErrUnknownPoint = errors.New("no such point on the chart")
)

// Frame is everything a host needs to refresh after one event.
type Frame struct {
	Trigger   string                  `json:"trigger"`
	Stats     schema.GlobalStats      `json:"stats"`
	Selection schema.SelectionSummary `json:"selection"`
	Render    *RenderResult           `json:"render,omitempty"` // nil when nothing was re-rendered
}

// Observer is told how long each event took to process.
type Observer interface {
	ObserveEvent(trigger string, elapsed time.Duration)
}

// DispatcherOptions configures projection and display.
type DispatcherOptions struct {
	Layout   Layout
	Radius   [2]float64
	Location *time.Location // nil keeps each timestamp's own offset
	Observer Observer
}

// Dispatcher runs the recomputation pipeline for each named trigger. Events are
// serialized so each one completes before the next is processed.
type Dispatcher struct {
	mu       sync.Mutex
	view     *ViewUpdater
	loc      *time.Location
	observer Observer

	data        *agg.Aggregate
	stats       schema.GlobalStats
	cutoffScale CutoffScale
}

// NewDispatcher creates a dispatcher drawing onto surface.
func NewDispatcher(surface Surface, opts DispatcherOptions) *Dispatcher {
	if opts.Layout == (Layout{}) {
		opts.Layout = DefaultLayout()
	}
	if opts.Radius == [2]float64{} {
		opts.Radius = [2]float64{2, 30}
	}
	return &Dispatcher{
		view:     NewViewUpdater(surface, opts.Layout, opts.Radius, opts.Location),
		loc:      opts.Location,
		observer: opts.Observer,
	}
}

// DataLoaded replaces all state with a new dataset, resets the cutoff to the
// maximum position, clears the brush and renders.
func (d *Dispatcher) DataLoaded(a agg.Aggregate) Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.observe(TriggerDataLoaded, time.Now())

	d.data = &a
	d.stats = ComputeGlobalStats(a.Records, a.Commits, d.loc)
	d.cutoffScale = NewCutoffScale(a.Commits)

	render := d.applyCutoff(schema.SliderMax)
	d.view.Highlight(nil)
	return d.frame(TriggerDataLoaded, &render)
}

// BrushChanged updates the selection and breakdown. It never rescales.
func (d *Dispatcher) BrushChanged(rect *schema.Rect) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return Frame{}, ErrNoData
	}
	defer d.observe(TriggerBrush, time.Now())

	d.view.Highlight(rect)
	return d.frame(TriggerBrush, nil), nil
}

// CutoffChanged recomputes the visible set for a slider position, rescales and
// renders incrementally, then re-applies the current brush against the new scales.
func (d *Dispatcher) CutoffChanged(pos float64) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return Frame{}, ErrNoData
	}
	defer d.observe(TriggerCutoff, time.Now())

	render := d.applyCutoff(pos)
	d.view.Highlight(d.view.State().Selection)
	return d.frame(TriggerCutoff, &render), nil
}

// CutoffAt is CutoffChanged for a point in time instead of a slider position.
// The time is clamped to the commit time domain and the slider position is
// derived from it.
func (d *Dispatcher) CutoffAt(t time.Time) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return Frame{}, ErrNoData
	}
	defer d.observe(TriggerCutoff, time.Now())

	var cutoff *time.Time
	if lo, hi, ok := d.cutoffScale.Domain(); ok {
		switch {
		case t.Before(lo):
			t = lo
		case t.After(hi):
			t = hi
		}
		cutoff = &t
	}
	render := d.render(cutoff, d.cutoffScale.Position(t))
	d.view.Highlight(d.view.State().Selection)
	return d.frame(TriggerCutoff, &render), nil
}

// Hover drives the tooltip: enter shows it at (x, y), otherwise it is hidden.
func (d *Dispatcher) Hover(id string, x, y float64, enter bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return ErrNoData
	}
	defer d.observe(TriggerHover, time.Now())

	var ok bool
	if enter {
		ok = d.view.PointerEnter(id, x, y)
	} else {
		ok = d.view.PointerLeave(id)
	}
	if !ok {
		return ErrUnknownPoint
	}
	return nil
}

// Snapshot returns the current frame without changing anything.
func (d *Dispatcher) Snapshot() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return Frame{}, ErrNoData
	}
	return d.frame("", nil), nil
}

// State returns the current chart state.
func (d *Dispatcher) State() (ChartState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return ChartState{}, ErrNoData
	}
	return d.view.State(), nil
}

// Dataset returns the loaded aggregate.
func (d *Dispatcher) Dataset() (agg.Aggregate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return agg.Aggregate{}, ErrNoData
	}
	return *d.data, nil
}

// applyCutoff must be called with d.mu held.
func (d *Dispatcher) applyCutoff(pos float64) RenderResult {
	pos = ClampPosition(pos)
	return d.render(d.cutoffScale.Cutoff(pos), pos)
}

func (d *Dispatcher) render(cutoff *time.Time, pos float64) RenderResult {
	d.view.SetCutoff(cutoff, pos)
	return d.view.Render(VisibleCommits(d.data.Commits, cutoff))
}

// frame must be called with d.mu held.
func (d *Dispatcher) frame(trigger string, render *RenderResult) Frame {
	st := d.view.State()
	src, baseline := BreakdownSource(st.Selected, st.Visible)
	return Frame{
		Trigger: trigger,
		Stats:   d.stats,
		Selection: schema.SelectionSummary{
			Cutoff:       st.Cutoff,
			Readout:      FormatReadout(st.Cutoff, d.loc),
			Position:     st.Position,
			Visible:      len(st.Visible),
			Selected:     CommitIDs(st.Selected),
			CountText:    SelectionCountText(len(st.Selected)),
			Breakdown:    ComputeBreakdown(d.data.Index.LinesOf(src)),
			BaselineUsed: baseline,
		},
		Render: render,
	}
}

func (d *Dispatcher) observe(trigger string, start time.Time) {
	if d.observer != nil {
		d.observer.ObserveEvent(trigger, time.Since(start))
	}
}
