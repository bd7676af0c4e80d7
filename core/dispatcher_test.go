package core

import (
	"sync"
	"testing"
	"time"

	"github.com/leen324/locscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	triggers []string
}

func (o *recordingObserver) ObserveEvent(trigger string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.triggers = append(o.triggers, trigger)
}

func TestDispatcherBeforeLoad(t *testing.T) {
	d := NewDispatcher(NewMemorySurface(), DispatcherOptions{})

	_, err := d.BrushChanged(nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = d.CutoffChanged(50)
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, d.Hover("x", 0, 0, true), ErrNoData)
	_, err = d.Snapshot()
	assert.ErrorIs(t, err, ErrNoData)
	_, err = d.State()
	assert.ErrorIs(t, err, ErrNoData)
	_, err = d.Dataset()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDispatcherDataLoaded(t *testing.T) {
	observer := &recordingObserver{}
	surface := NewMemorySurface()
	d := NewDispatcher(surface, DispatcherOptions{Observer: observer})
	frame := d.DataLoaded(fixtureAggregate(t))

	assert.Equal(t, TriggerDataLoaded, frame.Trigger)
	assert.Equal(t, 3, frame.Stats.TotalCommits)
	assert.Equal(t, schema.SliderMax, frame.Selection.Position)
	assert.Equal(t, 3, frame.Selection.Visible)
	assert.Equal(t, "No commits selected", frame.Selection.CountText)
	assert.True(t, frame.Selection.BaselineUsed)
	assert.Equal(t, 8, frame.Selection.Breakdown.Total)
	assert.Equal(t, "January 3, 2024 at 2:15 PM", frame.Selection.Readout)
	require.NotNil(t, frame.Render)
	assert.Len(t, frame.Render.Entered, 3)
	assert.Len(t, surface.Elements(), 3)
	assert.Equal(t, []string{TriggerDataLoaded}, observer.triggers)
}

func TestDispatcherBrushDoesNotRescale(t *testing.T) {
	d := NewDispatcher(NewMemorySurface(), DispatcherOptions{})
	d.DataLoaded(fixtureAggregate(t))
	before, err := d.State()
	require.NoError(t, err)

	frame, err := d.BrushChanged(&schema.Rect{X0: 0, Y0: 0, X1: DefaultWidth, Y1: DefaultHeight})
	require.NoError(t, err)
	assert.Nil(t, frame.Render)
	assert.Len(t, frame.Selection.Selected, 3)
	assert.Equal(t, "3 commits selected", frame.Selection.CountText)
	assert.False(t, frame.Selection.BaselineUsed)

	after, err := d.State()
	require.NoError(t, err)
	assert.Equal(t, before.Scales, after.Scales)

	frame, err = d.BrushChanged(nil)
	require.NoError(t, err)
	assert.Empty(t, frame.Selection.Selected)
	assert.True(t, frame.Selection.BaselineUsed)
}

func TestDispatcherCutoffReappliesBrush(t *testing.T) {
	surface := NewMemorySurface()
	d := NewDispatcher(surface, DispatcherOptions{})
	d.DataLoaded(fixtureAggregate(t))
	_, err := d.BrushChanged(&schema.Rect{X0: 0, Y0: 0, X1: DefaultWidth, Y1: DefaultHeight})
	require.NoError(t, err)

	frame, err := d.CutoffChanged(schema.SliderMin)
	require.NoError(t, err)
	require.NotNil(t, frame.Render)
	assert.ElementsMatch(t, []string{"d4e5f6", "a7b8c9"}, frame.Render.Exited)
	assert.Equal(t, 1, frame.Selection.Visible)
	assert.Equal(t, []string{"c1a2b3"}, frame.Selection.Selected, "selection is a subset of the visible set")
	assert.Equal(t, 4, frame.Selection.Breakdown.Total)
	assert.Equal(t, "January 1, 2024 at 9:30 AM", frame.Selection.Readout)
	assert.Len(t, surface.Elements(), 1)

	frame, err = d.CutoffChanged(schema.SliderMax)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"d4e5f6", "a7b8c9"}, frame.Render.Entered)
	assert.Equal(t, 3, frame.Selection.Visible)
}

func TestDispatcherCutoffAt(t *testing.T) {
	d := NewDispatcher(NewMemorySurface(), DispatcherOptions{})
	_, err := d.CutoffAt(time.Now())
	assert.ErrorIs(t, err, ErrNoData)
	d.DataLoaded(fixtureAggregate(t))

	bob := time.Date(2024, 1, 2, 20, 0, 0, 0, time.FixedZone("", -5*3600))
	frame, err := d.CutoffAt(bob)
	require.NoError(t, err)
	assert.Equal(t, TriggerCutoff, frame.Trigger)
	assert.Equal(t, 2, frame.Selection.Visible, "a commit at exactly the cutoff is visible")
	assert.Equal(t, "January 2, 2024 at 8:00 PM", frame.Selection.Readout)
	// 34h30m into a 52h45m domain.
	assert.InDelta(t, 65.4, frame.Selection.Position, 0.1)

	frame, err = d.CutoffAt(bob.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, schema.SliderMin, frame.Selection.Position)
	assert.Equal(t, 1, frame.Selection.Visible, "times before the first commit clamp to it")

	frame, err = d.CutoffAt(bob.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, schema.SliderMax, frame.Selection.Position)
	assert.Equal(t, 3, frame.Selection.Visible)
}

func TestDispatcherRecomputeIsIdempotent(t *testing.T) {
	d := NewDispatcher(NewMemorySurface(), DispatcherOptions{})
	d.DataLoaded(fixtureAggregate(t))
	rect := &schema.Rect{X0: 0, Y0: 0, X1: 500, Y1: 600}

	first, err := d.BrushChanged(rect)
	require.NoError(t, err)
	second, err := d.BrushChanged(rect)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := d.CutoffChanged(40)
	require.NoError(t, err)
	b, err := d.CutoffChanged(40)
	require.NoError(t, err)
	assert.Equal(t, a.Selection, b.Selection)
	assert.Empty(t, b.Render.Entered)
	assert.Empty(t, b.Render.Exited)
	assert.Empty(t, b.Render.Updated)
}

func TestDispatcherHover(t *testing.T) {
	surface := NewMemorySurface()
	d := NewDispatcher(surface, DispatcherOptions{})
	d.DataLoaded(fixtureAggregate(t))

	require.NoError(t, d.Hover("d4e5f6", 10, 20, true))
	tip := surface.Tooltip()
	assert.False(t, tip.Hidden)
	assert.Equal(t, "Bob", tip.Author)
	assert.Equal(t, "https://github.com/o/r/commit/d4e5f6", tip.Link)

	require.NoError(t, d.Hover("d4e5f6", 0, 0, false))
	assert.True(t, surface.Tooltip().Hidden)

	assert.ErrorIs(t, d.Hover("nope", 0, 0, true), ErrUnknownPoint)
}

func TestDispatcherDataLoadedReplacesState(t *testing.T) {
	surface := NewMemorySurface()
	d := NewDispatcher(surface, DispatcherOptions{})
	d.DataLoaded(fixtureAggregate(t))
	_, err := d.BrushChanged(&schema.Rect{X0: 0, Y0: 0, X1: DefaultWidth, Y1: DefaultHeight})
	require.NoError(t, err)
	_, err = d.CutoffChanged(10)
	require.NoError(t, err)

	other := []schema.Commit{timedCommit("z", time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), 2)}
	a := fixtureAggregate(t)
	a.Commits = other
	frame := d.DataLoaded(a)

	assert.Equal(t, schema.SliderMax, frame.Selection.Position)
	assert.Empty(t, frame.Selection.Selected, "brush is cleared on load")
	assert.Equal(t, []string{"z"}, frame.Render.Entered)
	assert.Len(t, surface.Elements(), 1)
}
