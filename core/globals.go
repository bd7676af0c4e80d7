package core

// Visual constants of a commit point.
const (
	PointFill      = "steelblue"
	RestingOpacity = 0.7
	HoverOpacity   = 1.0
)

// HourTickStep is the spacing of the y-axis ticks, in hours.
const HourTickStep = 2

// Display formats for timestamps.
const (
	// TooltipDateLayout is a full date, e.g. "Monday, January 1, 2024".
	TooltipDateLayout = "Monday, January 2, 2006"

	// ReadoutLayout is a long date with a short time, e.g. "January 2, 2024 at 8:00 PM".
	ReadoutLayout = "January 2, 2006 at 3:04 PM"
)

// CSS classes of the summary panels.
const (
	StatsPanelClass     = "stats"
	BreakdownPanelClass = "breakdown"
)
