// Package schema has configs, models and global variables for all parts of locscope.
package schema

import (
	"math"
	"time"
)

// LineRecord is one changed source line of one commit, as read from loc.csv.
// Records are produced once at ingestion and never mutated.
type LineRecord struct {
	CommitID string     `json:"commit"`
	File     string     `json:"file"`
	Line     int        `json:"line"`   // 1-based line number, 0 when absent
	Type     string     `json:"type"`   // category tag such as a language
	Depth    int        `json:"depth"`  // nesting depth
	Length   int        `json:"length"` // line length in characters
	Author   string     `json:"author"`
	Date     *time.Time `json:"date"` // midnight of the author date in the author timezone
	Time     string     `json:"time"`
	Timezone string     `json:"timezone"`
	DateTime *time.Time `json:"datetime"`
}

// Commit is the aggregate of all LineRecords sharing a commit id.
// The records themselves live in a separate index, never on the Commit.
type Commit struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Author     string     `json:"author"`
	Date       *time.Time `json:"date"`
	Time       string     `json:"time"`
	Timezone   string     `json:"timezone"`
	DateTime   *time.Time `json:"datetime"`
	HourFrac   *float64   `json:"hour_frac"` // hours + minutes/60, nil iff DateTime is nil
	TotalLines int        `json:"total_lines"`
}

// HasTime reports whether the commit carries a timestamp and can be projected.
func (c Commit) HasTime() bool {
	return c.DateTime != nil && c.HourFrac != nil
}

// Rect is a brush rectangle given by two opposite corners in projected space.
// The corners may come in any order.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Contains reports whether (x, y) lies inside the rectangle, bounds inclusive.
func (r Rect) Contains(x, y float64) bool {
	return math.Min(r.X0, r.X1) <= x && x <= math.Max(r.X0, r.X1) &&
		math.Min(r.Y0, r.Y1) <= y && y <= math.Max(r.Y0, r.Y1)
}

// PointAttrs are the visual attributes of one rendered commit point.
type PointAttrs struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	Fill        string  `json:"fill"`
	FillOpacity float64 `json:"fill_opacity"`
}

// Tooltip is the content and placement of the commit tooltip.
type Tooltip struct {
	Hidden bool    `json:"hidden"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Link   string  `json:"link"`
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Author string  `json:"author"`
	Lines  int     `json:"lines"`
}
