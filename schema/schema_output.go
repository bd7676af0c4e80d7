package schema

import (
	"html/template"
	"time"
)

// GlobalStats is the summary panel computed over a whole dataset.
type GlobalStats struct {
	TotalRecords     int            `json:"total_loc"`
	TotalCommits     int            `json:"total_commits"`
	TotalFiles       int            `json:"total_files"`
	MaxFileLength    int            `json:"max_file_length"`
	MostActivePeriod Period         `json:"most_active_period"`
	PeriodCounts     map[Period]int `json:"period_counts"`
}

// BreakdownEntry is the line count of one category.
type BreakdownEntry struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"` // rounded to one decimal
	Label   string  `json:"label"`   // e.g. "66.7%" or "50%"
}

// Breakdown is the per-category count over a set of records, in first-seen order.
type Breakdown struct {
	Total   int              `json:"total"`
	Entries []BreakdownEntry `json:"entries"`
}

// SelectionSummary is everything derived from the current brush and cutoff.
type SelectionSummary struct {
	Cutoff       *time.Time `json:"cutoff"`
	Readout      string     `json:"readout"`
	Position     float64    `json:"position"`
	Visible      int        `json:"visible"`
	Selected     []string   `json:"selected"`
	CountText    string     `json:"count_text"`
	Breakdown    Breakdown  `json:"breakdown"`
	BaselineUsed bool       `json:"baseline_used"` // breakdown fell back to the visible set
}

// DefinitionPair is one <dt>/<dd> row of a summary panel.
type DefinitionPair struct {
	Term   template.HTML `json:"term"` // trusted markup
	Detail string        `json:"detail"`
}
