package core

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/leen324/locscope/internal/outwriter"
	"github.com/leen324/locscope/schema"
)

// ComputeGlobalStats summarizes a dataset. Periods are bucketed per record by the
// hour of its timestamp, read in loc (nil keeps each timestamp's own offset).
func ComputeGlobalStats(records []schema.LineRecord, commits []schema.Commit, loc *time.Location) schema.GlobalStats {
	stats := schema.GlobalStats{
		TotalRecords: len(records),
		TotalCommits: len(commits),
		PeriodCounts: make(map[schema.Period]int, len(schema.AllPeriods)),
	}

	files := make(map[string]struct{})
	for _, r := range records {
		files[r.File] = struct{}{}
		if r.Line > stats.MaxFileLength {
			stats.MaxFileLength = r.Line
		}
		if r.DateTime != nil {
			t := *r.DateTime
			if loc != nil {
				t = t.In(loc)
			}
			stats.PeriodCounts[schema.PeriodForHour(t.Hour())]++
		}
	}
	stats.TotalFiles = len(files)
	stats.MostActivePeriod = MostActivePeriod(stats.PeriodCounts)
	return stats
}

// MostActivePeriod returns the bucket with the strictly highest count.
// Ties and empty counts give EqualFooting.
func MostActivePeriod(counts map[schema.Period]int) schema.Period {
	best, bestCount, tied := schema.EqualFooting, 0, false
	for _, p := range schema.AllPeriods {
		n := counts[p]
		switch {
		case n > bestCount:
			best, bestCount, tied = p, n, false
		case n == bestCount && n > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return schema.EqualFooting
	}
	return best
}

// SelectionCountText renders the selection count, with a distinct zero case.
func SelectionCountText(n int) string {
	if n == 0 {
		return "No commits selected"
	}
	return fmt.Sprintf("%d commits selected", n)
}

// ComputeBreakdown counts records per Type, in first-seen order.
func ComputeBreakdown(records []schema.LineRecord) schema.Breakdown {
	b := schema.Breakdown{Total: len(records)}
	if len(records) == 0 {
		return b
	}

	pos := make(map[string]int)
	for _, r := range records {
		i, ok := pos[r.Type]
		if !ok {
			i = len(b.Entries)
			pos[r.Type] = i
			b.Entries = append(b.Entries, schema.BreakdownEntry{Type: r.Type})
		}
		b.Entries[i].Count++
	}

	for i, tenths := range percentTenths(b.Entries, len(records)) {
		b.Entries[i].Percent = float64(tenths) / 10
		b.Entries[i].Label = schema.FormatPercent(float64(tenths) / 1000)
	}
	return b
}

// percentTenths splits 1000 tenths of a percent across entries by largest
// remainder, so the rounded values always sum to exactly 100.0. Equal
// remainders go to the earlier entry.
func percentTenths(entries []schema.BreakdownEntry, total int) []int {
	tenths := make([]int, len(entries))
	rem := make([]int, len(entries))
	left := 1000
	for i, e := range entries {
		tenths[i] = e.Count * 1000 / total
		rem[i] = e.Count * 1000 % total
		left -= tenths[i]
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for _, i := range order[:left] {
		tenths[i]++
	}
	return tenths
}

// RenderStatsPanel writes the whole stats panel, replacing any earlier content.
func RenderStatsPanel(w io.Writer, stats schema.GlobalStats) error {
	return outwriter.RenderDefinitionList(w, StatsPanelClass, outwriter.StatsPairs(stats))
}

// RenderBreakdownPanel writes the whole breakdown panel for the current selection.
func RenderBreakdownPanel(w io.Writer, b schema.Breakdown) error {
	return outwriter.RenderDefinitionList(w, BreakdownPanelClass, outwriter.BreakdownPairs(b))
}
