// Package agg has ingestion and aggregation logic for line-level change logs.
package agg

import (
	"strings"
	"time"

	"github.com/leen324/locscope/schema"
)

// URLBuilder derives a commit permalink from its id.
type URLBuilder func(id string) string

// NewURLBuilder returns a builder for <host>/<owner>/<repo>/commit/<id>.
// The URL is empty when owner or repo is empty.
func NewURLBuilder(host, owner, repo string) URLBuilder {
	host = strings.TrimRight(host, "/")
	if owner == "" || repo == "" {
		return func(string) string { return "" }
	}
	prefix := host + "/" + owner + "/" + repo + "/commit/"
	return func(id string) string {
		if id == "" {
			return ""
		}
		return prefix + id
	}
}

// CommitIndex maps a commit id to the records it owns.
type CommitIndex map[string][]schema.LineRecord

// Lines returns a copy of the records for a commit.
func (ix CommitIndex) Lines(id string) []schema.LineRecord {
	lines := ix[id]
	out := make([]schema.LineRecord, len(lines))
	copy(out, lines)
	return out
}

// LinesOf flattens the records of several commits, in commit order.
func (ix CommitIndex) LinesOf(commits []schema.Commit) []schema.LineRecord {
	total := 0
	for _, c := range commits {
		total += len(ix[c.ID])
	}
	out := make([]schema.LineRecord, 0, total)
	for _, c := range commits {
		out = append(out, ix[c.ID]...)
	}
	return out
}

// Aggregate is the product of one data load.
type Aggregate struct {
	Records []schema.LineRecord
	Commits []schema.Commit
	Index   CommitIndex
}

// AggregateCommits groups records by commit id in first-seen order. The first record of
// each group supplies author and timestamps; later records never override them.
// HourFrac is computed in loc, or in each timestamp's own offset when loc is nil.
func AggregateCommits(records []schema.LineRecord, urls URLBuilder, loc *time.Location) Aggregate {
	index := make(CommitIndex)
	var order []string
	for _, r := range records {
		if _, ok := index[r.CommitID]; !ok {
			order = append(order, r.CommitID)
		}
		index[r.CommitID] = append(index[r.CommitID], r)
	}

	commits := make([]schema.Commit, 0, len(order))
	for _, id := range order {
		lines := index[id]
		first := lines[0]
		c := schema.Commit{
			ID:         id,
			Author:     first.Author,
			Date:       first.Date,
			Time:       first.Time,
			Timezone:   first.Timezone,
			DateTime:   first.DateTime,
			TotalLines: len(lines),
		}
		if urls != nil {
			c.URL = urls(id)
		}
		if first.DateTime != nil {
			h := HourFrac(*first.DateTime, loc)
			c.HourFrac = &h
		}
		commits = append(commits, c)
	}

	return Aggregate{Records: records, Commits: commits, Index: index}
}

// HourFrac is hours + minutes/60 of t, read in loc when loc is set.
func HourFrac(t time.Time, loc *time.Location) float64 {
	if loc != nil {
		t = t.In(loc)
	}
	return float64(t.Hour()) + float64(t.Minute())/60
}
