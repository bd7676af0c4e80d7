package algo

import (
	"sort"

	"github.com/leen324/locscope/schema"
)

// DrawOrder returns commits sorted by TotalLines in descending order so that
// larger points are drawn first and smaller ones stay on top. Ties keep their
// input order. The input slice is not modified.
func DrawOrder(commits []schema.Commit) []schema.Commit {
	sorted := make([]schema.Commit, len(commits))
	copy(sorted, commits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalLines > sorted[j].TotalLines
	})
	return sorted
}

// RankCommits sorts commits by TotalLines in descending order
// and returns the top 'limit' commits. A limit of zero or less returns all of them.
func RankCommits(commits []schema.Commit, limit int) []schema.Commit {
	ranked := DrawOrder(commits)
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
