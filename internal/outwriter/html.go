package outwriter

import (
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/leen324/locscope/schema"
)

var definitionListTmpl = template.Must(template.New("dl").Parse(
	`<dl class="{{.Class}}">{{range .Pairs}}<dt>{{.Term}}</dt><dd>{{.Detail}}</dd>{{end}}</dl>`,
))

// RenderDefinitionList writes a whole <dl> fragment. Each call produces the complete
// panel, so rendering the same input twice yields the same output.
func RenderDefinitionList(w io.Writer, class string, pairs []schema.DefinitionPair) error {
	return definitionListTmpl.Execute(w, struct {
		Class string
		Pairs []schema.DefinitionPair
	}{Class: class, Pairs: pairs})
}

// StatsPairs lays out the global stats panel.
func StatsPairs(stats schema.GlobalStats) []schema.DefinitionPair {
	return []schema.DefinitionPair{
		{Term: `Total <abbr title="Lines of code">LOC</abbr>`, Detail: strconv.Itoa(stats.TotalRecords)},
		{Term: "Total commits", Detail: strconv.Itoa(stats.TotalCommits)},
		{Term: "Number of files", Detail: strconv.Itoa(stats.TotalFiles)},
		{Term: "Maximum file length (lines)", Detail: strconv.Itoa(stats.MaxFileLength)},
		{Term: "Am most active in the:", Detail: string(stats.MostActivePeriod)},
	}
}

// BreakdownPairs lays out the category breakdown panel.
func BreakdownPairs(b schema.Breakdown) []schema.DefinitionPair {
	pairs := make([]schema.DefinitionPair, 0, len(b.Entries))
	for _, e := range b.Entries {
		pairs = append(pairs, schema.DefinitionPair{
			Term:   template.HTML(template.HTMLEscapeString(e.Type)), //nolint:gosec // escaped above
			Detail: fmt.Sprintf("%d lines (%s)", e.Count, e.Label),
		})
	}
	return pairs
}
