package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// commitsJSON is the JSON document for both the commits and select commands.
type commitsJSON struct {
	Selection schema.SelectionSummary `json:"selection"`
	Commits   []schema.Commit         `json:"commits"`
}

// WriteCommits outputs the visible commits, dispatching based on the output format configured.
func WriteCommits(commits []schema.Commit, sel schema.SelectionSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, commitsJSON{Selection: sel, Commits: nonNil(commits)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitsCSV(w, commits, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.HTMLOut, schema.ParquetOut:
		return unsupported(cfg.Output, "commits")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeCommitsTable(commits, cfg, fmtFloat, w); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Showing %s of %s commits up to %s\n",
				formatCount(len(commits)), formatCount(sel.Visible), readoutOrNone(sel.Readout)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
			return err
		}, "Wrote table")
	}
}

// WriteSelection outputs the brushed commits with the category breakdown.
func WriteSelection(selected []schema.Commit, sel schema.SelectionSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, commitsJSON{Selection: sel, Commits: nonNil(selected)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBreakdownCSV(w, sel.Breakdown, fmtFloat)
		}, "Wrote CSV")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return RenderDefinitionList(w, "breakdown", BreakdownPairs(sel.Breakdown))
		}, "Wrote HTML")
	case schema.ParquetOut:
		return unsupported(cfg.Output, "select")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSelectionTable(selected, sel, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

func commitRow(rank int, c schema.Commit, urlWidth int, fmtFloat func(float64) string) []string {
	date, hour := "-", "-"
	if c.DateTime != nil {
		date = c.DateTime.Format(DateTimeFormat)
	}
	period := ""
	if c.HourFrac != nil {
		hour = fmtFloat(*c.HourFrac)
		period = contract.GetColorPeriod(schema.PeriodForHour(int(*c.HourFrac)))
	}
	return []string{
		strconv.Itoa(rank),
		contract.TruncateID(c.ID, 12),
		schema.AbbreviateName(c.Author),
		date,
		hour,
		formatCount(c.TotalLines),
		period,
		contract.TruncatePath(c.URL, urlWidth),
	}
}

// writeCommitsTable renders commits in the order given.
func writeCommitsTable(commits []schema.Commit, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Commit", "Author", "Date", "Hour", "Lines", "Period", "URL"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	urlWidth := GetMaxTableURLWidth(cfg)
	var data [][]string
	for i, c := range commits {
		data = append(data, commitRow(i+1, c, urlWidth, fmtFloat))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSelectionTable(selected []schema.Commit, sel schema.SelectionSummary, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if err := writeCommitsTable(selected, cfg, fmtFloat, writer); err != nil {
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Type", "Lines", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, e := range sel.Breakdown.Entries {
		data = append(data, []string{e.Type, formatCount(e.Count), e.Label})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	scope := "selection"
	if sel.BaselineUsed {
		scope = "all visible commits"
	}
	if _, err := fmt.Fprintf(writer, "%s (breakdown over %s, %s lines)\n", sel.CountText, scope, formatCount(sel.Breakdown.Total)); err != nil {
		return err
	}
	if authors := distinctAuthors(selected); len(authors) > 0 {
		if _, err := fmt.Fprintf(writer, "Authors: %s\n", schema.AbbreviateAuthors(authors)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Cutoff: %s. Completed in %v\n", readoutOrNone(sel.Readout), duration); err != nil {
		return err
	}
	return nil
}

// distinctAuthors lists each author once, in the order they first appear.
func distinctAuthors(commits []schema.Commit) []string {
	seen := make(map[string]struct{}, len(commits))
	var authors []string
	for _, c := range commits {
		if _, ok := seen[c.Author]; ok || c.Author == "" {
			continue
		}
		seen[c.Author] = struct{}{}
		authors = append(authors, c.Author)
	}
	return authors
}

func writeCommitsCSV(w io.Writer, commits []schema.Commit, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "commit", "author", "datetime", "hour_frac", "total_lines", "period", "url"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, c := range commits {
			datetime, hour, period := "", "", ""
			if c.DateTime != nil {
				datetime = c.DateTime.Format(time.RFC3339)
			}
			if c.HourFrac != nil {
				hour = fmtFloat(*c.HourFrac)
				period = string(schema.PeriodForHour(int(*c.HourFrac)))
			}
			rec := []string{
				strconv.Itoa(i + 1),
				c.ID,
				c.Author,
				datetime,
				hour,
				fmt.Sprintf(intFmt, c.TotalLines),
				period,
				c.URL,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBreakdownCSV(w io.Writer, b schema.Breakdown, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, []string{"type", "lines", "percent"}, func(cw *csv.Writer) error {
		for _, e := range b.Entries {
			if err := cw.Write([]string{e.Type, strconv.Itoa(e.Count), fmtFloat(e.Percent)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func readoutOrNone(s string) string {
	if s == "" {
		return "(no timestamps)"
	}
	return s
}

func nonNil(commits []schema.Commit) []schema.Commit {
	if commits == nil {
		return []schema.Commit{}
	}
	return commits
}
