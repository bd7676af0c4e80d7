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

// WriteStats outputs the global summary, dispatching based on the output format configured.
func WriteStats(stats schema.GlobalStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsCSV(w, stats)
		}, "Wrote CSV")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return RenderDefinitionList(w, "stats", StatsPairs(stats))
		}, "Wrote HTML")
	case schema.ParquetOut:
		return unsupported(cfg.Output, "stats")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsTable(stats, duration, w)
		}, "Wrote table")
	}
}

// statsRows is the plain-text layout shared by the table and CSV writers.
func statsRows(stats schema.GlobalStats) [][]string {
	return [][]string{
		{"Total LOC", strconv.Itoa(stats.TotalRecords)},
		{"Total commits", strconv.Itoa(stats.TotalCommits)},
		{"Number of files", strconv.Itoa(stats.TotalFiles)},
		{"Maximum file length (lines)", strconv.Itoa(stats.MaxFileLength)},
		{"Most active period", string(stats.MostActivePeriod)},
	}
}

func writeStatsCSV(w io.Writer, stats schema.GlobalStats) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		for _, row := range statsRows(stats) {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		for _, p := range schema.AllPeriods {
			if err := cw.Write([]string{"records_" + string(p), strconv.Itoa(stats.PeriodCounts[p])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeStatsTable generates and writes the human-readable summary.
func writeStatsTable(stats schema.GlobalStats, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := statsRows(stats)
	data[4][1] = contract.GetColorPeriod(stats.MostActivePeriod)
	for i := range 4 {
		n, _ := strconv.Atoi(data[i][1])
		data[i][1] = formatCount(n)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	periods := tablewriter.NewWriter(writer)
	periods.Header([]string{"Period", "Lines"})
	periods.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var rows [][]string
	for _, p := range schema.AllPeriods {
		rows = append(rows, []string{contract.GetColorPeriod(p), formatCount(stats.PeriodCounts[p])})
	}
	if err := periods.Bulk(rows); err != nil {
		return err
	}
	if err := periods.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Summary computed in %v\n", duration); err != nil {
		return err
	}
	return nil
}
