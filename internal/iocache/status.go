package iocache

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/leen324/locscope/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintCacheStatus prints ingest cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Fprintf(w, "Total Entries: %s\n", humanize.Comma(int64(status.TotalEntries)))
	if status.TotalEntries > 0 {
		fmt.Fprintf(w, "Last Entry: %s\n", describeTime(status.LastEntryTime))
		fmt.Fprintf(w, "Oldest Entry: %s\n", describeTime(status.OldestEntryTime))
	}
	fmt.Fprintf(w, "Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0)))) //nolint:gosec // clamped
}

// PrintHistoryStatus prints load history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Fprintf(w, "Total Loads: %s\n", humanize.Comma(int64(status.TotalLoads)))
	if status.TotalLoads > 0 {
		fmt.Fprintf(w, "Last Load ID: %d\n", status.LastLoadID)
		fmt.Fprintf(w, "Last Load: %s\n", describeTime(status.LastLoadTime))
		fmt.Fprintf(w, "Oldest Load: %s\n", describeTime(status.OldestLoad))
		fmt.Fprintf(w, "Total Commits Loaded: %s\n", humanize.Comma(int64(status.TotalCommits)))
	}
	fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Fprintf(w, "  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
	}
}

func describeTime(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(statusTimeFormat), humanize.Time(t))
}
