package agg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/leen324/locscope/schema"
)

// Column names of loc.csv.
const (
	ColCommit   = "commit"
	ColFile     = "file"
	ColLine     = "line"
	ColType     = "type"
	ColDepth    = "depth"
	ColLength   = "length"
	ColAuthor   = "author"
	ColDate     = "date"
	ColTime     = "time"
	ColTimezone = "timezone"
	ColDateTime = "datetime"
)

// RequiredColumns must appear in the CSV header. Numeric columns are exempt.
var RequiredColumns = []string{ColCommit, ColFile, ColType, ColAuthor, ColDate, ColTime, ColTimezone, ColDateTime}

// ErrMissingColumn is returned by ReadCSV when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ParseError names the row and field of a malformed value under the strict policy.
type ParseError struct {
	Row   int // 1-based over data rows
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Coercion describes a malformed value replaced by its default under the lenient policy.
type Coercion struct {
	Row   int
	Field string
	Value string
	Err   error
}

// ParseOptions controls how raw text becomes typed values.
type ParseOptions struct {
	Policy schema.ParsePolicy
	// Location applies to timestamps without an offset. Nil means time.Local.
	Location *time.Location
	// OnCoercion receives each lenient-mode replacement. May be nil.
	OnCoercion func(Coercion)
}

func (o ParseOptions) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.Local
}

func (o ParseOptions) lenient() bool {
	return o.Policy == schema.LenientPolicy
}

var (
	errNegative    = errors.New("value must not be negative")
	dateLayouts    = []string{"2006-01-02T15:04Z07:00", "2006-01-02T15:04Z0700"}
	localDTLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"}
)

// ReadCSV parses a loc.csv stream with a header line into records.
func ReadCSV(r io.Reader, opts ParseOptions) ([]schema.LineRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return ParseRows(rows, opts)
}

func checkHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// ParseRows converts string-keyed rows into typed records.
// Absent values default to zero or nil; malformed values follow opts.Policy.
func ParseRows(rows []map[string]string, opts ParseOptions) ([]schema.LineRecord, error) {
	records := make([]schema.LineRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseRow(i+1, row, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(rowNum int, row map[string]string, opts ParseOptions) (schema.LineRecord, error) {
	rec := schema.LineRecord{
		CommitID: row[ColCommit],
		File:     row[ColFile],
		Type:     row[ColType],
		Author:   row[ColAuthor],
		Time:     row[ColTime],
		Timezone: row[ColTimezone],
	}

	// report either fails the row or records a coercion, depending on policy.
	report := func(field, value string, err error) error {
		if !opts.lenient() {
			return &ParseError{Row: rowNum, Field: field, Value: value, Err: err}
		}
		if opts.OnCoercion != nil {
			opts.OnCoercion(Coercion{Row: rowNum, Field: field, Value: value, Err: err})
		}
		return nil
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{ColLine, &rec.Line},
		{ColDepth, &rec.Depth},
		{ColLength, &rec.Length},
	}
	for _, f := range ints {
		v, err := parseCount(row[f.field])
		if err != nil {
			if rerr := report(f.field, row[f.field], err); rerr != nil {
				return schema.LineRecord{}, rerr
			}
			v = 0
		}
		*f.dst = v
	}

	if raw := strings.TrimSpace(row[ColDate]); raw != "" {
		d, err := parseDate(raw, strings.TrimSpace(rec.Timezone), opts.location())
		if err != nil {
			if rerr := report(ColDate, raw, err); rerr != nil {
				return schema.LineRecord{}, rerr
			}
		} else {
			rec.Date = &d
		}
	}

	if raw := strings.TrimSpace(row[ColDateTime]); raw != "" {
		dt, err := ParseDateTime(raw, opts.location())
		if err != nil {
			if rerr := report(ColDateTime, raw, err); rerr != nil {
				return schema.LineRecord{}, rerr
			}
		} else {
			rec.DateTime = &dt
		}
	}

	return rec, nil
}

// parseCount reads a non-negative base-10 integer; empty input is 0.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}

// parseDate builds midnight of the calendar date in the record's timezone.
func parseDate(date, tz string, loc *time.Location) (time.Time, error) {
	if tz == "" {
		return time.ParseInLocation("2006-01-02T15:04", date+"T00:00", loc)
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, date+"T00:00"+tz)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseDateTime reads an RFC 3339 timestamp, falling back to offset-less layouts in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localDTLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
