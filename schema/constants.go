package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and load history.
	DatabaseBackend string

	// ParsePolicy decides what ingestion does with malformed but present values.
	ParsePolicy string

	// Period is a coarse time-of-day bucket.
	Period string

	// PointState is the lifecycle state of a rendered commit point.
	PointState string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	HTMLOut    OutputMode = "html"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All parse policies supported.
const (
	StrictPolicy  ParsePolicy = "strict" // default
	LenientPolicy ParsePolicy = "lenient"
)

// Time-of-day buckets, by hour: morning [5,12), afternoon [12,17), evening [17,21), night otherwise.
const (
	Morning      Period = "morning"
	Afternoon    Period = "afternoon"
	Evening      Period = "evening"
	Night        Period = "night"
	EqualFooting Period = "Equal footing" // no strict winner
)

// Point lifecycle states.
const (
	PointAbsent   PointState = "absent"
	PointEntering PointState = "entering"
	PointPresent  PointState = "present"
	PointExiting  PointState = "exiting"
)

// Slider bounds for the temporal cutoff control.
const (
	SliderMin = 0.0
	SliderMax = 100.0
)

// AllPeriods lists the buckets in display order.
var AllPeriods = []Period{Morning, Afternoon, Evening, Night}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	HTMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidParsePolicies lists all valid parse policies.
var ValidParsePolicies = map[ParsePolicy]struct{}{
	StrictPolicy:  {},
	LenientPolicy: {},
}

// PeriodForHour buckets an hour of day (0-23).
func PeriodForHour(hour int) Period {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}
