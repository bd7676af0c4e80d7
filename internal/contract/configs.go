package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leen324/locscope/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	DefaultRadiusMin   = 2.0
	DefaultRadiusMax   = 30.0
	DefaultCommitHost  = "https://github.com"
	DefaultAddr        = "127.0.0.1:8080"
	DefaultSourceFile  = "loc.csv"
	DefaultLogLevel    = "warn"
	MaxRadius          = 200.0
	IngestCacheMaxAge  = 7 * 24 * time.Hour
	SessionIdleTimeout = 30 * time.Minute
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Source string

	CommitHost  string
	CommitOwner string
	CommitRepo  string

	// Location is used for hour-of-day and display formatting.
	// Nil keeps the offset each timestamp was written with.
	Location *time.Location

	ParsePolicy schema.ParsePolicy
	RadiusMin   float64
	RadiusMax   float64

	Cutoff float64      // slider position in [SliderMin, SliderMax]
	Rect   *schema.Rect // brush rectangle, nil when absent

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Addr        string
	OpenBrowser bool
	LogLevel    logrus.Level
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SourceArg string

	// --- Fields from rootCmd.PersistentFlags() ---
	Source           string  `mapstructure:"source"`
	CommitHost       string  `mapstructure:"commit-host"`
	CommitOwner      string  `mapstructure:"commit-owner"`
	CommitRepo       string  `mapstructure:"commit-repo"`
	Timezone         string  `mapstructure:"timezone"`
	ParsePolicy      string  `mapstructure:"parse-policy"`
	RadiusMin        float64 `mapstructure:"radius-min"`
	RadiusMax        float64 `mapstructure:"radius-max"`
	Precision        int     `mapstructure:"precision"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Width            int     `mapstructure:"width"`
	Color            string  `mapstructure:"color"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`
	LogLevel         string  `mapstructure:"log-level"`

	// --- Fields from selection flags (commits, select, chart) ---
	Cutoff float64 `mapstructure:"cutoff"`
	Rect   string  `mapstructure:"rect"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`
	Open bool   `mapstructure:"open"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Rect != nil {
		r := *c.Rect
		clone.Rect = &r
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processCommitURL(cfg, input); err != nil {
		return err
	}
	if err := processProjection(cfg, input); err != nil {
		return err
	}
	if err := processSelection(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs processes and validates all scalar output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	cfg.OpenBrowser = input.Open
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, html, parquet", input.Output)
	}

	level := input.LogLevel
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}
	cfg.LogLevel = lvl

	return nil
}

// processSource resolves the data source from the positional argument or the source key.
func processSource(cfg *Config, input *ConfigRawInput) error {
	src := strings.TrimSpace(input.SourceArg)
	if src == "" {
		src = strings.TrimSpace(input.Source)
	}
	if src == "" {
		src = DefaultSourceFile
	}
	if IsRemoteSource(src) {
		cfg.Source = src
		return nil
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("failed to resolve source path %q: %w", src, err)
	}
	cfg.Source = abs
	return nil
}

// processCommitURL validates the permalink template parts.
func processCommitURL(cfg *Config, input *ConfigRawInput) error {
	host := strings.TrimRight(strings.TrimSpace(input.CommitHost), "/")
	if host == "" {
		host = DefaultCommitHost
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		return fmt.Errorf("commit-host must start with http:// or https:// (received %q)", input.CommitHost)
	}
	cfg.CommitHost = host

	owner := strings.Trim(strings.TrimSpace(input.CommitOwner), "/")
	repo := strings.Trim(strings.TrimSpace(input.CommitRepo), "/")
	if strings.Contains(owner, "/") || strings.Contains(repo, "/") {
		return fmt.Errorf("commit-owner and commit-repo must be single path segments")
	}
	cfg.CommitOwner = owner
	cfg.CommitRepo = repo
	return nil
}

// processProjection handles timezone, parse policy and radius range.
func processProjection(cfg *Config, input *ConfigRawInput) error {
	cfg.Location = nil
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	policy := input.ParsePolicy
	if policy == "" {
		policy = string(schema.StrictPolicy)
	}
	cfg.ParsePolicy = schema.ParsePolicy(strings.ToLower(policy))
	if _, ok := schema.ValidParsePolicies[cfg.ParsePolicy]; !ok {
		return fmt.Errorf("invalid parse policy '%s'. must be strict or lenient", input.ParsePolicy)
	}

	if input.RadiusMin <= 0 || input.RadiusMax <= 0 {
		return fmt.Errorf("radius-min and radius-max must be positive (received %g, %g)", input.RadiusMin, input.RadiusMax)
	}
	if input.RadiusMin > input.RadiusMax {
		return fmt.Errorf("radius-min (%g) cannot exceed radius-max (%g)", input.RadiusMin, input.RadiusMax)
	}
	if input.RadiusMax > MaxRadius {
		return fmt.Errorf("radius-max cannot exceed %g (received %g)", MaxRadius, input.RadiusMax)
	}
	cfg.RadiusMin = input.RadiusMin
	cfg.RadiusMax = input.RadiusMax
	return nil
}

// processSelection validates the slider position and parses the brush rectangle.
func processSelection(cfg *Config, input *ConfigRawInput) error {
	if input.Cutoff < schema.SliderMin || input.Cutoff > schema.SliderMax {
		return fmt.Errorf("cutoff must be between %g and %g (received %g)", schema.SliderMin, schema.SliderMax, input.Cutoff)
	}
	cfg.Cutoff = input.Cutoff

	cfg.Rect = nil
	if strings.TrimSpace(input.Rect) != "" {
		rect, err := ParseRect(input.Rect)
		if err != nil {
			return err
		}
		cfg.Rect = &rect
	}
	return nil
}

// ParseRect parses "x0,y0,x1,y1" into a rectangle. Corners may be in any order.
func ParseRect(s string) (schema.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return schema.Rect{}, fmt.Errorf("invalid rect %q: expected x0,y0,x1,y1", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return schema.Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		vals[i] = v
	}
	return schema.Rect{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, nil
}

// IsRemoteSource reports whether the source should be fetched over HTTP.
func IsRemoteSource(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend normalizes a backend name, treating empty as NoneBackend.
func ParseBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(s))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	backend, err := ParseBackend(input.CacheBackend)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	backend, err = ParseBackend(input.HistoryBackend)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// GetCacheDBFilePath returns the path to the SQLite DB file for ingest caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".locscope_cache.db"
	}
	return filepath.Join(homeDir, ".locscope_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for load history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".locscope_history.db"
	}
	return filepath.Join(homeDir, ".locscope_history.db")
}
