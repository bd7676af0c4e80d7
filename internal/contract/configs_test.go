package contract

import (
	"path/filepath"
	"testing"

	"github.com/leen324/locscope/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation; tests mutate a copy.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Source:      "loc.csv",
		CommitOwner: "leen324",
		CommitRepo:  "portfolio",
		ParsePolicy: "strict",
		RadiusMin:   DefaultRadiusMin,
		RadiusMax:   DefaultRadiusMax,
		Precision:   DefaultPrecision,
		Output:      "text",
		Color:       "yes",
		Cutoff:      schema.SliderMax,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "yaml" }, expectError: true},
		{name: "invalid precision", mutate: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "invalid log level", mutate: func(in *ConfigRawInput) { in.LogLevel = "loud" }, expectError: true},
		{name: "invalid parse policy", mutate: func(in *ConfigRawInput) { in.ParsePolicy = "yolo" }, expectError: true},
		{name: "lenient policy uppercase", mutate: func(in *ConfigRawInput) { in.ParsePolicy = "LENIENT" }},
		{name: "radius inverted", mutate: func(in *ConfigRawInput) { in.RadiusMin, in.RadiusMax = 30, 2 }, expectError: true},
		{name: "radius zero", mutate: func(in *ConfigRawInput) { in.RadiusMin = 0 }, expectError: true},
		{name: "radius too large", mutate: func(in *ConfigRawInput) { in.RadiusMax = MaxRadius + 1 }, expectError: true},
		{name: "cutoff below range", mutate: func(in *ConfigRawInput) { in.Cutoff = -1 }, expectError: true},
		{name: "cutoff above range", mutate: func(in *ConfigRawInput) { in.Cutoff = 100.5 }, expectError: true},
		{name: "valid rect", mutate: func(in *ConfigRawInput) { in.Rect = "10,20,30,40" }},
		{name: "invalid rect", mutate: func(in *ConfigRawInput) { in.Rect = "10,20" }, expectError: true},
		{name: "unknown timezone", mutate: func(in *ConfigRawInput) { in.Timezone = "Mars/Olympus" }, expectError: true},
		{name: "utc timezone", mutate: func(in *ConfigRawInput) { in.Timezone = "UTC" }},
		{name: "bad commit host", mutate: func(in *ConfigRawInput) { in.CommitHost = "github.com" }, expectError: true},
		{name: "nested owner", mutate: func(in *ConfigRawInput) { in.CommitOwner = "a/b" }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "mysql without conn", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "mysql" }, expectError: true},
		{
			name: "postgres with conn",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = "postgresql"
				in.HistoryDBConnect = "host=localhost dbname=locscope"
			},
		},
		{
			name: "sqlite cache and history share a file",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.HistoryBackend = "sqlite"
				in.CacheDBConnect = "/tmp/same.db"
				in.HistoryDBConnect = "/tmp/same.db"
			},
			expectError: true,
		},
		{
			name: "sqlite cache and history defaults differ",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.HistoryBackend = "sqlite"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, in)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProcessAndValidateResolvesValues(t *testing.T) {
	in := validInput()
	in.SourceArg = "data/loc.csv"
	in.CommitHost = "https://gitlab.example.com/"
	in.Timezone = "America/New_York"
	in.Rect = "30,40,10,20"
	in.Cutoff = 42
	in.LogLevel = "debug"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	abs, err := filepath.Abs("data/loc.csv")
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Source)
	assert.Equal(t, "https://gitlab.example.com", cfg.CommitHost)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	require.NotNil(t, cfg.Rect)
	assert.Equal(t, schema.Rect{X0: 30, Y0: 40, X1: 10, Y1: 20}, *cfg.Rect)
	assert.InDelta(t, 42.0, cfg.Cutoff, 1e-9)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.True(t, cfg.UseColors)
}

func TestProcessSourceRemote(t *testing.T) {
	in := validInput()
	in.Source = "https://example.com/meta/loc.csv"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))
	assert.Equal(t, "https://example.com/meta/loc.csv", cfg.Source)
}

func TestParseRect(t *testing.T) {
	rect, err := ParseRect(" 1, 2.5 ,3,4 ")
	require.NoError(t, err)
	assert.Equal(t, schema.Rect{X0: 1, Y0: 2.5, X1: 3, Y1: 4}, rect)

	_, err = ParseRect("1,2,3,x")
	assert.Error(t, err)
	_, err = ParseRect("1,2,3,4,5")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Source: "a.csv", Rect: &schema.Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}}
	clone := cfg.Clone()
	clone.Rect.X0 = 99
	clone.Source = "b.csv"
	assert.InDelta(t, 1.0, cfg.Rect.X0, 1e-9)
	assert.Equal(t, "a.csv", cfg.Source)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/locscope"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost/locscope"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=locscope"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost port=5432 dbname=locscope"))
}

func TestProcessProfilingConfig(t *testing.T) {
	var p ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&p, ""))
	assert.False(t, p.Enabled)
	require.NoError(t, ProcessProfilingConfig(&p, "prof"))
	assert.True(t, p.Enabled)
	assert.Equal(t, "prof", p.Prefix)
}
