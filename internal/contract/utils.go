package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/leen324/locscope/schema"
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetLogLevel adjusts the verbosity of Logger.
func SetLogLevel(level logrus.Level) {
	Logger.SetLevel(level)
}

// Color variables for console output, one per time-of-day bucket.
var (
	MorningColor   = color.New(color.FgYellow, color.Bold)
	AfternoonColor = color.New(color.FgGreen)
	EveningColor   = color.New(color.FgMagenta)
	NightColor     = color.New(color.FgCyan, color.Bold)
)

// GetColorPeriod returns a colored period label for console output (table).
func GetColorPeriod(p schema.Period) string {
	text := string(p)
	switch p {
	case schema.Morning:
		return MorningColor.Sprint(text)
	case schema.Afternoon:
		return AfternoonColor.Sprint(text)
	case schema.Evening:
		return EveningColor.Sprint(text)
	case schema.Night:
		return NightColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Error(msg)
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}

// TruncateID shortens a commit hash for table display.
// Requires maxWidth > 0; shorter IDs are returned unchanged.
func TruncateID(id string, maxWidth int) string {
	runes := []rune(id)
	if maxWidth > 0 && len(runes) > maxWidth {
		return string(runes[:maxWidth])
	}
	return id
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
