package contract

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/passagehealth/passage/schema"
)

// Color variables for console output.
var (
	HighColor     = color.New(color.FgRed, color.Bold) // HighColor represents standard danger.
	ModerateColor = color.New(color.FgYellow)          // ModerateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)            // LowColor represents informational / low-priority signal.
	OptimalColor  = color.New(color.FgGreen)           // OptimalColor represents a healthy result.
)

// GetPlainLabel returns the display text of a level, with "Risk" appended for risk tiers.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(level schema.Level) string {
	switch level {
	case schema.HighLevel, schema.ModerateLevel, schema.LowLevel:
		return string(level) + " Risk"
	case "":
		return "Unknown"
	default:
		return string(level)
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(level schema.Level) string {
	text := GetPlainLabel(level)

	switch level {
	case schema.HighLevel:
		return HighColor.Sprint(text)
	case schema.ModerateLevel:
		return ModerateColor.Sprint(text)
	case schema.OptimalLevel:
		return OptimalColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRecordsDBFilePath returns the path to the SQLite DB file for assessment records.
func GetRecordsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".passage_records.db"
	}
	return filepath.Join(homeDir, ".passage_records.db")
}

// GetRecordsCSVFilePath returns the path to the flat CSV file for assessment records.
func GetRecordsCSVFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".passage_records.csv"
	}
	return filepath.Join(homeDir, ".passage_records.csv")
}

// DefaultOperator returns the login name of the current user, or "unknown".
func DefaultOperator() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
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
