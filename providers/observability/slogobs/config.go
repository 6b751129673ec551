package slogobs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatCompact renders one line per record with attributes as a JSON
	// object: 2026-01-02 15:04:05  INFO extraction recovered → {"extract.strategy":"array_pattern"}
	FormatCompact Format = "compact"

	// FormatJSON renders one JSON object per record, for log shippers.
	FormatJSON Format = "json"
)

// Environment variables read by New when no explicit option is given.
const (
	EnvLogFormat = "DOCEXTRACT_LOG_FORMAT"
	EnvLogLevel  = "DOCEXTRACT_LOG_LEVEL"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat maps a case-insensitive name to a Format. Unknown names fall
// back to FormatCompact.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatCompact
}

// ParseLevel maps TRACE, DEBUG, INFO, WARN/WARNING and ERROR
// (case-insensitive) to a slog level. The boolean is false for anything else,
// in which case INFO is returned.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Option configures an Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	logger *slog.Logger
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets where records are written. Defaults to os.Stderr so that
// stdout stays free for extracted data.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// WithLogger routes everything through an existing logger. Format, level and
// output options are ignored when it is set.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func configFromEnv() *config {
	level, _ := ParseLevel(os.Getenv(EnvLogLevel))
	return &config{
		format: ParseFormat(os.Getenv(EnvLogFormat)),
		level:  level,
		output: os.Stderr,
	}
}
