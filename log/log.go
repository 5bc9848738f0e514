package log

import (
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Level is a parsed, string-backed log severity: [LevelError],
// [LevelWarn], [LevelInfo], or [LevelDebug].
type Level string

// Format is a parsed, string-backed log output format: [FormatJSON],
// [FormatLogfmt], or [FormatText].
type Format string

const (
	// LevelError logs only error-severity records.
	LevelError Level = "error"
	// LevelWarn logs warn-severity records and above.
	LevelWarn Level = "warn"
	// LevelInfo logs info-severity records and above.
	LevelInfo Level = "info"
	// LevelDebug logs every record.
	LevelDebug Level = "debug"
)

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs logs in slog's default human-readable format.
	FormatText Format = "text"
)

// Handler is the [slog.Handler] produced by [NewHandler]/[NewHandlerFromStrings].
type Handler = slog.Handler

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandlerFromStrings parses levelStr/formatStr and delegates to
// [NewHandler]. Both parse errors wrap [ErrInvalidArgument] as well as
// [ErrUnknownLogLevel]/[ErrUnknownLogFormat].
func NewHandlerFromStrings(w io.Writer, levelStr, formatStr string) (Handler, error) {
	lvl, err := ParseLevel(levelStr)
	if err != nil {
		return nil, errors.Join(ErrInvalidArgument, err)
	}

	fmtVal, err := ParseFormat(formatStr)
	if err != nil {
		return nil, errors.Join(ErrInvalidArgument, err)
	}

	return NewHandler(w, lvl, fmtVal), nil
}

// NewHandler creates a [Handler] writing to w at the given level and
// format. An unrecognized format value falls back to [FormatText].
func NewHandler(w io.Writer, lvl Level, format Format) Handler {
	opts := &slog.HandlerOptions{Level: slogLevel(lvl)}

	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a case-insensitive log level string.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", ErrUnknownLogLevel
}

// ParseFormat parses a case-insensitive log format string.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatLogfmt):
		return FormatLogfmt, nil
	case string(FormatText):
		return FormatText, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllLevelStrings lists every accepted level string, for flag help
// text and shell completion.
func GetAllLevelStrings() []string {
	return []string{string(LevelError), string(LevelWarn), string(LevelInfo), string(LevelDebug)}
}

// GetAllFormatStrings lists every accepted format string, for flag help
// text and shell completion.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt), string(FormatText)}
}
