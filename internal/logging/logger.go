// Package logging provides structured, colorful logging for the rplus daemon
// and CLI, so every component prints with the same levels, colors and
// timestamps.
//
// LOGGING FEATURES:
//   - Color-coded levels: DEBUG (purple), INFO (blue), WARN (yellow), ERROR (red), SUCCESS (green)
//   - Unix conventions: INFO/SUCCESS to stdout, WARN/ERROR/DEBUG to stderr
//   - Log files: a single rotated file via lumberjack when the daemon runs detached
//   - Library adapters: io.Writer and resty.Logger shims for gin, net/http and resty
//
// Used by the daemon's background loops, the HTTP API and the CLI. The CLI
// suppresses everything below ERROR unless DEBUG=true.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	stdlog "log"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger for INFO/SUCCESS messages (stdout by default, follows Unix conventions)
	stdoutLogger = newLogger(os.Stdout)

	// Logger for WARN/ERROR/DEBUG messages (stderr by default, follows Unix conventions)
	stderrLogger = newLogger(os.Stderr)

	// Track if logging has been explicitly configured by CLI tools
	cliConfigured = false

	// Track the current output destinations for different log levels
	currentStdoutOutput io.Writer = os.Stdout // For INFO/SUCCESS
	currentStderrOutput io.Writer = os.Stderr // For WARN/ERROR/DEBUG

	// Track if we're using a single log destination (overrides stdout/stderr separation)
	usingLogFile  = false
	logFileHandle io.Writer
)

// setupCustomStyles creates custom color styling for log levels. Colors were
// picked to stay readable in both light and dark terminals.
func setupCustomStyles() *log.Styles {
	styles := log.DefaultStyles()

	// DEBUG: light purple
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("#7F6DFF"))

	// INFO: light blue
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#42E7FF"))

	// WARN: light yellow
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFE763"))

	// ERROR: light red/pink
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF4473"))

	return styles
}

// newLogger builds a timestamped logger writing to w with the custom styles.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(setupCustomStyles())
	return l
}

// getStdoutLoggerOutput returns the current output destination for stdout logger.
// Used by Success function to respect log file redirection.
func getStdoutLoggerOutput() io.Writer {
	if usingLogFile {
		return logFileHandle
	}
	return currentStdoutOutput
}

// Info logs informational messages about daemon activity.
// Uses stdout following Unix conventions (or log file when specified).
func Info(format string, v ...any) {
	stdoutLogger.Info(fmt.Sprintf(format, v...))
}

// Warn logs warning messages for non-critical issues, such as a settings
// read that fell back to its default.
func Warn(format string, v ...any) {
	stderrLogger.Warn(fmt.Sprintf(format, v...))
}

// Error logs error messages for failed operations.
func Error(format string, v ...any) {
	stderrLogger.Error(fmt.Sprintf(format, v...))
}

// Success logs successful operations in green using INFO level with custom styling.
// Implements a custom SUCCESS level that respects INFO level filtering.
func Success(format string, v ...any) {
	if stdoutLogger.GetLevel() > log.InfoLevel {
		return
	}

	styles := setupCustomStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("SUCCESS").
		Foreground(lipgloss.Color("#60F281")) // Light green

	tempLogger := log.NewWithOptions(getStdoutLoggerOutput(), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	tempLogger.SetStyles(styles)

	tempLogger.Info(fmt.Sprintf(format, v...))
}

// Debug logs detailed debugging information for development and troubleshooting.
// Uses stderr following Unix conventions (or log file when specified).
func Debug(format string, v ...any) {
	stderrLogger.Debug(fmt.Sprintf(format, v...))
}

// IsDebugEnabled reports whether DEBUG lines are currently emitted. Lets
// callers skip building expensive debug output.
func IsDebugEnabled() bool {
	return stderrLogger.GetLevel() <= log.DebugLevel
}

// SetLevel configures the minimum logging level. Accepts DEBUG, INFO, WARN
// and ERROR; anything else selects INFO.
func SetLevel(level string) {
	var logLevel log.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = log.DebugLevel
	case "INFO":
		logLevel = log.InfoLevel
	case "WARN":
		logLevel = log.WarnLevel
	case "ERROR":
		logLevel = log.ErrorLevel
	default:
		logLevel = log.InfoLevel
	}

	stdoutLogger.SetLevel(logLevel)
	stderrLogger.SetLevel(logLevel)
}

// SetOutput sends all levels to w, overriding the stdout/stderr split.
// Passing nil suppresses all output. The level is reset to INFO.
func SetOutput(w io.Writer) {
	if w == nil {
		stdoutLogger.SetLevel(log.FatalLevel + 1)
		stderrLogger.SetLevel(log.FatalLevel + 1)
		usingLogFile = false
		return
	}

	usingLogFile = true
	logFileHandle = w
	stdoutLogger = newLogger(w)
	stderrLogger = newLogger(w)
}

// FileConfig controls log file rotation.
type FileConfig struct {
	Path       string // Log file path
	MaxSizeMB  int    // Rotate after this many megabytes
	MaxBackups int    // Rotated files to keep
	MaxAgeDays int    // Days to keep rotated files
	Compress   bool   // Gzip rotated files
}

// SetOutputFile routes all logs into a size-rotated file. The returned
// closer flushes and closes the current file; callers close it on shutdown.
func SetOutputFile(cfg FileConfig) (io.Closer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	// Fail early on an unwritable path instead of on the first log line
	if _, err := rotator.Write(nil); err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Path, err)
	}

	SetOutput(rotator)
	return rotator, nil
}

// SuppressOutput disables INFO/WARN/DEBUG logs while keeping ERROR logs visible.
// Used by CLI tools to reduce output noise during normal operations.
func SuppressOutput() {
	stdoutLogger.SetLevel(log.ErrorLevel)
	stderrLogger.SetLevel(log.ErrorLevel)
	cliConfigured = true
}

// RestoreOutput restores normal logging with Unix conventions at INFO level and above.
// INFO/SUCCESS go to stdout, WARN/ERROR/DEBUG go to stderr.
func RestoreOutput() {
	usingLogFile = false
	logFileHandle = nil

	stdoutLogger = newLogger(os.Stdout)
	stderrLogger = newLogger(os.Stderr)
	stdoutLogger.SetLevel(log.InfoLevel)
	stderrLogger.SetLevel(log.InfoLevel)

	currentStdoutOutput = os.Stdout
	currentStderrOutput = os.Stderr
	cliConfigured = true
}

// IsConfiguredByCLI returns true if logging has been explicitly configured by CLI tools.
func IsConfiguredByCLI() bool {
	return cliConfigured
}

// ============================================================================
// LIBRARY LOG INTEGRATION - Writers and adapters for third-party libraries
// ============================================================================

// LevelWriter forwards log lines to a specific log level with optional prefix.
// Used for gin's DefaultWriter/DefaultErrorWriter and net/http's ErrorLog.
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at the specified level with prefix.
// Valid levels: DEBUG, INFO, WARN, ERROR
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write implements io.Writer by splitting input into lines and logging each at the configured level.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := line
		if w.prefix != "" {
			msg = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", msg)
		case "WARN":
			Warn("%s", msg)
		case "ERROR":
			Error("%s", msg)
		default:
			Info("%s", msg)
		}
	}
	return len(p), nil
}

// RedirectStandardLog redirects Go's standard library logger output to the provided writer.
// Passing nil discards standard log output.
func RedirectStandardLog(w io.Writer) {
	if w == nil {
		stdlog.SetOutput(io.Discard)
		return
	}
	stdlog.SetOutput(w)
}

// RestyLogger implements resty.Logger and routes the client's own messages
// (retries, transport errors) through this package with a prefix.
type RestyLogger struct {
	Prefix string
}

// Errorf routes error messages through structured logging.
func (l RestyLogger) Errorf(format string, v ...interface{}) {
	Error(l.prefix()+format, v...)
}

// Warnf routes warning messages through structured logging.
func (l RestyLogger) Warnf(format string, v ...interface{}) {
	Warn(l.prefix()+format, v...)
}

// Debugf routes debug messages through structured logging.
func (l RestyLogger) Debugf(format string, v ...interface{}) {
	Debug(l.prefix()+format, v...)
}

func (l RestyLogger) prefix() string {
	if l.Prefix == "" {
		return ""
	}
	return "(" + l.Prefix + ") "
}
