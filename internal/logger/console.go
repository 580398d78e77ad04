// Package logger provides logging implementations for phonescan runs.
//
// Loggers filter by level (trace, debug, info, warn, error), are safe for
// concurrent use and write either to a console stream or to per-run files.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/phonescan/internal/models"
)

// ConsoleLogger logs scan progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled automatically when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive ANSI colors.
// NO_COLOR (via fatih/color) always wins.
func isTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return allows(cl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// LogScanStart logs the start of a run at INFO level.
// Format: "[HH:MM:SS] Scanning <n> inputs with <engine>"
func (cl *ConsoleLogger) LogScanStart(engine string, inputs int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	name := engine
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(engine)
	}
	fmt.Fprintf(cl.writer, "[%s] Scanning %d %s with %s\n", timestamp(), inputs, plural(inputs, "input", "inputs"), name)
}

// LogFileResult logs one scanned input.
// Successful inputs are logged at DEBUG, failures at WARN.
func (cl *ConsoleLogger) LogFileResult(result models.FileResult) {
	if cl.writer == nil {
		return
	}

	level := "debug"
	if result.Failed() {
		level = "warn"
	}
	if !cl.shouldLog(level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if result.Failed() {
		status := "FAILED"
		if cl.colorOutput {
			status = color.New(color.FgRed).Sprint(status)
		}
		fmt.Fprintf(cl.writer, "[%s] %s: %s (%s)\n", ts, result.Path, status, result.Err)
		return
	}

	count := fmt.Sprintf("%d %s", len(result.Matches), plural(len(result.Matches), "match", "matches"))
	if cl.colorOutput && len(result.Matches) > 0 {
		count = color.New(color.FgGreen).Sprint(count)
	}
	fmt.Fprintf(cl.writer, "[%s] %s: %s\n", ts, result.Path, count)
}

// LogProgress logs how many inputs have been scanned at DEBUG level.
// Format: "[HH:MM:SS] Progress: [=====     ] 3/6 (50%)"
func (cl *ConsoleLogger) LogProgress(done, total int) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.Update(done)
	fmt.Fprintf(cl.writer, "[%s] Progress: %s\n", timestamp(), pb.Render())
}

// LogSummary logs the run summary at INFO level.
func (cl *ConsoleLogger) LogSummary(run *models.ScanRun) {
	if cl.writer == nil || run == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	header := "=== Scan Summary ==="
	matches := fmt.Sprintf("Matches: %d", run.TotalMatches)
	failed := fmt.Sprintf("Failed inputs: %d", run.FailedFiles)
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		matches = color.New(color.FgGreen).Sprint(matches)
		if run.FailedFiles > 0 {
			failed = color.New(color.FgRed).Sprint(failed)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, header)
	fmt.Fprintf(&b, "[%s] Run: %s\n", ts, run.ID)
	fmt.Fprintf(&b, "[%s] Inputs: %d\n", ts, len(run.Files))
	fmt.Fprintf(&b, "[%s] %s\n", ts, matches)
	fmt.Fprintf(&b, "[%s] %s\n", ts, failed)
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(run.Duration))
	io.WriteString(cl.writer, b.String())
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// formatDuration converts a time.Duration to a human-readable string.
// Sub-second runs are shown in milliseconds since most scans are that fast.
// Examples: "12ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string) {}
func (n *NoOpLogger) LogDebug(message string) {}
func (n *NoOpLogger) LogInfo(message string) {}
func (n *NoOpLogger) LogWarn(message string) {}
func (n *NoOpLogger) LogError(message string) {}
func (n *NoOpLogger) LogScanStart(engine string, inputs int) {}
func (n *NoOpLogger) LogFileResult(result models.FileResult) {}
func (n *NoOpLogger) LogProgress(done, total int) {}
func (n *NoOpLogger) LogSummary(run *models.ScanRun) {}
