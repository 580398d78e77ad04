package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/phonescan/internal/models"
)

// FileLogger writes one log file per scan run into logDir and keeps a
// latest.log symlink pointing at the newest one.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates logDir if needed and opens scan-YYYYMMDD-HHMMSS.log in it.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("scan-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}
	fl.writeRunLog("=== phonescan run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return allows(fl.logLevel, messageLevel)
}

func (fl *FileLogger) LogTrace(message string) { fl.logWithLevel("TRACE", message) }
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }
func (fl *FileLogger) LogInfo(message string)  { fl.logWithLevel("INFO", message) }
func (fl *FileLogger) LogWarn(message string)  { fl.logWithLevel("WARN", message) }
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", fileTimestamp(), level, message))
}

// LogScanStart records the engine and input count.
func (fl *FileLogger) LogScanStart(engine string, inputs int) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Scan started: engine=%s inputs=%d\n", fileTimestamp(), engine, inputs))
}

// LogFileResult records every match of an input, one per line.
// The file log keeps match detail at INFO since it is the durable record.
func (fl *FileLogger) LogFileResult(result models.FileResult) {
	ts := fileTimestamp()
	if result.Failed() {
		if fl.shouldLog("warn") {
			fl.writeRunLog(fmt.Sprintf("[%s] [WARN] %s: %s\n", ts, result.Path, result.Err))
		}
		return
	}
	if !fl.shouldLog("info") {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (%s): %d matches\n", ts, result.Path, result.Kind, len(result.Matches))
	for _, m := range result.Matches {
		fmt.Fprintf(&b, "[%s]   @%d %s\n", ts, m.Offset, m.Number)
	}
	fl.writeRunLog(b.String())
}

// LogProgress is not recorded in files; per-input lines already show progress.
func (fl *FileLogger) LogProgress(done, total int) {}

// LogSummary records the run totals.
func (fl *FileLogger) LogSummary(run *models.ScanRun) {
	if run == nil || !fl.shouldLog("info") {
		return
	}
	ts := fileTimestamp()

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === Scan Summary ===\n", ts)
	fmt.Fprintf(&b, "[%s] Run: %s\n", ts, run.ID)
	fmt.Fprintf(&b, "[%s] Engine: %s\n", ts, run.Engine)
	fmt.Fprintf(&b, "[%s] Inputs: %d\n", ts, len(run.Files))
	fmt.Fprintf(&b, "[%s] Matches: %d\n", ts, run.TotalMatches)
	fmt.Fprintf(&b, "[%s] Failed inputs: %d\n", ts, run.FailedFiles)
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(run.Duration))
	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}

// fileTimestamp returns the current time in RFC3339 format.
func fileTimestamp() string {
	return time.Now().Format(time.RFC3339)
}
