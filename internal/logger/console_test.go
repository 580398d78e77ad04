package logger

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
)

func sampleRun() *models.ScanRun {
	run := &models.ScanRun{
		ID:       "run-1234",
		Engine:   "bruteforce",
		Duration: 1500 * time.Millisecond,
		Files: []models.FileResult{
			{Path: "notes.txt", Kind: "text", Matches: []phone.Match{{Number: "415-555-4242", Offset: 5}}},
			{Path: "locked.txt", Kind: "text", Err: "permission denied"},
		},
	}
	run.Tally()
	return run
}

// TestNewConsoleLogger verifies defaults for non-terminal writers
func TestNewConsoleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "")

	if cl.logLevel != "info" {
		t.Errorf("logLevel = %q, want info", cl.logLevel)
	}
	if cl.colorOutput {
		t.Error("colorOutput should be false for a bytes.Buffer")
	}
}

// TestTimestampFormat verifies the [HH:MM:SS] prefix
func TestTimestampFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogInfo("hello")

	re := regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[INFO\] hello\n$`)
	if !re.MatchString(buf.String()) {
		t.Errorf("unexpected format: %q", buf.String())
	}
}

// TestLogScanStart verifies the start line and pluralization
func TestLogScanStart(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "info")

	cl.LogScanStart("regexp", 1)
	cl.LogScanStart("bruteforce", 3)

	out := buf.String()
	if !strings.Contains(out, "Scanning 1 input with regexp") {
		t.Errorf("missing singular start line: %q", out)
	}
	if !strings.Contains(out, "Scanning 3 inputs with bruteforce") {
		t.Errorf("missing plural start line: %q", out)
	}
}

// TestLogFileResult verifies debug-level successes and warn-level failures
func TestLogFileResult(t *testing.T) {
	run := sampleRun()

	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "info")
	for _, f := range run.Files {
		cl.LogFileResult(f)
	}
	out := buf.String()
	if strings.Contains(out, "notes.txt") {
		t.Errorf("successful file should only be logged at debug: %q", out)
	}
	if !strings.Contains(out, "locked.txt: FAILED (permission denied)") {
		t.Errorf("failed file should be logged at info level: %q", out)
	}

	buf.Reset()
	cl = NewConsoleLogger(buf, "debug")
	for _, f := range run.Files {
		cl.LogFileResult(f)
	}
	if !strings.Contains(buf.String(), "notes.txt: 1 match\n") {
		t.Errorf("debug logger should report matches: %q", buf.String())
	}
}

// TestLogProgress verifies progress lines at debug level
func TestLogProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "debug").LogProgress(3, 6)
	if !strings.Contains(buf.String(), "Progress: [=====     ] 3/6 (50%)") {
		t.Errorf("unexpected progress line: %q", buf.String())
	}

	buf.Reset()
	NewConsoleLogger(buf, "info").LogProgress(3, 6)
	if buf.Len() != 0 {
		t.Errorf("progress should be hidden at info: %q", buf.String())
	}
}

// TestLogSummary verifies the summary block
func TestLogSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "info")
	cl.LogSummary(sampleRun())

	out := buf.String()
	for _, want := range []string{
		"=== Scan Summary ===",
		"Run: run-1234",
		"Inputs: 2",
		"Matches: 1",
		"Failed inputs: 1",
		"Duration: 1s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	cl.LogSummary(nil)
	if buf.Len() != 0 {
		t.Errorf("nil run should log nothing, got %q", buf.String())
	}
}

// TestConcurrentLogging verifies lines are never interleaved
func TestConcurrentLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cl.LogInfo(fmt.Sprintf("message %d", i))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "[INFO] message ") {
			t.Errorf("corrupted line: %q", line)
		}
	}
}

// TestNilWriter verifies a nil writer discards everything
func TestNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "trace")
	cl.LogInfo("x")
	cl.LogScanStart("bruteforce", 1)
	cl.LogFileResult(models.FileResult{Path: "a"})
	cl.LogProgress(1, 2)
	cl.LogSummary(sampleRun())
}

// TestDurationFormatting verifies human readable durations
func TestDurationFormatting(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

// TestNoOpLogger verifies the no-op logger accepts every call
func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogTrace("x")
	n.LogDebug("x")
	n.LogInfo("x")
	n.LogWarn("x")
	n.LogError("x")
	n.LogScanStart("bruteforce", 1)
	n.LogFileResult(models.FileResult{})
	n.LogProgress(0, 0)
	n.LogSummary(nil)
}
