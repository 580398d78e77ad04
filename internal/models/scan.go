package models

import (
	"time"

	"github.com/harrison/phonescan/internal/phone"
)

// Pseudo paths used for inputs that do not come from files.
const (
	StdinPath = "<stdin>"
	ArgPrefix = "<arg:"
)

// FileResult is the outcome of scanning one input.
type FileResult struct {
	Path    string        `json:"path" yaml:"path"`
	Kind    string        `json:"kind" yaml:"kind"`
	Matches []phone.Match `json:"matches" yaml:"matches"`
	// Err is the read/extract failure message; empty on success
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the input could not be scanned.
func (r FileResult) Failed() bool {
	return r.Err != ""
}

// ScanRun is the aggregate result of one scan invocation.
type ScanRun struct {
	ID           string        `json:"id" yaml:"id"`
	Engine       string        `json:"engine" yaml:"engine"`
	StartedAt    time.Time     `json:"started_at" yaml:"started_at"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	Files        []FileResult  `json:"files" yaml:"files"`
	TotalMatches int           `json:"total_matches" yaml:"total_matches"`
	FailedFiles  int           `json:"failed_files" yaml:"failed_files"`
}

// Tally recomputes TotalMatches and FailedFiles from Files.
func (r *ScanRun) Tally() {
	r.TotalMatches = 0
	r.FailedFiles = 0
	for _, f := range r.Files {
		r.TotalMatches += len(f.Matches)
		if f.Failed() {
			r.FailedFiles++
		}
	}
}

// Numbers flattens the matched numbers of every file, in order.
func (r *ScanRun) Numbers() []string {
	numbers := make([]string, 0, r.TotalMatches)
	for _, f := range r.Files {
		for _, m := range f.Matches {
			numbers = append(numbers, m.Number)
		}
	}
	return numbers
}
