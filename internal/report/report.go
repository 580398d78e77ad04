// Package report exports scan runs as JSON or YAML documents.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/phonescan/internal/models"
)

// Supported report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for formats other than json and yaml.
var ErrUnknownFormat = errors.New("unknown report format")

// Document is the on-disk shape of a report.
type Document struct {
	RunID      string              `json:"run_id" yaml:"run_id"`
	Engine     string              `json:"engine" yaml:"engine"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	DurationMs int64               `json:"duration_ms" yaml:"duration_ms"`
	Summary    Summary             `json:"summary" yaml:"summary"`
	Files      []models.FileResult `json:"files" yaml:"files"`
}

// Summary holds the run totals.
type Summary struct {
	Inputs  int `json:"inputs" yaml:"inputs"`
	Matches int `json:"matches" yaml:"matches"`
	Failed  int `json:"failed" yaml:"failed"`
}

// NewDocument builds the report document for run.
func NewDocument(run *models.ScanRun) Document {
	files := run.Files
	if files == nil {
		files = []models.FileResult{}
	}
	return Document{
		RunID:      run.ID,
		Engine:     run.Engine,
		StartedAt:  run.StartedAt.UTC(),
		DurationMs: run.Duration.Milliseconds(),
		Summary: Summary{
			Inputs:  len(run.Files),
			Matches: run.TotalMatches,
			Failed:  run.FailedFiles,
		},
		Files: files,
	}
}

// NormalizeFormat lowercases format and maps "yml" to "yaml".
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: json, yaml)", ErrUnknownFormat, format)
	}
}

// FormatFromPath infers the format from the file extension.
// It returns "" when the extension is not recognized.
func FormatFromPath(path string) string {
	f, err := NormalizeFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return ""
	}
	return f
}

// Marshal encodes run in the given format.
func Marshal(run *models.ScanRun, format string) ([]byte, error) {
	f, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(run)
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json report: %w", err)
		}
		return append(data, '\n'), nil
	default:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml report: %w", err)
		}
		return data, nil
	}
}

// Write marshals run and writes it to path under a file lock.
// An empty format is inferred from the path, falling back to JSON.
func Write(path string, run *models.ScanRun, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if format == "" {
		format = FormatJSON
	}

	data, err := Marshal(run, format)
	if err != nil {
		return err
	}
	if err := LockAndWrite(path, data); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
