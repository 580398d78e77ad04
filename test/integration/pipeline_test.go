package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/phonescan/internal/fileutil"
	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
	"github.com/harrison/phonescan/internal/report"
	"github.com/harrison/phonescan/internal/scan"
	"github.com/harrison/phonescan/internal/store"
)

var corpusOptions = fileutil.ScanOptions{
	Extensions:  []string{".txt", ".md", ".html"},
	Recursive:   true,
	ExcludeDirs: []string{"node_modules"},
}

func scanCorpus(t *testing.T, engineName string) *models.ScanRun {
	t.Helper()
	engine, err := phone.EngineByName(engineName)
	if err != nil {
		t.Fatalf("EngineByName(%q): %v", engineName, err)
	}

	runner := scan.NewRunner(engine, nil, corpusOptions, 2)
	run, err := runner.Run(context.Background(), scan.Inputs{
		Paths: []string{filepath.Join("fixtures", "corpus")},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return run
}

func TestScanCorpus(t *testing.T) {
	run := scanCorpus(t, phone.EngineBruteForce)

	want := []string{"415-555-1234", "415-555-1235", "917-555-0199", "212-555-0100", "212-555-0101"}
	got := run.Numbers()
	if len(got) != len(want) {
		t.Fatalf("Expected numbers %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("number %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if len(run.Files) != 3 {
		t.Errorf("Expected 3 files (node_modules and .dat skipped), got %d", len(run.Files))
	}
	if run.FailedFiles != 0 {
		t.Errorf("Expected no failed files, got %d", run.FailedFiles)
	}
}

func TestEnginesAgreeOnCorpus(t *testing.T) {
	brute := scanCorpus(t, phone.EngineBruteForce)
	re := scanCorpus(t, phone.EngineRegexp)

	if len(brute.Files) != len(re.Files) {
		t.Fatalf("file counts differ: %d vs %d", len(brute.Files), len(re.Files))
	}
	for i := range brute.Files {
		b, r := brute.Files[i], re.Files[i]
		if len(b.Matches) != len(r.Matches) {
			t.Errorf("%s: bruteforce %v, regexp %v", b.Path, b.Matches, r.Matches)
			continue
		}
		for j := range b.Matches {
			if b.Matches[j] != r.Matches[j] {
				t.Errorf("%s match %d: bruteforce %v, regexp %v", b.Path, j, b.Matches[j], r.Matches[j])
			}
		}
	}
}

func TestMatchOffsetsIndexExtractedText(t *testing.T) {
	run := scanCorpus(t, phone.EngineBruteForce)

	for _, f := range run.Files {
		if f.Kind != "text" {
			continue
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			t.Fatalf("read %s: %v", f.Path, err)
		}
		for _, m := range f.Matches {
			if got := string(data[m.Offset : m.Offset+len(m.Number)]); got != m.Number {
				t.Errorf("%s@%d: expected %s, found %q", f.Path, m.Offset, m.Number, got)
			}
		}
	}
}

func TestRunRecordAndReport(t *testing.T) {
	run := scanCorpus(t, phone.EngineRegexp)
	ctx := context.Background()
	tmp := t.TempDir()

	s, err := store.NewStore(filepath.Join(tmp, "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	stored, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if stored.TotalMatches != run.TotalMatches || len(stored.Files) != len(run.Files) {
		t.Errorf("stored run differs: %d/%d matches, %d/%d files",
			stored.TotalMatches, run.TotalMatches, len(stored.Files), len(run.Files))
	}

	hits, err := s.FindNumber(ctx, "917-555-0199")
	if err != nil {
		t.Fatalf("FindNumber: %v", err)
	}
	if len(hits) != 1 || filepath.Base(hits[0].Path) != "directory.html" {
		t.Errorf("unexpected hits for 917-555-0199: %+v", hits)
	}

	reportPath := filepath.Join(tmp, "report.json")
	if err := report.Write(reportPath, stored, ""); err != nil {
		t.Fatalf("report.Write: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var doc report.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if doc.RunID != run.ID || doc.Summary.Matches != 5 {
		t.Errorf("unexpected report summary: %+v", doc.Summary)
	}
}
