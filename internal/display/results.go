package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/phonescan/internal/models"
)

// ResultPrinter writes matches and the closing summary of a scan.
type ResultPrinter struct {
	writer io.Writer
	// base shortens file paths; pseudo paths and paths outside base print as-is
	base string
}

// NewResultPrinter creates a printer that shows paths relative to base.
// An empty base prints paths unchanged.
func NewResultPrinter(w io.Writer, base string) *ResultPrinter {
	return &ResultPrinter{writer: w, base: base}
}

// DisplayPath returns the path as shown to the user.
func (p *ResultPrinter) DisplayPath(path string) string {
	if p.base == "" || strings.HasPrefix(path, "<") || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(p.base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// PrintMatches writes every match of run as "path:offset: number".
func (p *ResultPrinter) PrintMatches(run *models.ScanRun) {
	for _, f := range run.Files {
		path := p.DisplayPath(f.Path)
		for _, m := range f.Matches {
			fmt.Fprintf(p.writer, "%s:%d: %s\n", path, m.Offset, m.Number)
		}
	}
}

// PrintNumbers writes only the matched numbers, one per line.
func (p *ResultPrinter) PrintNumbers(run *models.ScanRun) {
	for _, n := range run.Numbers() {
		fmt.Fprintln(p.writer, n)
	}
}

// PrintSummary writes the one-line totals, green when nothing failed.
func (p *ResultPrinter) PrintSummary(run *models.ScanRun) {
	c := color.New(color.FgGreen)
	if run.FailedFiles > 0 {
		c = color.New(color.FgYellow)
	}
	c.Fprintf(p.writer, "✓ %d match%s in %d input%s",
		run.TotalMatches, suffix(run.TotalMatches, "es"),
		len(run.Files), suffix(len(run.Files), "s"))
	if run.FailedFiles > 0 {
		c.Fprintf(p.writer, " (%d failed)", run.FailedFiles)
	}
	fmt.Fprintln(p.writer)
}

func suffix(n int, s string) string {
	if n == 1 {
		return ""
	}
	return s
}
