package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/phonescan/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	// Start with yellow color, emoji, and title
	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	// Add message with 4-space indent if present
	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	// Numbered inputs, singular or plural heading
	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected input:\n")
		} else {
			b.WriteString("Affected inputs:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	// Suggestion goes under its own heading
	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	// End with reset code
	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// WarnFailedInputs builds a warning for the inputs of run that could not be
// scanned. ok is false when every input succeeded.
func WarnFailedInputs(run *models.ScanRun) (w Warning, ok bool) {
	var files []string
	for _, f := range run.Files {
		if f.Failed() {
			files = append(files, fmt.Sprintf("%s: %s", f.Path, f.Err))
		}
	}
	if len(files) == 0 {
		return Warning{}, false
	}

	title := "1 input could not be scanned"
	if len(files) > 1 {
		title = fmt.Sprintf("%d inputs could not be scanned", len(files))
	}
	return Warning{
		Title:      title,
		Message:    "Matches from the remaining inputs are still reported.",
		Files:      files,
		Suggestion: "Check that the files exist and are readable, then re-run the scan.",
	}, true
}
