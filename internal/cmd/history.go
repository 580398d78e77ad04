package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/phonescan/internal/display"
	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
	"github.com/harrison/phonescan/internal/store"
)

// NewHistoryCommand creates the 'phonescan history' command group
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scan runs",
		Long: `History lists recorded scan runs, newest first.

Use 'history show <run-id>' for the matches of one run and
'history find <number>' to see everywhere a number has been seen.`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 = all)")

	cmd.AddCommand(NewHistoryShowCommand())
	cmd.AddCommand(NewHistoryFindCommand())

	return cmd
}

// NewHistoryShowCommand creates the 'phonescan history show' command
func NewHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the inputs and matches of one run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}
}

// NewHistoryFindCommand creates the 'phonescan history find' command
func NewHistoryFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find <number>",
		Short: "List every recorded occurrence of a phone number",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryFind,
	}
}

// openHistory opens the history database. ok is false when no history has
// been recorded yet, in which case nothing is created.
func openHistory(cmd *cobra.Command) (s *store.Store, ok bool, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, false, err
	}

	dbPath := cfg.History.DBPath
	if dbPath == "" {
		return nil, false, nil
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, false, nil
	}

	s, err = store.NewStore(dbPath)
	if err != nil {
		return nil, false, fmt.Errorf("open history store: %w", err)
	}
	return s, true, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	limit, _ := cmd.Flags().GetInt("limit")

	s, ok, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(output, "No scan history found.")
		return nil
	}
	defer s.Close()

	runs, err := s.ListRuns(commandContext(cmd), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No scan history found.")
		return nil
	}

	printRunList(output, runs)
	return nil
}

// printRunList formats the run table
func printRunList(w io.Writer, runs []store.RunSummary) {
	cyan := color.New(color.FgCyan, color.Bold)
	red := color.New(color.FgRed)

	cyan.Fprintf(w, "\n=== Scan History (%d run%s) ===\n\n", len(runs), pluralS(len(runs)))
	fmt.Fprintf(w, "%-36s  %-19s  %-10s  %6s  %7s  %6s  %8s\n",
		"RUN", "STARTED", "ENGINE", "INPUTS", "MATCHES", "FAILED", "DURATION")

	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %-10s  %6d  %7d  ",
			r.ID, formatTimestamp(r.StartedAt), r.Engine, r.FileCount, r.MatchCount)
		if r.FailedCount > 0 {
			red.Fprintf(w, "%6d", r.FailedCount)
		} else {
			fmt.Fprintf(w, "%6d", r.FailedCount)
		}
		fmt.Fprintf(w, "  %8s\n", r.Duration.Round(time.Millisecond))
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	runID := args[0]

	s, ok, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s (no scan history recorded)", store.ErrRunNotFound, runID)
	}
	defer s.Close()

	run, err := s.GetRun(commandContext(cmd), runID)
	if err != nil {
		return err
	}

	printRunDetail(output, run)
	return nil
}

// printRunDetail prints the header of a run followed by its matches
func printRunDetail(w io.Writer, run *models.ScanRun) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Run %s ===\n\n", run.ID)
	fmt.Fprintf(w, "  Started:  %s ", formatTimestamp(run.StartedAt))
	gray.Fprintf(w, "(%s ago)\n", formatAgo(time.Since(run.StartedAt)))
	fmt.Fprintf(w, "  Engine:   %s\n", run.Engine)
	fmt.Fprintf(w, "  Duration: %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Inputs:   %d (%d failed)\n", len(run.Files), run.FailedFiles)
	fmt.Fprintf(w, "  Matches:  %d\n\n", run.TotalMatches)

	printer := display.NewResultPrinter(w, "")
	printer.PrintMatches(run)
	if warning, ok := display.WarnFailedInputs(run); ok {
		fmt.Fprintln(w)
		warning.Display(w)
	}
}

func runHistoryFind(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	number := args[0]

	if !phone.IsPhoneNumber(number) {
		return fmt.Errorf("invalid phone number %q: want DDD-DDD-DDDD", number)
	}

	s, ok, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(output, "%s has not been seen.\n", number)
		return nil
	}
	defer s.Close()

	hits, err := s.FindNumber(commandContext(cmd), number)
	if err != nil {
		return fmt.Errorf("find number: %w", err)
	}
	if len(hits) == 0 {
		fmt.Fprintf(output, "%s has not been seen.\n", number)
		return nil
	}

	color.New(color.FgCyan, color.Bold).Fprintf(output, "\n=== %s: %d occurrence%s ===\n\n", number, len(hits), pluralS(len(hits)))
	for _, h := range hits {
		fmt.Fprintf(output, "%s  %s  %s:%d\n", formatTimestamp(h.StartedAt), h.RunID, h.Path, h.Offset)
	}
	return nil
}

// formatTimestamp formats a timestamp in local time for display
func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatAgo formats an elapsed duration in human-readable form
func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
