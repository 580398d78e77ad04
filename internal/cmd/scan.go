package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/harrison/phonescan/internal/config"
	"github.com/harrison/phonescan/internal/display"
	"github.com/harrison/phonescan/internal/fileutil"
	"github.com/harrison/phonescan/internal/logger"
	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
	"github.com/harrison/phonescan/internal/report"
	"github.com/harrison/phonescan/internal/scan"
	"github.com/harrison/phonescan/internal/store"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "Find phone numbers in text, files, or directories",
		Long: `Scan reports every DDD-DDD-DDDD phone number found in its inputs as
"path:offset: number", where offset is the byte offset in the input text.

Inputs can be:
  - literal text passed with --text (repeatable)
  - "-" to read stdin
  - files (.md/.markdown are rendered to text, .html/.htm stripped to visible text)
  - directories, walked for files with the configured extensions

Each run is recorded in the scan history unless --no-history is given.`,
		Example: `  phonescan scan --text "Call me at 415-555-1234 tomorrow."
  cat notes.txt | phonescan scan -
  phonescan scan docs/ --ext .md --output report.json`,
		RunE: runScan,
	}

	cmd.Flags().StringArray("text", nil, "Literal text to scan (repeatable)")
	cmd.Flags().String("engine", "", "Scan engine: bruteforce or regexp (default from config)")
	cmd.Flags().Bool("recursive", true, "Walk directories recursively")
	cmd.Flags().StringSlice("ext", nil, "File extensions to include when walking directories (e.g. .txt,.md)")
	cmd.Flags().StringSlice("exclude", nil, "Directory names to skip when walking")
	cmd.Flags().Int("max-depth", 0, "Maximum directory depth (0 = unlimited)")
	cmd.Flags().Bool("include-hidden", false, "Also walk dot-directories such as .config")
	cmd.Flags().Int("max-concurrency", 0, "Maximum number of files scanned at once (0 = unlimited)")
	cmd.Flags().StringP("output", "o", "", "Write a report of the run to this file")
	cmd.Flags().String("format", "", "Report format: json or yaml (default from --output extension, then config)")
	cmd.Flags().Bool("numbers-only", false, "Print only the matched numbers, one per line")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the scan history")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for log files")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	texts, _ := cmd.Flags().GetStringArray("text")
	paths, useStdin, err := splitStdin(args)
	if err != nil {
		return err
	}
	if len(texts) == 0 && len(paths) == 0 && !useStdin {
		return fmt.Errorf("nothing to scan: pass paths, --text, or - for stdin")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mergeScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	reportFormat, err := resolveReportFormat(cmd, cfg, outputPath)
	if err != nil {
		return err
	}

	engine, err := phone.EngineByName(cfg.Engine)
	if err != nil {
		return err
	}

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	loggers := []scan.Logger{consoleLog}
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}
	multiLog := &multiLogger{loggers: loggers}

	opts := fileutil.ScanOptions{
		Extensions:    cfg.Scan.Extensions,
		Recursive:     cfg.Scan.Recursive,
		ExcludeDirs:   cfg.Scan.ExcludeDirs,
		MaxDepth:      cfg.Scan.MaxDepth,
		IncludeHidden: cfg.Scan.IncludeHidden,
	}
	runner := scan.NewRunner(engine, multiLog, opts, cfg.MaxConcurrency)

	inputs := scan.Inputs{Texts: texts, Paths: paths}
	if useStdin {
		inputs.Stdin = cmd.InOrStdin()
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	run, err := runner.Run(ctx, inputs)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	cwd, _ := os.Getwd()
	printer := display.NewResultPrinter(cmd.OutOrStdout(), cwd)
	numbersOnly, _ := cmd.Flags().GetBool("numbers-only")
	if numbersOnly {
		printer.PrintNumbers(run)
	} else {
		printer.PrintMatches(run)
	}
	if w, ok := display.WarnFailedInputs(run); ok {
		w.Display(cmd.ErrOrStderr())
	}

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.History.DBPath, run); err != nil {
			consoleLog.LogWarn(fmt.Sprintf("failed to record scan history: %v", err))
		}
	}

	if outputPath != "" {
		if err := report.Write(outputPath, run, reportFormat); err != nil {
			return err
		}
		consoleLog.LogInfo(fmt.Sprintf("Report written to: %s", outputPath))
	}

	if !numbersOnly {
		printer.PrintSummary(run)
	}

	if run.FailedFiles > 0 {
		return fmt.Errorf("%d input(s) could not be scanned", run.FailedFiles)
	}
	return nil
}

// splitStdin separates the "-" stdin marker from file arguments.
func splitStdin(args []string) (paths []string, stdin bool, err error) {
	for _, arg := range args {
		if arg == "-" {
			if stdin {
				return nil, false, errors.New(`"-" (stdin) can only be given once`)
			}
			stdin = true
			continue
		}
		paths = append(paths, arg)
	}
	return paths, stdin, nil
}

// mergeScanFlags passes only the flags the user actually set to MergeWithFlags.
func mergeScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	var enginePtr *string
	if flags.Changed("engine") {
		v, _ := flags.GetString("engine")
		enginePtr = &v
	}

	var maxConcurrencyPtr *int
	if flags.Changed("max-concurrency") {
		v, _ := flags.GetInt("max-concurrency")
		maxConcurrencyPtr = &v
	}

	var logLevelPtr *string
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		logLevelPtr = &v
	}

	var logDirPtr *string
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		logDirPtr = &v
	}

	var recursivePtr *bool
	if flags.Changed("recursive") {
		v, _ := flags.GetBool("recursive")
		recursivePtr = &v
	}

	var maxDepthPtr *int
	if flags.Changed("max-depth") {
		v, _ := flags.GetInt("max-depth")
		maxDepthPtr = &v
	}

	var extensionsPtr *[]string
	if flags.Changed("ext") {
		v, _ := flags.GetStringSlice("ext")
		extensionsPtr = &v
	}

	var excludePtr *[]string
	if flags.Changed("exclude") {
		v, _ := flags.GetStringSlice("exclude")
		excludePtr = &v
	}

	var includeHiddenPtr *bool
	if flags.Changed("include-hidden") {
		v, _ := flags.GetBool("include-hidden")
		includeHiddenPtr = &v
	}

	var noHistoryPtr *bool
	if flags.Changed("no-history") {
		v, _ := flags.GetBool("no-history")
		noHistoryPtr = &v
	}

	cfg.MergeWithFlags(enginePtr, maxConcurrencyPtr, logLevelPtr, logDirPtr, recursivePtr, maxDepthPtr, extensionsPtr, excludePtr, includeHiddenPtr, noHistoryPtr)
}

// resolveReportFormat picks --format, then the --output extension, then config.
func resolveReportFormat(cmd *cobra.Command, cfg *config.Config, outputPath string) (string, error) {
	format := cfg.Report.Format
	if outputPath != "" {
		if inferred := report.FormatFromPath(outputPath); inferred != "" {
			format = inferred
		}
	}
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	return report.NormalizeFormat(format)
}

func recordHistory(ctx context.Context, dbPath string, run *models.ScanRun) error {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.RecordRun(ctx, run)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// multiLogger implements scan.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []scan.Logger
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, logger := range ml.loggers {
		logger.LogDebug(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, logger := range ml.loggers {
		logger.LogWarn(message)
	}
}

// LogScanStart forwards to all loggers
func (ml *multiLogger) LogScanStart(engine string, inputs int) {
	for _, logger := range ml.loggers {
		logger.LogScanStart(engine, inputs)
	}
}

// LogFileResult forwards to all loggers
func (ml *multiLogger) LogFileResult(result models.FileResult) {
	for _, logger := range ml.loggers {
		logger.LogFileResult(result)
	}
}

// LogProgress forwards to all loggers
func (ml *multiLogger) LogProgress(done, total int) {
	for _, logger := range ml.loggers {
		logger.LogProgress(done, total)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(run *models.ScanRun) {
	for _, logger := range ml.loggers {
		logger.LogSummary(run)
	}
}
