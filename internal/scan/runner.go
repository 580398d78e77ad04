// Package scan runs a phone-number engine over a set of inputs: literal
// text, stdin, files and directory trees.
package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/phonescan/internal/fileutil"
	"github.com/harrison/phonescan/internal/logger"
	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
	"github.com/harrison/phonescan/internal/source"
)

// Logger receives progress events from a Runner.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
	LogScanStart(engine string, inputs int)
	LogFileResult(result models.FileResult)
	LogProgress(done, total int)
	LogSummary(run *models.ScanRun)
}

// Inputs lists what a run should scan.
type Inputs struct {
	// Texts are scanned as-is and reported as <arg:N>
	Texts []string
	// Paths are files or directories; directories are expanded with Options
	Paths []string
	// Stdin, when non-nil, is read fully and reported as <stdin>
	Stdin io.Reader
}

// Runner scans inputs with one engine.
type Runner struct {
	Engine phone.Engine
	Logger Logger
	// Options applies to directories found in Inputs.Paths
	Options fileutil.ScanOptions
	// MaxConcurrency bounds parallel inputs (0 = one worker per input)
	MaxConcurrency int
}

// NewRunner returns a Runner with the given engine and logger.
// A nil log is replaced by logger.NoOpLogger.
func NewRunner(engine phone.Engine, log Logger, opts fileutil.ScanOptions, maxConcurrency int) *Runner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{
		Engine:         engine,
		Logger:         log,
		Options:        opts,
		MaxConcurrency: maxConcurrency,
	}
}

// input is one resolved unit of work. text is set for arguments and stdin.
type input struct {
	path    string
	text    string
	hasText bool
}

// Run resolves inputs, scans them and returns the aggregated run.
// Missing paths fail the run before any scanning starts; unreadable files
// are recorded per file. Results keep the order inputs were given in.
func (r *Runner) Run(ctx context.Context, in Inputs) (*models.ScanRun, error) {
	started := time.Now()

	items, err := r.resolve(in)
	if err != nil {
		return nil, err
	}

	run := &models.ScanRun{
		ID:        uuid.New().String(),
		Engine:    r.Engine.Name(),
		StartedAt: started,
		Files:     make([]models.FileResult, len(items)),
	}
	r.Logger.LogScanStart(run.Engine, len(items))

	if err := r.scanAll(ctx, items, run.Files); err != nil {
		return nil, err
	}

	run.Tally()
	run.Duration = time.Since(started)
	r.Logger.LogSummary(run)
	return run, nil
}

func (r *Runner) resolve(in Inputs) ([]input, error) {
	items := make([]input, 0, len(in.Texts)+len(in.Paths)+1)

	for i, text := range in.Texts {
		items = append(items, input{path: fmt.Sprintf("%s%d>", models.ArgPrefix, i+1), text: text, hasText: true})
	}

	if in.Stdin != nil {
		data, err := io.ReadAll(in.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		items = append(items, input{path: models.StdinPath, text: string(data), hasText: true})
	}

	seen := make(map[string]bool)
	for _, path := range in.Paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if !info.IsDir() {
			if !seen[absPath] {
				seen[absPath] = true
				items = append(items, input{path: absPath})
			}
			continue
		}

		result, err := fileutil.ScanDirectory(absPath, r.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		for _, walkErr := range result.Errors {
			r.Logger.LogWarn(walkErr.Error())
		}
		r.Logger.LogDebug(fmt.Sprintf("%s: %d files selected", path, len(result.Files)))
		for _, f := range result.Files {
			if !seen[f] {
				seen[f] = true
				items = append(items, input{path: f})
			}
		}
	}

	return items, nil
}

// scanAll fills results[i] for items[i] using at most MaxConcurrency workers.
func (r *Runner) scanAll(ctx context.Context, items []input, results []models.FileResult) error {
	if len(items) == 0 {
		return ctx.Err()
	}

	maxConcurrency := r.MaxConcurrency
	if maxConcurrency <= 0 || maxConcurrency > len(items) {
		maxConcurrency = len(items)
	}
	semaphore := make(chan struct{}, maxConcurrency)

	var wg sync.WaitGroup
	// progressMu orders result and progress events: done counts up by one per event
	var progressMu sync.Mutex
	done := 0
	var launchErr error

launch:
	for i := range items {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}
		select {
		case <-ctx.Done():
			launchErr = ctx.Err()
			break launch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = r.scanOne(items[i])

			progressMu.Lock()
			defer progressMu.Unlock()
			done++
			r.Logger.LogFileResult(results[i])
			r.Logger.LogProgress(done, len(items))
		}(i)
	}

	wg.Wait()
	return launchErr
}

func (r *Runner) scanOne(in input) models.FileResult {
	if in.hasText {
		return models.FileResult{
			Path:    in.path,
			Kind:    string(source.KindText),
			Matches: r.Engine.Find(in.text),
		}
	}

	text, kind, err := source.ReadFile(in.path)
	if err != nil {
		return models.FileResult{
			Path:    in.path,
			Kind:    string(kind),
			Matches: []phone.Match{},
			Err:     err.Error(),
		}
	}
	return models.FileResult{
		Path:    in.path,
		Kind:    string(kind),
		Matches: r.Engine.Find(text),
	}
}
