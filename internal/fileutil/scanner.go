package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions controls which files ScanDirectory returns.
type ScanOptions struct {
	// Pattern is a regex matched against the filename without its extension
	Pattern string
	// Extensions restricts results to these extensions (".txt" or "txt", case-insensitive)
	Extensions []string
	// Recursive descends into subdirectories
	Recursive bool
	// ExcludeDirs lists directory names to skip wherever they appear
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = top level only)
	MaxDepth int
	// IncludeHidden keeps dot-directories that are skipped by default
	IncludeHidden bool
}

// ScanResult holds the outcome of ScanDirectory.
type ScanResult struct {
	// Files are absolute, sorted paths of matched files
	Files []string
	// Errors are non-fatal problems met while walking
	Errors []error
}

// ScanDirectory walks dir and collects the files accepted by opts.
// Unreadable entries are recorded in ScanResult.Errors and the walk continues.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	// Validate directory exists
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	// Compile pattern if provided
	var patternRegex *regexp.Regexp
	if opts.Pattern != "" {
		patternRegex, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	extMap := NormalizeExtensions(opts.Extensions)

	// Excluded names apply at every level
	excludeMap := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		// Skip the root directory itself
		if path == dir {
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			// Skip excluded and hidden directories
			if excludeMap[name] || (!opts.IncludeHidden && strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			// Check max depth
			if opts.MaxDepth > 0 && depthOf(dir, path) >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		filename := d.Name()
		ext := filepath.Ext(filename)
		// Check extension if specified
		if len(extMap) > 0 && !extMap[strings.ToLower(ext)] {
			return nil
		}
		// Pattern matches the name without its extension
		if patternRegex != nil && !patternRegex.MatchString(strings.TrimSuffix(filename, ext)) {
			return nil
		}

		// Convert to absolute path
		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, absPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)
	return result, nil
}

// depthOf counts path components of path below root ("root/a" is 1).
func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// NormalizeExtensions lower-cases extensions and adds the leading dot.
// Empty entries are dropped.
func NormalizeExtensions(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m[ext] = true
	}
	return m
}

// JoinPaths joins base with each name using the OS separator.
// The result has one entry per name, in order.
func JoinPaths(base string, names []string) []string {
	joined := make([]string, 0, len(names))
	for _, name := range names {
		joined = append(joined, filepath.Join(base, name))
	}
	return joined
}
