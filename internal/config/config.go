package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/harrison/phonescan/internal/fileutil"
	"github.com/harrison/phonescan/internal/phone"
)

// ScanConfig controls which files a directory scan reads
type ScanConfig struct {
	// Extensions lists file extensions to read when scanning directories
	Extensions []string `yaml:"extensions" toml:"extensions"`

	// ExcludeDirs lists directory names skipped while walking
	ExcludeDirs []string `yaml:"exclude_dirs" toml:"exclude_dirs"`

	// Recursive descends into subdirectories
	Recursive bool `yaml:"recursive" toml:"recursive"`

	// MaxDepth limits recursion depth (0 = unlimited)
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`

	// IncludeHidden walks dot-directories that are skipped by default
	IncludeHidden bool `yaml:"include_hidden" toml:"include_hidden"`
}

// HistoryConfig controls the scan history database
type HistoryConfig struct {
	// Enabled records every scan run in the database
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// DBPath is the SQLite database file
	DBPath string `yaml:"db_path" toml:"db_path"`
}

// ReportConfig controls report files written with --output
type ReportConfig struct {
	// Format is used when the output path has no recognizable extension (json, yaml)
	Format string `yaml:"format" toml:"format"`
}

// Config represents phonescan configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// LogDir is the directory for per-run log files (empty disables file logging)
	LogDir string `yaml:"log_dir" toml:"log_dir"`

	// Engine selects the scanner implementation (bruteforce, regexp)
	Engine string `yaml:"engine" toml:"engine"`

	// MaxConcurrency is the maximum number of files scanned at once (0 = unlimited)
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	Scan    ScanConfig    `yaml:"scan" toml:"scan"`
	History HistoryConfig `yaml:"history" toml:"history"`
	Report  ReportConfig  `yaml:"report" toml:"report"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogDir:         "logs",
		Engine:         phone.EngineBruteForce,
		MaxConcurrency: 0,
		Scan: ScanConfig{
			Extensions:  []string{".txt", ".md", ".markdown", ".html", ".htm"},
			ExcludeDirs: []string{".git", "node_modules", "vendor"},
			Recursive:   true,
			MaxDepth:    0,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "history.db",
		},
		Report: ReportConfig{
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// Files ending in .toml are decoded as TOML, anything else as YAML.
// If the file doesn't exist, returns default configuration without error.
// Only keys present in the file replace defaults, so `recursive: false` is honored.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var parsed Config
	var isSet func(keys ...string) bool

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), &parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		isSet = md.IsDefined
	} else {
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		// A second pass into a map tells us which keys were written at all
		var rawMap map[string]interface{}
		if err := yaml.Unmarshal(data, &rawMap); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		isSet = func(keys ...string) bool { return yamlKeyExists(rawMap, keys) }
	}

	cfg.merge(&parsed, isSet)
	return cfg, nil
}

func yamlKeyExists(m map[string]interface{}, keys []string) bool {
	for i, key := range keys {
		v, ok := m[key]
		if !ok {
			return false
		}
		if i == len(keys)-1 {
			return true
		}
		next, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		m = next
	}
	return false
}

// merge copies every field of src that isSet reports as present in the file.
func (c *Config) merge(src *Config, isSet func(keys ...string) bool) {
	if isSet("log_level") {
		c.LogLevel = src.LogLevel
	}
	if isSet("log_dir") {
		// Explicitly set log_dir, even if empty string
		c.LogDir = src.LogDir
	}
	if isSet("engine") {
		c.Engine = src.Engine
	}
	if isSet("max_concurrency") {
		c.MaxConcurrency = src.MaxConcurrency
	}

	if isSet("scan", "extensions") {
		c.Scan.Extensions = src.Scan.Extensions
	}
	if isSet("scan", "exclude_dirs") {
		c.Scan.ExcludeDirs = src.Scan.ExcludeDirs
	}
	if isSet("scan", "recursive") {
		c.Scan.Recursive = src.Scan.Recursive
	}
	if isSet("scan", "max_depth") {
		c.Scan.MaxDepth = src.Scan.MaxDepth
	}
	if isSet("scan", "include_hidden") {
		c.Scan.IncludeHidden = src.Scan.IncludeHidden
	}

	if isSet("history", "enabled") {
		c.History.Enabled = src.History.Enabled
	}
	if isSet("history", "db_path") {
		c.History.DBPath = src.History.DBPath
	}

	if isSet("report", "format") {
		c.Report.Format = src.Report.Format
	}
}

// configNames are tried in order inside the .phonescan directory
var configNames = []string{"config.yaml", "config.yml", "config.toml"}

// LoadConfigFromDir loads the first of .phonescan/config.yaml, config.yml or
// config.toml found in the specified directory.
// If none exists, returns default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, path := range fileutil.JoinPaths(filepath.Join(dir, ".phonescan"), configNames) {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// ApplyEnv overrides configuration from PHONESCAN_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PHONESCAN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PHONESCAN_ENGINE"); v != "" {
		c.Engine = v
	}
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(engine *string, maxConcurrency *int, logLevel *string, logDir *string, recursive *bool, maxDepth *int, extensions *[]string, excludeDirs *[]string, includeHidden *bool, noHistory *bool) {
	if engine != nil {
		c.Engine = *engine
	}
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if recursive != nil {
		c.Scan.Recursive = *recursive
	}
	if maxDepth != nil {
		c.Scan.MaxDepth = *maxDepth
	}
	if extensions != nil {
		c.Scan.Extensions = *extensions
	}
	if excludeDirs != nil {
		c.Scan.ExcludeDirs = *excludeDirs
	}
	if includeHidden != nil {
		c.Scan.IncludeHidden = *includeHidden
	}
	if noHistory != nil && *noHistory {
		c.History.Enabled = false
	}
}

// ResolvePaths makes relative log_dir and history.db_path absolute under home.
// An empty log_dir stays empty and disables file logging.
func (c *Config) ResolvePaths(home string) {
	if c.LogDir != "" && !filepath.IsAbs(c.LogDir) {
		c.LogDir = filepath.Join(home, c.LogDir)
	}
	if c.History.DBPath != "" && c.History.DBPath != ":memory:" && !filepath.IsAbs(c.History.DBPath) {
		c.History.DBPath = filepath.Join(home, c.History.DBPath)
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if _, err := phone.EngineByName(c.Engine); err != nil {
		return fmt.Errorf("invalid engine: %w", err)
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("scan.max_depth must be >= 0, got %d", c.Scan.MaxDepth)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	switch strings.ToLower(c.Report.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("invalid report.format %q, must be one of: json, yaml", c.Report.Format)
	}

	return nil
}
