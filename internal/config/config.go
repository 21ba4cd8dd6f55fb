// Package config loads lexsearch configuration from defaults, the user and
// project YAML files, and LEXSEARCH_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/scanner"
)

// ProjectConfigNames are the project config file names, in precedence order.
var ProjectConfigNames = []string{".lexsearch.yaml", ".lexsearch.yml"}

// Backends for the index store.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config represents the complete lexsearch configuration.
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	Indexing     IndexingConfig     `yaml:"indexing" json:"indexing"`
	Enumeration  EnumerationConfig  `yaml:"enumeration" json:"enumeration"`
	Output       OutputConfig       `yaml:"output" json:"output"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete" json:"autocomplete"`
	Search       SearchConfig       `yaml:"search" json:"search"`
	Logging      LoggingConfig      `yaml:"logging" json:"logging"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" json:"telemetry"`
	Watch        WatchConfig        `yaml:"watch" json:"watch"`
}

// IndexingConfig configures partitioning and keyword extraction.
type IndexingConfig struct {
	// ProcessCount is the number of partitions, and so of workers.
	ProcessCount int `yaml:"process_count" json:"process_count"`

	// TopKeywordsPerDoc bounds each document's refined keyword set.
	TopKeywordsPerDoc int `yaml:"top_keywords_per_doc" json:"top_keywords_per_doc"`

	SupportedFormats []string `yaml:"supported_formats" json:"supported_formats"`
	PartitionFolder  string   `yaml:"partition_folder" json:"partition_folder"`
	PartitionPattern string   `yaml:"partition_pattern" json:"partition_pattern"`
}

// EnumerationConfig selects how the partition files are produced.
type EnumerationConfig struct {
	// Mode is script, builtin or none.
	Mode string `yaml:"mode" json:"mode"`

	// Script defaults to scripts/pdf_search.sh (.bat on Windows).
	Script string `yaml:"script" json:"script"`

	// Timeout bounds a script run, as a Go duration.
	Timeout string `yaml:"timeout" json:"timeout"`

	// Roots and Exclude are used by the builtin walker.
	Roots   []string `yaml:"roots" json:"roots"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// OutputConfig configures the persisted files.
type OutputConfig struct {
	IndexPath        string `yaml:"index_path" json:"index_path"`
	AutocompletePath string `yaml:"autocomplete_path" json:"autocomplete_path"`
	Backend          string `yaml:"backend" json:"backend"`
	AtomicWrites     bool   `yaml:"atomic_writes" json:"atomic_writes"`
	Backups          int    `yaml:"backups" json:"backups"`
}

// AutocompleteConfig configures the vocabulary and completion.
type AutocompleteConfig struct {
	Size        int `yaml:"size" json:"size"`
	Suggestions int `yaml:"suggestions" json:"suggestions"`
}

// SearchConfig configures queries.
type SearchConfig struct {
	// MaxResults caps results; 0 means unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`
	CacheSize  int `yaml:"cache_size" json:"cache_size"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// TelemetryConfig configures metrics export.
type TelemetryConfig struct {
	// MetricsFile receives Prometheus text format metrics after each command.
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
}

// WatchConfig configures `index --watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Indexing: IndexingConfig{
			ProcessCount:      8,
			TopKeywordsPerDoc: 150,
			SupportedFormats:  []string{".pdf", ".docx"},
			PartitionFolder:   "all",
			PartitionPattern:  "pdf_part_%d.txt",
		},
		Enumeration: EnumerationConfig{
			Mode:    scanner.ModeScript,
			Timeout: "5m",
			Roots:   []string{},
			Exclude: append([]string(nil), scanner.DefaultExclude...),
		},
		Output: OutputConfig{
			IndexPath:        "output.json",
			AutocompletePath: "autocomplete_words.json",
			Backend:          BackendJSON,
			AtomicWrites:     true,
			Backups:          3,
		},
		Autocomplete: AutocompleteConfig{
			Size:        100,
			Suggestions: 10,
		},
		Search: SearchConfig{
			MaxResults: 0,
			CacheSize:  256,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Watch: WatchConfig{
			Debounce: "2s",
		},
	}
}

// GetUserConfigPath returns the user config file path, honoring
// XDG_CONFIG_HOME.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lexsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "lexsearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "lexsearch", "config.yaml")
}

// Load builds the configuration for the project in dir:
// defaults, then the user config, then the project config, then env
// overrides. The result is validated and its relative paths resolved
// against dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := FindProjectConfig(dir); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.resolvePaths(dir)
	return cfg, nil
}

// FindProjectConfig returns the project config file in dir, or "".
func FindProjectConfig(dir string) string {
	for _, name := range ProjectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir to the first directory holding a
// project config file. It returns startDir when none is found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	for cur := dir; ; {
		if FindProjectConfig(cur) != "" {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, nil
		}
		cur = parent
	}
}

// loadYAML overlays the keys present in the file onto c. Unknown keys are
// rejected so typos do not go unnoticed.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return lexerrors.ConfigError("failed to read config file "+path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return lexerrors.ConfigError("failed to parse config file "+path, err).
			WithDetail("path", path).
			WithSuggestion("Check the file against `lexsearch config show`")
	}
	return nil
}

// applyEnvOverrides applies LEXSEARCH_* variables. Unparseable numbers are
// ignored.
func (c *Config) applyEnvOverrides() {
	envInt("LEXSEARCH_PROCESS_COUNT", &c.Indexing.ProcessCount)
	envInt("LEXSEARCH_TOP_KEYWORDS", &c.Indexing.TopKeywordsPerDoc)
	envInt("LEXSEARCH_AUTOCOMPLETE_SIZE", &c.Autocomplete.Size)
	envString("LEXSEARCH_PARTITION_FOLDER", &c.Indexing.PartitionFolder)
	envString("LEXSEARCH_INDEX_PATH", &c.Output.IndexPath)
	envString("LEXSEARCH_AUTOCOMPLETE_PATH", &c.Output.AutocompletePath)
	envString("LEXSEARCH_ENUMERATION_MODE", &c.Enumeration.Mode)
	envString("LEXSEARCH_ENUMERATION_SCRIPT", &c.Enumeration.Script)
	envString("LEXSEARCH_BACKEND", &c.Output.Backend)
	envString("LEXSEARCH_LOG_LEVEL", &c.Logging.Level)
	envString("LEXSEARCH_METRICS_FILE", &c.Telemetry.MetricsFile)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// resolvePaths makes relative file paths absolute against dir.
func (c *Config) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	c.Indexing.PartitionFolder = abs(c.Indexing.PartitionFolder)
	c.Output.IndexPath = abs(c.Output.IndexPath)
	c.Output.AutocompletePath = abs(c.Output.AutocompletePath)
	c.Telemetry.MetricsFile = abs(c.Telemetry.MetricsFile)
	if c.Enumeration.Script == "" {
		c.Enumeration.Script = scanner.DefaultScript()
	}
	c.Enumeration.Script = abs(c.Enumeration.Script)
	for i, root := range c.Enumeration.Roots {
		c.Enumeration.Roots[i] = abs(root)
	}
}

// Validate checks the configuration and returns a config error describing
// the first problem found.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return lexerrors.ConfigError(fmt.Sprintf(format, args...), nil)
	}

	if c.Indexing.ProcessCount < 1 {
		return invalid("indexing.process_count must be positive, got %d", c.Indexing.ProcessCount)
	}
	if c.Indexing.TopKeywordsPerDoc < 1 {
		return invalid("indexing.top_keywords_per_doc must be positive, got %d", c.Indexing.TopKeywordsPerDoc)
	}
	if len(c.Indexing.SupportedFormats) == 0 {
		return invalid("indexing.supported_formats must not be empty")
	}
	for _, f := range c.Indexing.SupportedFormats {
		if !strings.HasPrefix(f, ".") || len(f) < 2 {
			return invalid("indexing.supported_formats entries must start with '.', got %q", f)
		}
	}
	if c.Indexing.PartitionFolder == "" {
		return invalid("indexing.partition_folder must not be empty")
	}
	if strings.Count(c.Indexing.PartitionPattern, "%d") != 1 {
		return invalid("indexing.partition_pattern must contain exactly one %%d, got %q", c.Indexing.PartitionPattern)
	}

	switch c.Enumeration.Mode {
	case scanner.ModeScript, scanner.ModeBuiltin, scanner.ModeNone:
	default:
		return invalid("enumeration.mode must be 'script', 'builtin' or 'none', got %q", c.Enumeration.Mode)
	}
	if d, err := time.ParseDuration(c.Enumeration.Timeout); err != nil || d <= 0 {
		return invalid("enumeration.timeout must be a positive duration, got %q", c.Enumeration.Timeout)
	}

	if c.Output.IndexPath == "" || c.Output.AutocompletePath == "" {
		return invalid("output.index_path and output.autocomplete_path must be set")
	}
	switch c.Output.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return invalid("output.backend must be 'json' or 'sqlite', got %q", c.Output.Backend)
	}
	if c.Output.Backups < 0 {
		return invalid("output.backups must be non-negative, got %d", c.Output.Backups)
	}

	if c.Autocomplete.Size < 1 {
		return invalid("autocomplete.size must be positive, got %d", c.Autocomplete.Size)
	}
	if c.Autocomplete.Suggestions < 1 {
		return invalid("autocomplete.suggestions must be positive, got %d", c.Autocomplete.Suggestions)
	}
	if c.Search.MaxResults < 0 {
		return invalid("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level)
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d <= 0 {
		return invalid("watch.debounce must be a positive duration, got %q", c.Watch.Debounce)
	}

	return nil
}

// EnumerationTimeout returns the parsed script timeout.
func (c *Config) EnumerationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Enumeration.Timeout)
	if err != nil || d <= 0 {
		return scanner.DefaultTimeout
	}
	return d
}

// WatchDebounce returns the parsed watch debounce window.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// ScriptPath returns the enumeration script, or the platform default.
func (c *Config) ScriptPath() string {
	if c.Enumeration.Script != "" {
		return c.Enumeration.Script
	}
	return scanner.DefaultScript()
}

// DataDir is the directory holding the index, its lock and backups.
func (c *Config) DataDir() string {
	return filepath.Dir(c.Output.IndexPath)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
