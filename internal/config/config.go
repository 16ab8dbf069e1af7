package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "autoreport"

	// DefaultTitle is the document title of the generated report.
	DefaultTitle = "Model Report"

	// DefaultOutputPath is where the report is written, relative to the
	// working directory.
	DefaultOutputPath = "outputs/report.html"

	// DefaultSuffix is stripped from result file names to obtain the model
	// name, so VGG19_results.csv becomes VGG19.
	DefaultSuffix = "_results"

	// DefaultConcurrency is the number of result files loaded in parallel.
	DefaultConcurrency = 4

	// DefaultLogFormat writes human-readable logs to stderr.
	DefaultLogFormat = LogFormatText
)

// Log formats accepted by Config.LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration options for autoreport.
// It is built once by the command and passed down explicitly.
type Config struct {
	// Title is the document title and the heading of the report.
	Title string

	// OutputPath is the file the HTML report is written to.
	// Missing parent directories are created.
	OutputPath string

	// Suffix is removed from the end of a result file's base name (after
	// its extension is removed) to derive the model name. Files without the
	// suffix keep their base name.
	Suffix string

	// TemplateDir optionally points to a directory of *.html templates that
	// replace the embedded ones with the same name.
	TemplateDir string

	// Concurrency is the number of result files loaded in parallel.
	Concurrency int

	// MaxCellWidth truncates result table cells wider than this many
	// display columns. Zero disables truncation.
	MaxCellWidth int

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat selects the log handler: "text" or "json".
	LogFormat string

	// SaveHistory records every generated report in the history database
	// so accuracy can be compared across runs with "autoreport history".
	SaveHistory bool

	// HistoryDir is the directory holding the history database.
	// Defaults to the XDG data directory when empty.
	HistoryDir string

	// ConfigFilePath is the configuration file that was applied, if any.
	ConfigFilePath string

	// Inputs is the list of result files, in report order.
	Inputs []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Title:       DefaultTitle,
		OutputPath:  DefaultOutputPath,
		Suffix:      DefaultSuffix,
		Concurrency: DefaultConcurrency,
		LogFormat:   DefaultLogFormat,
	}
}

// XDGDataDir returns the XDG data directory for autoreport.
// On Linux: ~/.local/share/autoreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for autoreport.
// On Linux: ~/.config/autoreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HistoryDatabaseDir returns HistoryDir, or the XDG data directory when it
// is not set.
func (c *Config) HistoryDatabaseDir() string {
	if c.HistoryDir != "" {
		return c.HistoryDir
	}
	return XDGDataDir()
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Title == "" {
		return ErrEmptyTitle
	}

	if c.OutputPath == "" {
		return ErrEmptyOutputPath
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxCellWidth < 0 {
		return ErrInvalidMaxCellWidth
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return ErrInvalidLogFormat
	}

	return nil
}
