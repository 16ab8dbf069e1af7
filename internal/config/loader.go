package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file name looked up in the
	// working directory and the home directory.
	DefaultConfigFile = ".autoreport"

	// XDGConfigFile is the configuration file name inside XDGConfigDir.
	XDGConfigFile = "config.yaml"

	// EnvConfigPath names the environment variable holding an explicit
	// configuration file path.
	EnvConfigPath = "AUTOREPORT_CONFIG"
)

// File represents the structure of the configuration file.
// Unset fields leave the corresponding Config value untouched.
type File struct {
	Title        string  `yaml:"title,omitempty"`
	Output       string  `yaml:"output,omitempty"`
	Suffix       *string `yaml:"suffix,omitempty"`
	TemplateDir  string  `yaml:"templateDir,omitempty"`
	Concurrency  int     `yaml:"concurrency,omitempty"`
	MaxCellWidth int     `yaml:"maxCellWidth,omitempty"`
	Verbose      bool    `yaml:"verbose,omitempty"`
	LogFormat    string  `yaml:"logFormat,omitempty"`
	SaveHistory  bool    `yaml:"saveHistory,omitempty"`
	HistoryDir   string  `yaml:"historyDir,omitempty"`
}

// LoadConfigFile reads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cf, nil
}

// Apply overlays the values set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	if cf.Title != "" {
		cfg.Title = cf.Title
	}
	if cf.Output != "" {
		cfg.OutputPath = cf.Output
	}
	if cf.Suffix != nil {
		cfg.Suffix = *cf.Suffix
	}
	if cf.TemplateDir != "" {
		cfg.TemplateDir = cf.TemplateDir
	}
	if cf.Concurrency != 0 {
		cfg.Concurrency = cf.Concurrency
	}
	if cf.MaxCellWidth != 0 {
		cfg.MaxCellWidth = cf.MaxCellWidth
	}
	if cf.Verbose {
		cfg.Verbose = true
	}
	if cf.LogFormat != "" {
		cfg.LogFormat = cf.LogFormat
	}
	if cf.SaveHistory {
		cfg.SaveHistory = true
	}
	if cf.HistoryDir != "" {
		cfg.HistoryDir = cf.HistoryDir
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .autoreport in the current directory
//  3. config.yaml in the XDG config directory
//  4. .autoreport in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Load builds a Config from defaults and the configuration file, if one is
// found. An explicit path given through EnvConfigPath must exist.
func Load() (*Config, error) {
	cfg := NewConfig()

	explicit := os.Getenv(EnvConfigPath)
	path := FindConfigFile(explicit)
	if path == "" {
		if explicit != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return cfg, nil
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cf.Apply(cfg)
	cfg.ConfigFilePath = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
