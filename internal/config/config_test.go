package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Title is Model Report", func(t *testing.T) {
		t.Parallel()
		if cfg.Title != "Model Report" {
			t.Errorf("expected Title to be 'Model Report', got '%s'", cfg.Title)
		}
	})

	t.Run("default OutputPath is outputs/report.html", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputPath != "outputs/report.html" {
			t.Errorf("expected OutputPath to be 'outputs/report.html', got '%s'", cfg.OutputPath)
		}
	})

	t.Run("default Suffix is _results", func(t *testing.T) {
		t.Parallel()
		if cfg.Suffix != "_results" {
			t.Errorf("expected Suffix to be '_results', got '%s'", cfg.Suffix)
		}
	})

	t.Run("default Concurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 4 {
			t.Errorf("expected Concurrency to be 4, got %d", cfg.Concurrency)
		}
	})

	t.Run("truncation and history are disabled", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxCellWidth != 0 {
			t.Errorf("expected MaxCellWidth to be 0, got %d", cfg.MaxCellWidth)
		}
		if cfg.SaveHistory {
			t.Error("expected SaveHistory to be false")
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{
			name:   "empty title returns ErrEmptyTitle",
			modify: func(c *Config) { c.Title = "" },
			want:   ErrEmptyTitle,
		},
		{
			name:   "empty output returns ErrEmptyOutputPath",
			modify: func(c *Config) { c.OutputPath = "" },
			want:   ErrEmptyOutputPath,
		},
		{
			name:   "zero concurrency returns ErrInvalidConcurrency",
			modify: func(c *Config) { c.Concurrency = 0 },
			want:   ErrInvalidConcurrency,
		},
		{
			name:   "negative concurrency returns ErrInvalidConcurrency",
			modify: func(c *Config) { c.Concurrency = -1 },
			want:   ErrInvalidConcurrency,
		},
		{
			name:   "negative max cell width returns ErrInvalidMaxCellWidth",
			modify: func(c *Config) { c.MaxCellWidth = -1 },
			want:   ErrInvalidMaxCellWidth,
		},
		{
			name:   "unknown log format returns ErrInvalidLogFormat",
			modify: func(c *Config) { c.LogFormat = "xml" },
			want:   ErrInvalidLogFormat,
		},
		{
			name:   "json log format is valid",
			modify: func(c *Config) { c.LogFormat = LogFormatJSON },
		},
		{
			name:   "empty suffix is valid",
			modify: func(c *Config) { c.Suffix = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestHistoryDatabaseDir tests the history directory fallback.
func TestHistoryDatabaseDir(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the XDG data directory", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if got := cfg.HistoryDatabaseDir(); got != XDGDataDir() {
			t.Errorf("expected %q, got %q", XDGDataDir(), got)
		}
	})

	t.Run("uses HistoryDir when set", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.HistoryDir = "/tmp/history"
		if got := cfg.HistoryDatabaseDir(); got != "/tmp/history" {
			t.Errorf("expected /tmp/history, got %q", got)
		}
	})
}

// TestLoadConfigFile tests reading configuration files.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.autoreport")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, `title: "Nightly Evaluation"
output: build/report.html
suffix: ""
templateDir: templates
concurrency: 8
maxCellWidth: 40
verbose: true
logFormat: json
saveHistory: true
historyDir: /var/lib/autoreport
`)

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.Title != "Nightly Evaluation" {
			t.Errorf("unexpected title %q", cfg.Title)
		}
		if cfg.OutputPath != "build/report.html" {
			t.Errorf("unexpected output %q", cfg.OutputPath)
		}
		if cfg.Suffix != "" {
			t.Errorf("expected explicit empty suffix, got %q", cfg.Suffix)
		}
		if cfg.TemplateDir != "templates" {
			t.Errorf("unexpected template dir %q", cfg.TemplateDir)
		}
		if cfg.Concurrency != 8 || cfg.MaxCellWidth != 40 {
			t.Errorf("unexpected concurrency %d or max cell width %d", cfg.Concurrency, cfg.MaxCellWidth)
		}
		if !cfg.Verbose || !cfg.SaveHistory {
			t.Error("expected verbose and saveHistory to be enabled")
		}
		if cfg.LogFormat != LogFormatJSON {
			t.Errorf("unexpected log format %q", cfg.LogFormat)
		}
		if cfg.HistoryDir != "/var/lib/autoreport" {
			t.Errorf("unexpected history dir %q", cfg.HistoryDir)
		}
	})

	t.Run("keeps defaults for unset fields", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, "title: Custom\n")

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.Title != "Custom" {
			t.Errorf("unexpected title %q", cfg.Title)
		}
		if cfg.Suffix != DefaultSuffix || cfg.OutputPath != DefaultOutputPath || cfg.Concurrency != DefaultConcurrency {
			t.Errorf("expected defaults to be kept, got %+v", cfg)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, `invalid: yaml: content: [}`)

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, "title: x\n")

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestLoad tests building a Config from the environment.
// It cannot run in parallel because it sets environment variables.
func TestLoad(t *testing.T) {
	t.Run("applies the file named by AUTOREPORT_CONFIG", func(t *testing.T) {
		configPath := writeConfig(t, "title: From Env\nconcurrency: 2\n")
		t.Setenv(EnvConfigPath, configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Title != "From Env" || cfg.Concurrency != 2 {
			t.Errorf("unexpected config %+v", cfg)
		}
		if cfg.ConfigFilePath != configPath {
			t.Errorf("expected ConfigFilePath %q, got %q", configPath, cfg.ConfigFilePath)
		}
	})

	t.Run("fails when AUTOREPORT_CONFIG does not exist", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := Load()
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("rejects invalid values from the file", func(t *testing.T) {
		configPath := writeConfig(t, "concurrency: -3\n")
		t.Setenv(EnvConfigPath, configPath)

		_, err := Load()
		if !errors.Is(err, ErrInvalidConcurrency) {
			t.Fatalf("expected ErrInvalidConcurrency, got %v", err)
		}
		if !strings.Contains(err.Error(), configPath) {
			t.Errorf("expected error to name the file, got %v", err)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("expected XDG data dir to end with %s, got %q", AppName, XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("expected XDG config dir to end with %s, got %q", AppName, XDGConfigDir())
	}
}

// writeConfig writes content to a config file in a temporary directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}
