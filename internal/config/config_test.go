package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/iwvelando/business-case/pkg/constants"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "business-case.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigurationDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("expected info/json logging defaults, got %+v", cfg.Logging)
	}
	if cfg.Output.Format != constants.OutputFormatTable {
		t.Errorf("expected default output format %s, got %s", constants.OutputFormatTable, cfg.Output.Format)
	}
	if cfg.Storage.Driver != constants.StorageDriverFile {
		t.Errorf("expected file storage, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != DefaultStoragePath(constants.StorageDriverFile) {
		t.Errorf("expected default state directory, got %q", cfg.Storage.Path)
	}
	if cfg.Finance.DiscountRate != constants.DefaultAnnualDiscountRate {
		t.Errorf("expected default discount rate, got %v", cfg.Finance.DiscountRate)
	}
	if cfg.Finance.AlignmentThreshold != constants.DefaultAlignmentThreshold {
		t.Errorf("expected default alignment threshold, got %v", cfg.Finance.AlignmentThreshold)
	}
	if cfg.MaxImportSizeBytes() != constants.DefaultMaxImportSizeBytes {
		t.Errorf("expected default import size, got %d", cfg.MaxImportSizeBytes())
	}
	if cfg.Sensitivity.Concurrency != constants.DefaultSensitivityConcurrency {
		t.Errorf("expected default concurrency, got %d", cfg.Sensitivity.Concurrency)
	}
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := writeConfig(t, `logging:
  level: debug
  format: console
  outputFile: /tmp/business-case.log
output:
  format: markdown
storage:
  driver: sqlite
  path: /tmp/business-case.db
finance:
  discountRate: 0.08
  alignmentThreshold: 10
import:
  maxSize: 1M
sensitivity:
  concurrency: 2
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Logging.OutputFile != "/tmp/business-case.log" {
		t.Errorf("expected logging outputFile override, got %s", cfg.Logging.OutputFile)
	}
	if cfg.Output.Format != constants.OutputFormatMarkdown {
		t.Errorf("expected markdown output, got %s", cfg.Output.Format)
	}
	if cfg.Storage.Driver != constants.StorageDriverSQLite || cfg.Storage.Path != "/tmp/business-case.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Finance.DiscountRate != 0.08 || cfg.Finance.AlignmentThreshold != 10 {
		t.Errorf("finance = %+v", cfg.Finance)
	}
	if cfg.MaxImportSizeBytes() != 1024*1024 {
		t.Errorf("expected 1M import size, got %d", cfg.MaxImportSizeBytes())
	}
	if cfg.Sensitivity.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Sensitivity.Concurrency)
	}
}

func TestLoadConfigurationEnvironment(t *testing.T) {
	path := writeConfig(t, "output:\n  format: csv\n")
	t.Setenv("BUSINESS_CASE_OUTPUT_FORMAT", "json")
	t.Setenv("BUSINESS_CASE_LOGGING_LEVEL", "warn")
	t.Setenv("BUSINESS_CASE_SENSITIVITY_CONCURRENCY", "8")

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Output.Format != constants.OutputFormatJSON {
		t.Errorf("environment should override the file, got %s", cfg.Output.Format)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn level from environment, got %s", cfg.Logging.Level)
	}
	if cfg.Sensitivity.Concurrency != 8 {
		t.Errorf("expected concurrency 8 from environment, got %d", cfg.Sensitivity.Concurrency)
	}
}

func TestLoadConfigurationInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		contains string
	}{
		{
			name:     "Malformed YAML",
			contents: "logging: [unclosed",
			contains: "error reading config file",
		},
		{
			name:     "Unknown output format",
			contents: "output:\n  format: pdf\n",
			contains: "output.format",
		},
		{
			name:     "Unknown storage driver",
			contents: "storage:\n  driver: postgres\n",
			contains: "storage.driver",
		},
		{
			name:     "File storage with blank path",
			contents: "storage:\n  driver: file\n  path: \"  \"\n",
			contains: "storage.path",
		},
		{
			name:     "Negative discount rate",
			contents: "finance:\n  discountRate: -0.1\n",
			contains: "discountRate",
		},
		{
			name:     "Invalid import size",
			contents: "import:\n  maxSize: lots\n",
			contains: "import.maxSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.contents))
			if err == nil {
				t.Fatalf("LoadConfiguration() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("LoadConfiguration() error = %v, expected it to mention %q", err, tt.contains)
			}
		})
	}
}

func TestDefaultStoragePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	configDir, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("os.UserConfigDir() error = %v", err)
	}

	tests := []struct {
		driver   string
		expected string
	}{
		{constants.StorageDriverFile, filepath.Join(configDir, "business-case", "state")},
		{constants.StorageDriverSQLite, filepath.Join(configDir, "business-case", "business-case.db")},
		{constants.StorageDriverMemory, ""},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if result := DefaultStoragePath(tt.driver); result != tt.expected {
				t.Errorf("DefaultStoragePath(%q) = %q, expected %q", tt.driver, result, tt.expected)
			}
		})
	}

	cfg, err := LoadConfiguration(writeConfig(t, "storage:\n  driver: sqlite\n"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Storage.Path != filepath.Join(configDir, "business-case", "business-case.db") {
		t.Errorf("expected default sqlite path, got %q", cfg.Storage.Path)
	}

	cfg, err = LoadConfiguration(writeConfig(t, "storage:\n  driver: memory\n"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Storage.Path != "" {
		t.Errorf("expected no path for memory storage, got %q", cfg.Storage.Path)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxImportSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"1TB", "abc", "K", "99999999999999999999G"} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) expected error", input)
		}
	}
}

func TestMaxImportSizeBytesFallback(t *testing.T) {
	cfg := Configuration{Import: ImportConfig{MaxSize: "0"}}
	if got := cfg.MaxImportSizeBytes(); got != constants.DefaultMaxImportSizeBytes {
		t.Errorf("MaxImportSizeBytes() = %d, expected default", got)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantError bool
	}{
		{name: "Defaults", cfg: LoggingConfig{}, wantLevel: zapcore.InfoLevel},
		{name: "Console debug", cfg: LoggingConfig{Level: "debug", Format: "console"}, wantLevel: zapcore.DebugLevel},
		{name: "Override wins", cfg: LoggingConfig{Level: "debug"}, override: "error", wantLevel: zapcore.ErrorLevel},
		{name: "Warning alias", cfg: LoggingConfig{Level: "warning"}, wantLevel: zapcore.WarnLevel},
		{name: "Invalid level", cfg: LoggingConfig{Level: "verbose"}, wantError: true},
		{name: "Invalid format", cfg: LoggingConfig{Format: "xml"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg, tt.override)
			if tt.wantError {
				if err == nil {
					t.Errorf("NewLogger() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("NewLogger() level %s not enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("NewLogger() enabled a level below %s", tt.wantLevel)
			}
		})
	}
}

func TestNewLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "business-case.log")
	logger, err := NewLogger(LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing entry, got %q", data)
	}
}
