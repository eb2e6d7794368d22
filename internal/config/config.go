// Package config defines the runtime configuration of business-case and
// includes functions for loading it from file and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/validation"
)

// Configuration holds all configuration for business-case.
type Configuration struct {
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging,omitempty"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output,omitempty"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage,omitempty"`
	Finance     FinanceConfig     `mapstructure:"finance" yaml:"finance,omitempty"`
	Import      ImportConfig      `mapstructure:"import" yaml:"import,omitempty"`
	Sensitivity SensitivityConfig `mapstructure:"sensitivity" yaml:"sensitivity,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // table, csv, markdown, html, json, xlsx
}

// StorageConfig selects where the state store persists its documents.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver,omitempty"` // memory, file, sqlite
	Path   string `mapstructure:"path" yaml:"path,omitempty"`     // directory for file, database file for sqlite
}

// FinanceConfig tunes the metrics and the market alignment check.
type FinanceConfig struct {
	DiscountRate       float64 `mapstructure:"discountRate" yaml:"discountRate,omitempty"`
	AlignmentThreshold float64 `mapstructure:"alignmentThreshold" yaml:"alignmentThreshold,omitempty"`
}

// ImportConfig bounds imported documents.
type ImportConfig struct {
	MaxSize string `mapstructure:"maxSize" yaml:"maxSize,omitempty"` // e.g. "256K", "1M"
}

// SensitivityConfig bounds the parallel sensitivity runner.
type SensitivityConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency,omitempty"`
}

// SetDefaults registers every configuration key with its default value.
// Registering the keys also lets environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatTable)
	v.SetDefault("storage.driver", constants.StorageDriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("finance.discountRate", constants.DefaultAnnualDiscountRate)
	v.SetDefault("finance.alignmentThreshold", constants.DefaultAlignmentThreshold)
	v.SetDefault("import.maxSize", strconv.FormatInt(constants.DefaultMaxImportSizeBytes, 10))
	v.SetDefault("sensitivity.concurrency", constants.DefaultSensitivityConcurrency)
}

// LoadConfiguration loads the YAML configuration at configPath, overlaid with
// BUSINESS_CASE_* environment variables. An empty path selects
// constants.DefaultConfigFile. A missing file is not an error; defaults are
// used instead.
func LoadConfiguration(configPath string) (*Configuration, error) {
	return load(viper.New(), configPath)
}

func load(v *viper.Viper, configPath string) (*Configuration, error) {
	if configPath == "" {
		configPath = constants.DefaultConfigFile
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(err, "error reading config file %s", configPath)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, eris.Wrap(err, "unable to decode into struct")
	}
	if configuration.Storage.Path == "" {
		configuration.Storage.Path = DefaultStoragePath(configuration.Storage.Driver)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// DefaultStoragePath returns where driver keeps its state when storage.path is
// unset: a directory or database under os.UserConfigDir()/business-case, or
// under ./.business-case when no user configuration directory is known.
func DefaultStoragePath(driver string) string {
	base := "." + constants.AppDirName
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		base = filepath.Join(dir, constants.AppDirName)
	}
	switch driver {
	case constants.StorageDriverFile:
		return filepath.Join(base, constants.DefaultStateDir)
	case constants.StorageDriverSQLite:
		return filepath.Join(base, constants.DefaultDatabaseFile)
	default:
		return ""
	}
}

// Validate checks the enumerated and bounded settings.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return eris.Wrap(err, "invalid output.format")
	}
	switch c.Storage.Driver {
	case "", constants.StorageDriverMemory:
	case constants.StorageDriverFile, constants.StorageDriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return eris.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
		}
	default:
		return eris.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Finance.DiscountRate < 0 {
		return eris.Errorf("finance.discountRate must not be negative, got %v", c.Finance.DiscountRate)
	}
	if c.Finance.AlignmentThreshold < 0 {
		return eris.Errorf("finance.alignmentThreshold must not be negative, got %v", c.Finance.AlignmentThreshold)
	}
	if c.Sensitivity.Concurrency < 0 {
		return eris.Errorf("sensitivity.concurrency must not be negative, got %d", c.Sensitivity.Concurrency)
	}
	if _, err := ParseSize(c.Import.MaxSize); err != nil {
		return eris.Wrap(err, "invalid import.maxSize")
	}
	return nil
}

// MaxImportSizeBytes returns import.maxSize in bytes. Empty, zero or
// unparsable values select constants.DefaultMaxImportSizeBytes.
func (c *Configuration) MaxImportSizeBytes() int64 {
	n, err := ParseSize(c.Import.MaxSize)
	if err != nil || n <= 0 {
		return constants.DefaultMaxImportSizeBytes
	}
	return n
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxImportSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid size value %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result/multiplier != n {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
