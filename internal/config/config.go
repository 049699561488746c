// Package config handles configuration loading for LiquidityLens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	FRED    FREDConfig    `mapstructure:"fred"    yaml:"fred"`
	Range   RangeConfig   `mapstructure:"range"   yaml:"range"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// FREDConfig holds FRED API access settings.
type FREDConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// RangeConfig controls the observation window fetched per run.
type RangeConfig struct {
	LookbackDays int `mapstructure:"lookback_days" yaml:"lookback_days"`
}

// OutputConfig holds output artifact paths.
type OutputConfig struct {
	Dir       string `mapstructure:"dir"        yaml:"dir"`
	CSVFile   string `mapstructure:"csv_file"   yaml:"csv_file"`
	ChartFile string `mapstructure:"chart_file" yaml:"chart_file"`
}

// APIConfig holds dashboard server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// CSVPath returns the full path of the CSV artifact.
func (c *Config) CSVPath() string {
	return filepath.Join(c.Output.Dir, c.Output.CSVFile)
}

// ChartPath returns the full path of the yield curve chart artifact.
func (c *Config) ChartPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ChartFile)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.liquiditylens/config.yaml (home directory)
//  3. /etc/liquiditylens/config.yaml (system)
//
// Environment variables override config file values.
// Format: LIQUIDITYLENS_<SECTION>_<KEY>, e.g., LIQUIDITYLENS_FRED_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".liquiditylens"))
	v.AddConfigPath("/etc/liquiditylens")

	v.SetEnvPrefix("LIQUIDITYLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("LIQUIDITYLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// FRED defaults
	v.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")

	// Fetch window default: roughly one quarter of daily data.
	v.SetDefault("range.lookback_days", 90)

	// Output defaults
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.csv_file", "liquidity_data.csv")
	v.SetDefault("output.chart_file", "yield_curve.svg")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables. The bare FRED_API_KEY is honored too since that is the
// name the FRED docs use.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("LIQUIDITYLENS_FRED_API_KEY"); key != "" {
		cfg.FRED.APIKey = key
	}
	if key := os.Getenv("FRED_API_KEY"); cfg.FRED.APIKey == "" && key != "" {
		cfg.FRED.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
