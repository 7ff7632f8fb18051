// Package config loads datagen settings from a YAML file and DATAGEN_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DATAGEN_GENERATION_BATCH_SIZE.
const EnvPrefix = "DATAGEN"

// --- Configuration Structs ---

type GenerationConfig struct {
	BatchSize  int    `mapstructure:"batch_size" yaml:"batch_size"`
	MaxWorkers int    `mapstructure:"max_workers" yaml:"max_workers"`
	Seed       *int64 `mapstructure:"seed" yaml:"seed,omitempty"`
}

type ExportConfig struct {
	Format    string `mapstructure:"format" yaml:"format"`
	Output    string `mapstructure:"output" yaml:"output"`
	Dialect   string `mapstructure:"dialect" yaml:"dialect,omitempty"`
	DSN       string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Table     string `mapstructure:"table" yaml:"table,omitempty"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port" yaml:"port"`
	Prefork bool   `mapstructure:"prefork" yaml:"prefork"`
	MaxRows int    `mapstructure:"max_rows" yaml:"max_rows"`
}

type Config struct {
	Generation GenerationConfig `mapstructure:"generation" yaml:"generation"`
	Export     ExportConfig     `mapstructure:"export" yaml:"export"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	LogPath    string           `mapstructure:"log_path" yaml:"log_path"`
	ModelFiles []string         `mapstructure:"model_files" yaml:"model_files,omitempty"`
}

// --- Load Configuration ---

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generation.batch_size", 1000)
	v.SetDefault("generation.max_workers", min(runtime.NumCPU(), 8))
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.output", "synthetic_data")
	v.SetDefault("export.dialect", "sqlite")
	v.SetDefault("export.batch_size", 10000)
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.prefork", false)
	v.SetDefault("server.max_rows", 100000)
	v.SetDefault("log_path", "datagen.log")
	v.SetDefault("model_files", []string{})
}

// Load reads configPath, which may be empty, into a fresh viper instance.
func Load(configPath string) (*Config, error) {
	return LoadViper(viper.New(), configPath)
}

// LoadViper reads configuration through v, so callers can bind command-line
// flags on it first. Precedence: flags, environment, file, defaults.
func LoadViper(v *viper.Viper, configPath string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default are only seen by Unmarshal once bound.
	if err := v.BindEnv("generation.seed"); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// --- Validation Functions ---

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// validate is a helper function to reduce repetition.
func validate(condition bool, format string, a ...any) error {
	if !condition {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, a...)...)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (g *GenerationConfig) Validate() error {
	if err := validate(g.BatchSize > 0, "batch_size must be positive, got %d", g.BatchSize); err != nil {
		return err
	}
	return validate(g.MaxWorkers > 0, "max_workers must be positive, got %d", g.MaxWorkers)
}

func (e *ExportConfig) Validate() error {
	if err := validate(e.Format != "", "format is required"); err != nil {
		return err
	}
	if err := validate(e.BatchSize > 0, "batch_size must be positive, got %d", e.BatchSize); err != nil {
		return err
	}
	if strings.EqualFold(e.Format, "sql") && !strings.EqualFold(e.Dialect, "sqlite") {
		return validate(e.DSN != "", "dsn is required for %s exports", e.Dialect)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if err := validate(s.Port != "", "port is required"); err != nil {
		return err
	}
	return validate(s.MaxRows > 0, "max_rows must be positive, got %d", s.MaxRows)
}
