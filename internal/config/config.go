package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goodtune/mstat/internal/lmstat"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Storage StorageConfig `mapstructure:"storage"`
}

// InputConfig selects where the lmstat report is read from
type InputConfig struct {
	Path string `mapstructure:"path"` // empty reads standard input
}

// ReportConfig controls how the summary is rendered
type ReportConfig struct {
	Sort  string `mapstructure:"sort"` // "alpha" or "time"
	Color bool   `mapstructure:"color"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig defines Prometheus textfile output
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// StorageConfig defines where per-run snapshots are recorded
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "none" or "redis"
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	Timeout      string `mapstructure:"timeout"`       // overall budget for recording one run
	HistoryLimit int    `mapstructure:"history_limit"` // snapshots kept per toolbox
}

// Storage types
const (
	StorageNone  = "none"
	StorageRedis = "redis"
)

// defaults lists every known key with its default value.
var defaults = map[string]interface{}{
	"input.path": "",

	"report.sort":  "alpha",
	"report.color": false,

	"logging.level":  "warn",
	"logging.format": "text",

	"metrics.textfile": "",

	"storage.type":                "none",
	"storage.redis.host":          "localhost",
	"storage.redis.port":          6379,
	"storage.redis.password":      "",
	"storage.redis.db":            0,
	"storage.redis.dial_timeout":  "5s",
	"storage.redis.read_timeout":  "3s",
	"storage.redis.write_timeout": "3s",
	"storage.redis.timeout":       "10s",
	"storage.redis.history_limit": 100,
}

// Load loads configuration from file and environment variables. An empty
// configPath searches the user and system config directories; a missing file
// is not an error in either case.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	SetDefaults(v)

	// Configure viper
	v.SetEnvPrefix("MSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mstat")
		v.AddConfigPath("$HOME/.config/mstat")
		v.AddConfigPath("/etc/mstat")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// KnownKeys returns every configuration key in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// UnknownKeys reads the file at configPath and returns the keys it sets that
// the application does not recognize.
func UnknownKeys(configPath string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	unknown := []string{}
	for _, key := range v.AllKeys() {
		if _, ok := defaults[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	return unknown, nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if _, err := lmstat.ParseSortMode(cfg.Report.Sort); err != nil {
		return fmt.Errorf("invalid report sort: %w", err)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %q (must be text or json)", cfg.Logging.Format)
	}

	switch cfg.Storage.Type {
	case StorageNone:
	case StorageRedis:
		if err := validateRedis(cfg.Storage.Redis); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid storage type: %q (must be none or redis)", cfg.Storage.Type)
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("storage.redis.host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", cfg.Port)
	}
	for name, value := range map[string]string{
		"dial_timeout":  cfg.DialTimeout,
		"read_timeout":  cfg.ReadTimeout,
		"write_timeout": cfg.WriteTimeout,
		"timeout":       cfg.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid storage.redis.%s: %w", name, err)
		}
	}
	if cfg.HistoryLimit <= 0 {
		return fmt.Errorf("storage.redis.history_limit must be positive, got %d", cfg.HistoryLimit)
	}
	return nil
}
