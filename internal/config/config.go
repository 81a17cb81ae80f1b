package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Database DatabaseConfig
	Rates    RatesConfig
	Log      LogConfig
}

// DatabaseConfig defines the database connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string `mapstructure:"dbname"`
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.DBName)
}

// RatesConfig defines live-rate refresh settings.
type RatesConfig struct {
	Source          string        `mapstructure:"source"`
	SourceURL       string        `mapstructure:"source_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	MaxConcurrent   int           `mapstructure:"max_concurrent"`
	StreamCodes     []string      `mapstructure:"stream_codes"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("rates.source", "frankfurter")
	viper.SetDefault("rates.refresh_interval", time.Hour)
	viper.SetDefault("rates.fetch_timeout", 10*time.Second)
	viper.SetDefault("rates.max_concurrent", 4)
	viper.SetDefault("log.level", "info")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}
	err = config.Validate()
	return
}

// Validate checks the loaded configuration for values the engine cannot run
// with.
func (c *Config) Validate() error {
	if c.Rates.Source == "" {
		return fmt.Errorf("rates.source is required")
	}
	if c.Rates.FetchTimeout <= 0 {
		return fmt.Errorf("rates.fetch_timeout must be positive")
	}
	if c.Rates.MaxConcurrent < 1 {
		return fmt.Errorf("rates.max_concurrent must be at least 1")
	}
	if c.Rates.RefreshInterval < time.Second {
		return fmt.Errorf("rates.refresh_interval must be at least 1s")
	}
	return nil
}
