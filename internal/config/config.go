package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	Port             string        `mapstructure:"PORT"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	AdminKey         string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed      string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	QueryTimeout     time.Duration `mapstructure:"QUERY_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB  int64         `mapstructure:"MAX_UPLOAD_MB"`
	Timezone         string        `mapstructure:"TIMEZONE"`
	BatchConcurrency int           `mapstructure:"BATCH_CONCURRENCY"`
	BatchMaxSites    int           `mapstructure:"BATCH_MAX_SITES"`
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads an env-style file if present; the environment always wins.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("QUERY_TIMEOUT", "5s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("TIMEZONE", "Asia/Jakarta")
	v.SetDefault("BATCH_CONCURRENCY", 8)
	v.SetDefault("BATCH_MAX_SITES", 500)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	return cfg, nil
}

// Location resolves TIMEZONE for formatting upload times.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
