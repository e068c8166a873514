// Package gisevoconfig loads the process-level environment surface: where
// maps live on disk, where the OSM converter executable is, and the cache
// manager's tuning knobs.
package gisevoconfig

import (
	"github.com/spf13/viper"
)

// Config is the typed process-level configuration, populated from
// environment variables with defaults backfilled for anything unset.
type Config struct {
	MapsDir       string
	ConverterPath string
	Log           LogConfig
	Cache         CacheConfig
}

// LogConfig controls the default obslog sink.
type LogConfig struct {
	Level string
}

// CacheConfig mirrors internal/cache.Options, letting deployments tune
// retry and validation strictness without a code change.
type CacheConfig struct {
	MaxRetryAttempts         int
	CorruptionThresholdBytes int64
	DeepValidation           bool
}

// Load reads the gisevoconfig environment surface via viper.AutomaticEnv
// and backfills defaults for anything left unset.
func Load() (*Config, error) {
	viper.AutomaticEnv()

	cfg := &Config{
		MapsDir:       viper.GetString("GISEVO_MAPS_DIR"),
		ConverterPath: viper.GetString("GISEVO_OSM_CONVERTER"),
		Log: LogConfig{
			Level: viper.GetString("GISEVO_LOG_LEVEL"),
		},
		Cache: CacheConfig{
			MaxRetryAttempts:         viper.GetInt("GISEVO_CACHE_MAX_RETRY_ATTEMPTS"),
			CorruptionThresholdBytes: viper.GetInt64("GISEVO_CACHE_CORRUPTION_THRESHOLD_BYTES"),
			DeepValidation:           viper.GetBool("GISEVO_CACHE_DEEP_VALIDATION"),
		},
	}

	if cfg.MapsDir == "" {
		cfg.MapsDir = defaultMapsDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Cache.MaxRetryAttempts == 0 {
		cfg.Cache.MaxRetryAttempts = defaultCacheMaxRetryAttempts
	}
	if cfg.Cache.CorruptionThresholdBytes == 0 {
		cfg.Cache.CorruptionThresholdBytes = defaultCacheCorruptionThresholdBytes
	}

	return cfg, nil
}

const (
	defaultMapsDir                       = "./maps"
	defaultCacheMaxRetryAttempts         = 3
	defaultCacheCorruptionThresholdBytes = 1024
)
