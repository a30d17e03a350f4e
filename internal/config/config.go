package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Aggregator AggregatorConfig
	Hub        HubConfig
	Sources    SourcesConfig
	Geocode    GeocodeConfig
	DB         DatabaseConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type AggregatorConfig struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	SnapshotTTL  time.Duration
}

type HubConfig struct {
	PushInterval time.Duration
}

type SourcesConfig struct {
	WeatherEnabled bool
	WeatherURL     string
	SeismicEnabled bool
	SeismicURL     string
	SocialEnabled  bool
	NewsEnabled    bool
	MockSeed       int64
}

type GeocodeConfig struct {
	MapboxToken string
	Timeout     time.Duration
	CacheSize   int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Aggregator: AggregatorConfig{
			Interval:     getEnvDuration("AGGREGATION_INTERVAL", 30*time.Second),
			FetchTimeout: getEnvDuration("SOURCE_FETCH_TIMEOUT", 10*time.Second),
			SnapshotTTL:  getEnvDuration("SNAPSHOT_CACHE_TTL", time.Hour),
		},
		Hub: HubConfig{
			PushInterval: getEnvDuration("HUB_PUSH_INTERVAL", 10*time.Second),
		},
		Sources: SourcesConfig{
			WeatherEnabled: getEnvBool("WEATHER_ENABLED", true),
			WeatherURL:     getEnv("WEATHER_URL", "https://api.weather.gov/alerts/active"),
			SeismicEnabled: getEnvBool("SEISMIC_ENABLED", true),
			SeismicURL:     getEnv("SEISMIC_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_hour.geojson"),
			SocialEnabled:  getEnvBool("SOCIAL_ENABLED", true),
			NewsEnabled:    getEnvBool("NEWS_ENABLED", true),
			MockSeed:       int64(getEnvInt("MOCK_SEED", 0)),
		},
		Geocode: GeocodeConfig{
			MapboxToken: getEnv("MAPBOX_TOKEN", ""),
			Timeout:     getEnvDuration("MAPBOX_TIMEOUT", 5*time.Second),
			CacheSize:   getEnvInt("MAPBOX_CACHE_SIZE", 1000),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/disaster-response.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Aggregator.Interval < time.Second {
		return fmt.Errorf("aggregation interval must be at least 1 second")
	}
	if c.Hub.PushInterval < time.Second {
		return fmt.Errorf("hub push interval must be at least 1 second")
	}
	if c.Aggregator.FetchTimeout <= 0 {
		return fmt.Errorf("source fetch timeout must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
