// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"
)

const configEnv = "INSTALLERFINDER"

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Language used for geocoder results. Detected from the environment if empty.
	Locale string `fig:"locale"`

	Geocoder struct {
		// Allowed values: positionstack, nominatim, opencage, geocode-earth
		Provider string        `fig:"provider" default:"positionstack"`
		APIKey   string        `fig:"apikey"`
		Timeout  time.Duration `fig:"timeout" default:"10s"`
		// Requests per second, 0 disables rate limiting
		RateLimit float64 `fig:"rate_limit"`
		Burst     int     `fig:"burst" default:"1"`
	} `fig:"geocoder"`

	Cache struct {
		// Allowed values: memory, redis, none
		Backend       string        `fig:"backend" default:"memory"`
		HitTTL        time.Duration `fig:"hit_ttl" default:"24h"`
		MissTTL       time.Duration `fig:"miss_ttl" default:"1h"`
		PurgeInterval time.Duration `fig:"purge_interval" default:"10m"`
		Redis         struct {
			Addr     string `fig:"addr" default:"localhost:6379"`
			Password string `fig:"password"`
			DB       int    `fig:"db"`
			Prefix   string `fig:"prefix"`
		} `fig:"redis"`
	} `fig:"cache"`

	Matching struct {
		MaxDistanceKm float64 `fig:"max_distance_km" default:"50"`
		Concurrency   int     `fig:"concurrency" default:"4"`
	} `fig:"matching"`

	Directory struct {
		// Allowed values: sqlite, postgres
		Driver      string `fig:"driver" default:"sqlite"`
		SQLitePath  string `fig:"sqlite_path"`
		PostgresDSN string `fig:"postgres_dsn"`
	} `fig:"directory"`

	Server struct {
		Listen          string        `fig:"listen" default:"127.0.0.1:8080"`
		ReadTimeout     time.Duration `fig:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `fig:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `fig:"shutdown_timeout" default:"10s"`
	} `fig:"server"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	switch c.Geocoder.Provider {
	case "positionstack", "nominatim", "opencage", "geocode-earth":
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.Geocoder.Provider)
	}
	if c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("invalid geocoder timeout: %s", c.Geocoder.Timeout)
	}
	if c.Geocoder.RateLimit < 0 {
		return fmt.Errorf("invalid geocoder rate limit: %f", c.Geocoder.RateLimit)
	}
	if c.Geocoder.Burst < 1 {
		c.Geocoder.Burst = 1
	}
	if c.Geocoder.Provider == "nominatim" && c.Geocoder.RateLimit == 0 {
		// Nominatim usage policy: at most one request per second
		c.Geocoder.RateLimit = 1
	}

	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.HitTTL < 0 || c.Cache.MissTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	if c.Cache.Backend == "memory" && c.Cache.PurgeInterval <= 0 {
		return fmt.Errorf("invalid cache purge interval: %s", c.Cache.PurgeInterval)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("redis cache backend requires an address")
	}

	if c.Matching.MaxDistanceKm <= 0 {
		return fmt.Errorf("invalid max distance: %f", c.Matching.MaxDistanceKm)
	}
	if c.Matching.Concurrency < 1 {
		return fmt.Errorf("invalid matching concurrency: %d", c.Matching.Concurrency)
	}

	switch c.Directory.Driver {
	case "sqlite":
		if c.Directory.SQLitePath == "" {
			home, _ := os.UserHomeDir()
			c.Directory.SQLitePath = filepath.Join(home, ".local", "share", "installer-finder", "installers.db")
		}
	case "postgres":
		if c.Directory.PostgresDSN == "" {
			return errors.New("postgres directory requires a DSN")
		}
	default:
		return fmt.Errorf("invalid directory driver: %s", c.Directory.Driver)
	}

	if c.Server.Listen == "" {
		return errors.New("server listen address must not be empty")
	}
	if c.Locale == "" {
		c.Locale = detectLocale().String()
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}

	return nil
}

// Language returns the configured locale as language tag. Invalid or empty locales resolve to
// English.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil || c.Locale == "" {
		return language.English
	}
	return tag
}

func detectLocale() language.Tag {
	tag, err := locale.Detect()
	if err != nil {
		return language.English
	}
	return tag
}
