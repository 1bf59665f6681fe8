// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestNew(t *testing.T) {
	const (
		expectLogLevel        = slog.LevelInfo
		expectProvider        = "positionstack"
		expectGeocoderTimeout = time.Second * 10
		expectCacheBackend    = "memory"
		expectHitTTL          = time.Hour * 24
		expectMissTTL         = time.Hour
		expectMaxDistance     = 50.0
		expectConcurrency     = 4
		expectDriver          = "sqlite"
		expectListen          = "127.0.0.1:8080"
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != expectLogLevel {
			t.Errorf("expected log level to be: %s, got %s", expectLogLevel, conf.LogLevel)
		}
		if conf.Geocoder.Provider != expectProvider {
			t.Errorf("expected geocoder provider to be: %s, got %s", expectProvider, conf.Geocoder.Provider)
		}
		if conf.Geocoder.Timeout != expectGeocoderTimeout {
			t.Errorf("expected geocoder timeout to be: %s, got %s", expectGeocoderTimeout, conf.Geocoder.Timeout)
		}
		if conf.Geocoder.Burst != 1 {
			t.Errorf("expected geocoder burst to be: 1, got %d", conf.Geocoder.Burst)
		}
		if conf.Cache.Backend != expectCacheBackend {
			t.Errorf("expected cache backend to be: %s, got %s", expectCacheBackend, conf.Cache.Backend)
		}
		if conf.Cache.HitTTL != expectHitTTL {
			t.Errorf("expected cache hit TTL to be: %s, got %s", expectHitTTL, conf.Cache.HitTTL)
		}
		if conf.Cache.MissTTL != expectMissTTL {
			t.Errorf("expected cache miss TTL to be: %s, got %s", expectMissTTL, conf.Cache.MissTTL)
		}
		if conf.Matching.MaxDistanceKm != expectMaxDistance {
			t.Errorf("expected max distance to be: %f, got %f", expectMaxDistance, conf.Matching.MaxDistanceKm)
		}
		if conf.Matching.Concurrency != expectConcurrency {
			t.Errorf("expected concurrency to be: %d, got %d", expectConcurrency, conf.Matching.Concurrency)
		}
		if conf.Directory.Driver != expectDriver {
			t.Errorf("expected directory driver to be: %s, got %s", expectDriver, conf.Directory.Driver)
		}
		if !strings.HasSuffix(conf.Directory.SQLitePath, "installers.db") {
			t.Errorf("expected default sqlite path to be set, got %q", conf.Directory.SQLitePath)
		}
		if conf.Server.Listen != expectListen {
			t.Errorf("expected listen address to be: %s, got %s", expectListen, conf.Server.Listen)
		}
		if conf.Locale == "" {
			t.Error("expected locale to be detected")
		}
	})
	t.Run("values are read from env", func(t *testing.T) {
		t.Setenv("INSTALLERFINDER_GEOCODER_PROVIDER", "opencage")
		t.Setenv("INSTALLERFINDER_GEOCODER_APIKEY", "secret")
		t.Setenv("INSTALLERFINDER_MATCHING_MAX_DISTANCE_KM", "12.5")
		t.Setenv("INSTALLERFINDER_CACHE_BACKEND", "redis")
		t.Setenv("INSTALLERFINDER_CACHE_REDIS_ADDR", "redis:6379")
		t.Setenv("INSTALLERFINDER_LOCALE", "de-DE")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Geocoder.Provider != "opencage" || conf.Geocoder.APIKey != "secret" {
			t.Errorf("expected geocoder settings from env, got %s/%s", conf.Geocoder.Provider, conf.Geocoder.APIKey)
		}
		if conf.Matching.MaxDistanceKm != 12.5 {
			t.Errorf("expected max distance to be 12.5, got %f", conf.Matching.MaxDistanceKm)
		}
		if conf.Cache.Redis.Addr != "redis:6379" {
			t.Errorf("expected redis address from env, got %s", conf.Cache.Redis.Addr)
		}
		base, _ := conf.Language().Base()
		if base.String() != "de" {
			t.Errorf("expected language to be de, got %s", conf.Language())
		}
	})
	t.Run("nominatim gets a default rate limit", func(t *testing.T) {
		t.Setenv("INSTALLERFINDER_GEOCODER_PROVIDER", "nominatim")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Geocoder.RateLimit != 1 {
			t.Errorf("expected nominatim rate limit to be 1, got %f", conf.Geocoder.RateLimit)
		}
	})
	t.Run("new config with invalid values from env", func(t *testing.T) {
		t.Setenv("INSTALLERFINDER_LOGLEVEL", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validation fails", func(t *testing.T) {
		tests := []struct {
			name  string
			env   string
			value string
		}{
			{"unknown provider", "INSTALLERFINDER_GEOCODER_PROVIDER", "google"},
			{"negative timeout", "INSTALLERFINDER_GEOCODER_TIMEOUT", "-1s"},
			{"negative rate limit", "INSTALLERFINDER_GEOCODER_RATE_LIMIT", "-1"},
			{"unknown cache backend", "INSTALLERFINDER_CACHE_BACKEND", "memcached"},
			{"negative hit TTL", "INSTALLERFINDER_CACHE_HIT_TTL", "-1h"},
			{"negative purge interval", "INSTALLERFINDER_CACHE_PURGE_INTERVAL", "-1m"},
			{"negative max distance", "INSTALLERFINDER_MATCHING_MAX_DISTANCE_KM", "-5"},
			{"negative concurrency", "INSTALLERFINDER_MATCHING_CONCURRENCY", "-1"},
			{"unknown directory driver", "INSTALLERFINDER_DIRECTORY_DRIVER", "mysql"},
			{"postgres without DSN", "INSTALLERFINDER_DIRECTORY_DRIVER", "postgres"},
			{"invalid locale", "INSTALLERFINDER_LOCALE", "not a locale!"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Setenv(tc.env, tc.value)
				if _, err := New(); err == nil {
					t.Errorf("expected config with %s=%s to fail, but didn't", tc.env, tc.value)
				}
			})
		}
	})
}

func TestConfig_Language(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"de", language.German},
		{"", language.English},
		{"invalid locale", language.English},
	}
	for _, tc := range tests {
		t.Run(tc.locale, func(t *testing.T) {
			conf := &Config{Locale: tc.locale}
			if got := conf.Language(); got != tc.want {
				t.Errorf("expected language to be %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNewFromFile(t *testing.T) {
	t.Run("reading config from valid file succeeds", func(t *testing.T) {
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != slog.LevelInfo {
			t.Errorf("expected log level to be: %s, got %s", slog.LevelInfo, conf.LogLevel)
		}
		if conf.Locale != "en" {
			t.Errorf("expected locale to be: en, got %s", conf.Locale)
		}
		if conf.Cache.Redis.Prefix != "installer-finder:geocode:" {
			t.Errorf("expected redis prefix from file, got %q", conf.Cache.Redis.Prefix)
		}
		if conf.Directory.SQLitePath != "/var/lib/installer-finder/installers.db" {
			t.Errorf("expected sqlite path from file, got %q", conf.Directory.SQLitePath)
		}
		if conf.Server.ShutdownTimeout != time.Second*10 {
			t.Errorf("expected shutdown timeout to be 10s, got %s", conf.Server.ShutdownTimeout)
		}
	})
	t.Run("env overrides file values", func(t *testing.T) {
		t.Setenv("INSTALLERFINDER_SERVER_LISTEN", ":9090")
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Server.Listen != ":9090" {
			t.Errorf("expected listen address from env, got %s", conf.Server.Listen)
		}
	})
	t.Run("reading config from non-existent file fails", func(t *testing.T) {
		_, err := NewFromFile("../../etc", "non-existent.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("reading invalid config file fails", func(t *testing.T) {
		_, err := NewFromFile("../../testdata", "invalid.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}
