// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/directory/postgres"
	"github.com/wneessen/installer-finder/internal/directory/sqlite"
	"github.com/wneessen/installer-finder/internal/geocode"
	geocodeearth "github.com/wneessen/installer-finder/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/installer-finder/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/installer-finder/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/installer-finder/internal/geocode/provider/positionstack"
	"github.com/wneessen/installer-finder/internal/geocode/rediscache"
	"github.com/wneessen/installer-finder/internal/http"
)

// selectGeocodeProvider returns the configured provider, rate limited and, if a cache is given,
// wrapped in a cache. Providers that require an API key are created without one if none is
// configured; their lookups then fail and the matching engine falls back to city matching.
func (s *Service) selectGeocodeProvider(cache geocode.Cache) (geocode.Geocoder, error) {
	conf := s.config.Geocoder
	client := http.New(s.logger)
	lang := s.config.Language()

	var provider geocode.Geocoder
	switch strings.ToLower(conf.Provider) {
	case "positionstack":
		provider = positionstack.New(client, conf.APIKey, conf.Timeout)
	case "nominatim":
		provider = nominatim.New(client, lang, conf.Timeout)
	case "opencage":
		provider = opencage.New(client, lang, conf.APIKey, conf.Timeout)
	case "geocode-earth":
		provider = geocodeearth.New(client, lang, conf.APIKey, conf.Timeout)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.Provider)
	}
	if conf.APIKey == "" && !strings.EqualFold(conf.Provider, "nominatim") {
		s.logger.Warn("geocoder API key is not configured, installer search will fall back to city matching",
			slog.String("provider", provider.Name()))
	}

	var geocoder geocode.Geocoder = geocode.NewRateLimitedGeocoder(provider, conf.RateLimit, conf.Burst, conf.Timeout)
	if cache != nil {
		geocoder = geocode.NewCachedGeocoder(geocoder, cache, s.logger, s.config.Cache.HitTTL, s.config.Cache.MissTTL)
	}
	return geocoder, nil
}

// selectCache returns the configured geocode cache or nil if caching is disabled.
func (s *Service) selectCache(ctx context.Context) (geocode.Cache, error) {
	conf := s.config.Cache
	switch strings.ToLower(conf.Backend) {
	case "memory":
		s.memCache = geocode.NewMemoryCache()
		return s.memCache, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		cache := rediscache.New(client, conf.Redis.Prefix)
		if err := cache.Ping(ctx); err != nil {
			_ = cache.Close()
			return nil, fmt.Errorf("failed to connect to redis geocode cache: %w", err)
		}
		s.closers = append(s.closers, cache.Close)
		return cache, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", conf.Backend)
	}
}

func (s *Service) selectDirectory(ctx context.Context) (directory.Store, error) {
	conf := s.config.Directory
	switch strings.ToLower(conf.Driver) {
	case "sqlite":
		dir, err := sqlite.Open(conf.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite installer directory: %w", err)
		}
		s.logger.Debug("opened sqlite installer directory", slog.String("path", dir.Path()))
		return dir, nil
	case "postgres":
		dir, err := postgres.Open(ctx, conf.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres installer directory: %w", err)
		}
		return dir, nil
	default:
		return nil, fmt.Errorf("unsupported directory driver: %s", conf.Driver)
	}
}
