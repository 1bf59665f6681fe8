// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the configured geocoder, cache, installer directory and matching engine
// together and runs the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wneessen/installer-finder/internal/config"
	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/geocode"
	"github.com/wneessen/installer-finder/internal/logger"
	"github.com/wneessen/installer-finder/internal/matching"
	"github.com/wneessen/installer-finder/internal/server"
)

const cachePurgeJob = "geocode_cache_purge_job"

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler gocron.Scheduler

	geocoder  geocode.Geocoder
	memCache  *geocode.MemoryCache
	closers   []func() error
	directory directory.Store
	engine    *matching.Engine
}

// New builds the service from the configuration. The returned service owns the directory and
// cache connections and must be closed with Close.
func New(ctx context.Context, conf *config.Config, log *logger.Logger) (*Service, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		scheduler: scheduler,
	}

	cache, err := service.selectCache(ctx)
	if err != nil {
		_ = service.Close()
		return nil, err
	}
	service.geocoder, err = service.selectGeocodeProvider(cache)
	if err != nil {
		_ = service.Close()
		return nil, err
	}
	service.directory, err = service.selectDirectory(ctx)
	if err != nil {
		_ = service.Close()
		return nil, err
	}
	service.closers = append(service.closers, service.directory.Close)

	service.engine, err = matching.New(service.geocoder, service.directory, log,
		matching.WithMaxDistance(conf.Matching.MaxDistanceKm),
		matching.WithConcurrency(conf.Matching.Concurrency),
	)
	if err != nil {
		_ = service.Close()
		return nil, fmt.Errorf("failed to create matching engine: %w", err)
	}

	return service, nil
}

// Engine returns the matching engine of the service.
func (s *Service) Engine() *matching.Engine {
	return s.engine
}

// Directory returns the installer directory of the service.
func (s *Service) Directory() directory.Store {
	return s.directory
}

// Run starts the background jobs and serves the HTTP API until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.memCache != nil {
		if err := s.createScheduledJob(ctx, s.config.Cache.PurgeInterval, s.purgeCache, cachePurgeJob); err != nil {
			return err
		}
	}
	s.scheduler.Start()

	srv := server.New(s.engine, s.logger, server.Options{
		Listen:          s.config.Server.Listen,
		ReadTimeout:     s.config.Server.ReadTimeout,
		WriteTimeout:    s.config.Server.WriteTimeout,
		ShutdownTimeout: s.config.Server.ShutdownTimeout,
	})
	serveErr := srv.Serve(ctx)

	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("failed to shut down scheduler", logger.Err(err))
	}
	return serveErr
}

// Close releases the directory and cache connections.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// purgeCache removes expired entries from the in-memory geocode cache.
func (s *Service) purgeCache(context.Context) {
	if s.memCache == nil {
		return
	}
	removed := s.memCache.Purge()
	s.logger.Debug("purged expired geocode cache entries", slog.Int("removed", removed),
		slog.Int("remaining", s.memCache.Len()))
}
