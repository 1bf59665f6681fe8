// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package matching finds the installers closest to a requester's address.
//
// The requester address is geocoded first. If that succeeds, every installer address is
// geocoded as well and installers within the maximum distance are returned ordered by distance.
// Installers whose address cannot be resolved are skipped. If the requester address cannot be
// resolved, the engine falls back to matching installers by their city name instead.
package matching

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/wneessen/installer-finder/internal/address"
	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/geocode"
	"github.com/wneessen/installer-finder/internal/installer"
	"github.com/wneessen/installer-finder/internal/logger"
)

const (
	// DefaultMaxDistance is the search radius in kilometers used when none is given.
	DefaultMaxDistance = 50.0
	// DefaultConcurrency is the number of installer addresses geocoded in parallel.
	DefaultConcurrency = 4
)

// ErrSearchFailed is returned when the installer directory could not be read. It wraps the
// underlying *directory.Error.
var ErrSearchFailed = errors.New("failed to find nearby installers")

// ErrInvalidDistance is returned for a search radius that is not a number.
var ErrInvalidDistance = errors.New("maximum distance is not a number")

// Mode describes how the installers of a Result were matched.
type Mode string

const (
	// ModeDistance means the requester was geocoded and installers were ranked by distance.
	ModeDistance Mode = "distance"
	// ModeCityFallback means the requester could not be geocoded and installers were matched
	// by city name.
	ModeCityFallback Mode = "city-fallback"
)

// Match is an installer together with its distance to the requester. In city fallback mode
// the distance is always 0.
type Match struct {
	Installer  installer.Installer
	DistanceKm float64
}

// Result is the outcome of a search.
type Result struct {
	Mode          Mode
	Origin        geo.Coordinate
	OriginErr     error
	City          string
	MaxDistanceKm float64
	Matches       []Match
	Skipped       int
}

// Installers returns the matched installers in ranking order.
func (r *Result) Installers() []installer.Installer {
	installers := make([]installer.Installer, 0, len(r.Matches))
	for _, match := range r.Matches {
		installers = append(installers, match.Installer)
	}
	return installers
}

type Engine struct {
	coder       geocode.Geocoder
	dir         directory.Directory
	log         *logger.Logger
	maxDistance float64
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDistance overrides the default search radius. Values <= 0 are ignored.
func WithMaxDistance(km float64) Option {
	return func(e *Engine) {
		if km > 0 {
			e.maxDistance = km
		}
	}
}

// WithConcurrency sets the number of installer addresses geocoded in parallel. Values < 1 are
// ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func New(coder geocode.Geocoder, dir directory.Directory, log *logger.Logger, opts ...Option) (*Engine, error) {
	if coder == nil {
		return nil, errors.New("geocoder is required")
	}
	if dir == nil {
		return nil, errors.New("installer directory is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	engine := &Engine{
		coder:       coder,
		dir:         dir,
		log:         log,
		maxDistance: DefaultMaxDistance,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// FindNearby returns the installers near addr, closest first. A nil maxDistanceKm selects the
// engine's default radius, any other value is used as given.
func (e *Engine) FindNearby(ctx context.Context, addr string, maxDistanceKm *float64) ([]installer.Installer, error) {
	result, err := e.Search(ctx, addr, maxDistanceKm)
	if err != nil {
		return nil, err
	}
	return result.Installers(), nil
}

// Search is like FindNearby but returns the distances and matching details as well.
func (e *Engine) Search(ctx context.Context, addr string, maxDistanceKm *float64) (*Result, error) {
	radius := e.maxDistance
	if maxDistanceKm != nil {
		radius = *maxDistanceKm
	}
	if math.IsNaN(radius) {
		return nil, ErrInvalidDistance
	}
	result := &Result{Mode: ModeDistance, MaxDistanceKm: radius, Matches: make([]Match, 0)}

	origin := geocode.Lookup(ctx, e.coder, addr)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !origin.OK() {
		result.Mode = ModeCityFallback
		result.OriginErr = origin.Err
		result.City = address.ExtractCity(addr)
		e.log.Warn("failed to geocode requester address, falling back to city match",
			slog.String("address", addr), slog.String("city", result.City), logger.Err(origin.Err))
	}
	result.Origin = origin.Coordinate

	installers, err := e.dir.All(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.log.Error("failed to read installer directory", slog.String("address", addr), logger.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	switch result.Mode {
	case ModeCityFallback:
		e.matchCity(result, installers)
	default:
		if err = e.matchDistance(ctx, result, installers); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(result.Matches, func(a, b Match) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	e.log.Debug("installer search completed", slog.String("address", addr), slog.String("mode", string(result.Mode)),
		slog.Int("installers", len(installers)), slog.Int("matches", len(result.Matches)),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// matchDistance geocodes all installers with bounded concurrency. Outcomes are stored by
// directory index so the ranking does not depend on lookup completion order.
func (e *Engine) matchDistance(ctx context.Context, result *Result, installers []installer.Installer) error {
	lookups := make([]geocode.Result, len(installers))
	group := errgroup.Group{}
	group.SetLimit(e.concurrency)
	for i, inst := range installers {
		group.Go(func() error {
			lookups[i] = geocode.Lookup(ctx, e.coder, inst.Address)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, lookup := range lookups {
		if !lookup.OK() {
			result.Skipped++
			e.log.Warn("skipping installer due to geocoding failure", slog.String("installer_id", installers[i].ID),
				slog.String("address", installers[i].Address), logger.Err(lookup.Err))
			continue
		}
		distance := result.Origin.DistanceTo(lookup.Coordinate)
		if distance <= result.MaxDistanceKm {
			result.Matches = append(result.Matches, Match{Installer: installers[i], DistanceKm: distance})
		}
	}
	return nil
}

func (e *Engine) matchCity(result *Result, installers []installer.Installer) {
	for _, inst := range installers {
		if address.ExtractCity(inst.Address) == result.City {
			result.Matches = append(result.Matches, Match{Installer: inst})
		}
	}
}
