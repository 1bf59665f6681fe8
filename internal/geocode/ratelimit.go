// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wneessen/installer-finder/internal/geo"
)

// RateLimitedGeocoder limits the request rate to another Geocoder using a token bucket.
type RateLimitedGeocoder struct {
	coder   Geocoder
	limiter *rate.Limiter
	timeout time.Duration
}

// NewRateLimitedGeocoder returns a Geocoder that allows perSecond lookups with bursts of up to
// burst lookups. A non-positive rate disables the limit. The timeout bounds each lookup including
// the time spent waiting for the limiter; a lookup that would have to wait longer fails at once.
// A non-positive timeout leaves the lookup unbounded.
func NewRateLimitedGeocoder(coder Geocoder, perSecond float64, burst int, timeout time.Duration) *RateLimitedGeocoder {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGeocoder{
		coder:   coder,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
	}
}

// Name returns the name of the wrapped geocoder, so cache keys do not depend on the limit.
func (r *RateLimitedGeocoder) Name() string {
	return r.coder.Name()
}

func (r *RateLimitedGeocoder) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return geo.Coordinate{}, fmt.Errorf("rate limit wait aborted: %w", err)
	}
	return r.coder.Search(ctx, address)
}
