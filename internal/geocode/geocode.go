// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/installer-finder/internal/geo"
)

var (
	// ErrNoResult is returned by a provider if the lookup returned no coordinates.
	ErrNoResult = errors.New("no coordinates found")
	// ErrMissingAPIKey is returned by providers that need an access key if none is configured.
	ErrMissingAPIKey = errors.New("geocoder requires an API key, but none is configured")
	// ErrRejected is returned if the provider rejected the request, e.g. because of an invalid key
	// or an exhausted quota.
	ErrRejected = errors.New("request rejected by geocoder")
	// ErrEmptyAddress is returned for blank addresses without contacting the provider.
	ErrEmptyAddress = errors.New("address is empty")
	// ErrInvalidCoordinate is returned if the provider answered with an out-of-range coordinate.
	ErrInvalidCoordinate = errors.New("invalid coordinate received")
)

// Geocoder resolves a free-text address to a coordinate. Implementations select the first,
// highest ranked result of the provider and do not retry.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, address string) (geo.Coordinate, error)
}

// Error is returned when an address could not be resolved to coordinates.
type Error struct {
	Provider string
	Address  string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to geocode address %q using %s: %s", e.Address, e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of a single address lookup. Either Err is nil and Coordinate holds the
// resolved position, or Err is a *Error describing why the address could not be resolved.
type Result struct {
	Address    string
	Coordinate geo.Coordinate
	Err        error
}

// OK reports whether the lookup succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Lookup resolves address with the given geocoder and returns the outcome as Result. Any
// failure, including a timeout or cancellation of ctx, is reported as a *Error.
func Lookup(ctx context.Context, coder Geocoder, address string) Result {
	result := Result{Address: address}
	if strings.TrimSpace(address) == "" {
		result.Err = &Error{Provider: coder.Name(), Address: address, Err: ErrEmptyAddress}
		return result
	}

	coords, err := coder.Search(ctx, address)
	if err != nil {
		var gerr *Error
		if !errors.As(err, &gerr) {
			err = &Error{Provider: coder.Name(), Address: address, Err: err}
		}
		result.Err = err
		return result
	}
	if !coords.Valid() {
		result.Err = &Error{Provider: coder.Name(), Address: address,
			Err: fmt.Errorf("%w: %s", ErrInvalidCoordinate, coords)}
		return result
	}

	result.Coordinate = coords
	return result
}

// RejectedStatus reports whether an HTTP status code means the provider refused to serve the
// request because of the credential or quota.
func RejectedStatus(code int) bool {
	switch code {
	case 401, 402, 403, 429:
		return true
	default:
		return false
	}
}
