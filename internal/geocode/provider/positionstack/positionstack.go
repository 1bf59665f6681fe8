// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package positionstack

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/geocode"
	"github.com/wneessen/installer-finder/internal/http"
)

const (
	// The free plan of positionstack only supports plain HTTP
	APIEndpoint = "http://api.positionstack.com/v1/forward"
	APITimeout  = time.Second * 10
	name        = "positionstack"
)

type Positionstack struct {
	apikey  string
	http    *http.Client
	timeout time.Duration
}

type Response struct {
	Data  []Result  `json:"data"`
	Error *APIError `json:"error,omitempty"`
}

type Result struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Label      string  `json:"label"`
	Locality   string  `json:"locality"`
	Region     string  `json:"region"`
	Country    string  `json:"country"`
	Confidence float64 `json:"confidence"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New returns a positionstack geocoder. An empty apikey is accepted, but every lookup will fail
// with geocode.ErrMissingAPIKey.
func New(client *http.Client, apikey string, timeout time.Duration) *Positionstack {
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Positionstack{
		apikey:  apikey,
		http:    client,
		timeout: timeout,
	}
}

func (p *Positionstack) Name() string {
	return name
}

func (p *Positionstack) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	if p.apikey == "" {
		return geo.Coordinate{}, geocode.ErrMissingAPIKey
	}

	var response Response
	query := url.Values{}
	query.Set("access_key", p.apikey)
	query.Set("query", address)
	query.Set("limit", "1")

	code, err := p.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, p.timeout)
	if response.Error != nil {
		return geo.Coordinate{}, response.Error.err()
	}
	if geocode.RejectedStatus(code) {
		return geo.Coordinate{}, fmt.Errorf("%w: positionstack API responded with status %d", geocode.ErrRejected, code)
	}
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from positionstack API: %w", err)
	}
	if code != 200 {
		return geo.Coordinate{}, fmt.Errorf("received non-positive response code from positionstack API: %d", code)
	}
	if len(response.Data) < 1 {
		return geo.Coordinate{}, fmt.Errorf("%w for address %q", geocode.ErrNoResult, address)
	}

	return geo.Coordinate{Lat: response.Data[0].Latitude, Lon: response.Data[0].Longitude}, nil
}

func (e *APIError) err() error {
	switch e.Code {
	case "missing_access_key":
		return fmt.Errorf("%w: %s", geocode.ErrMissingAPIKey, e.Message)
	case "invalid_access_key", "inactive_user", "usage_limit_reached", "rate_limit_reached",
		"function_access_restricted", "https_access_restricted":
		return fmt.Errorf("%w: %s: %s", geocode.ErrRejected, e.Code, e.Message)
	default:
		return fmt.Errorf("positionstack API returned an error: %s: %s", e.Code, e.Message)
	}
}
