// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/geocode"
	"github.com/wneessen/installer-finder/internal/http"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1/search"
	APITimeout  = time.Second * 10
	name        = "geocode-earth"
)

type GeocodeEarth struct {
	apikey  string
	http    *http.Client
	lang    language.Tag
	timeout time.Duration
}

type Response struct {
	Geocoding Geocoding `json:"geocoding"`
	Features  []Feature `json:"features"`
	Type      string    `json:"type"`
}

type Geocoding struct {
	Errors []string `json:"errors"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry is a GeoJSON point. Coordinates are ordered longitude, latitude.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Properties struct {
	DisplayName string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	City        string  `json:"locality"`
	Country     string  `json:"country"`
}

// New returns a geocode.earth geocoder. An empty apikey is accepted, but every lookup will fail
// with geocode.ErrMissingAPIKey.
func New(client *http.Client, lang language.Tag, apikey string, timeout time.Duration) *GeocodeEarth {
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &GeocodeEarth{
		apikey:  apikey,
		lang:    lang,
		http:    client,
		timeout: timeout,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	if g.apikey == "" {
		return geo.Coordinate{}, geocode.ErrMissingAPIKey
	}

	var response Response
	query := url.Values{}
	query.Set("api_key", g.apikey)
	query.Set("text", address)
	query.Set("size", "1")
	query.Set("lang", g.lang.String())

	code, err := g.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, g.timeout)
	if geocode.RejectedStatus(code) {
		return geo.Coordinate{}, fmt.Errorf("%w: geocode.earth API responded with status %d: %s", geocode.ErrRejected,
			code, strings.Join(response.Geocoding.Errors, "; "))
	}
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from geocode.earth API: %w", err)
	}
	if code != 200 {
		return geo.Coordinate{}, fmt.Errorf("received non-positive response code from geocode.earth API: %d", code)
	}
	if len(response.Features) < 1 {
		return geo.Coordinate{}, fmt.Errorf("%w for address %q", geocode.ErrNoResult, address)
	}

	point := response.Features[0].Geometry.Coordinates
	if len(point) < 2 {
		return geo.Coordinate{}, fmt.Errorf("invalid point geometry in geocode.earth API response: %v", point)
	}

	return geo.Coordinate{Lat: point[1], Lon: point[0]}, nil
}
