// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/geocode"
	"github.com/wneessen/installer-finder/internal/http"
)

const (
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey  string
	http    *http.Client
	lang    language.Tag
	timeout time.Duration
}

type Response struct {
	Results      []Result `json:"results"`
	Status       Status   `json:"status"`
	TotalResults int      `json:"total_results"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Confidence  int      `json:"confidence"`
	DisplayName string   `json:"formatted"`
	Geometry    Geometry `json:"geometry"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// New returns an OpenCage geocoder. An empty apikey is accepted, but every lookup will fail
// with geocode.ErrMissingAPIKey.
func New(client *http.Client, lang language.Tag, apikey string, timeout time.Duration) *OpenCage {
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &OpenCage{
		apikey:  apikey,
		lang:    lang,
		http:    client,
		timeout: timeout,
	}
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	if o.apikey == "" {
		return geo.Coordinate{}, geocode.ErrMissingAPIKey
	}

	var response Response
	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", address)
	query.Set("limit", "1")
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	query.Set("language", o.lang.String())

	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, o.timeout)
	if geocode.RejectedStatus(code) {
		return geo.Coordinate{}, fmt.Errorf("%w: OpenCage API responded with status %d: %s", geocode.ErrRejected,
			code, response.Status.Message)
	}
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from OpenCage API: %w", err)
	}
	if code != 200 {
		return geo.Coordinate{}, fmt.Errorf("received non-positive response code from OpenCage API: %d", code)
	}
	if response.TotalResults < 1 || len(response.Results) < 1 {
		return geo.Coordinate{}, fmt.Errorf("%w for address %q", geocode.ErrNoResult, address)
	}

	return geo.Coordinate{Lat: response.Results[0].Geometry.Lat, Lon: response.Results[0].Geometry.Lon}, nil
}
