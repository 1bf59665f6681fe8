// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/geocode"
	"github.com/wneessen/installer-finder/internal/http"
)

const (
	APISearchEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout        = time.Second * 10
	name              = "osm-nominatim"
)

type Nominatim struct {
	http    *http.Client
	lang    language.Tag
	timeout time.Duration
}

type SearchResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func New(client *http.Client, lang language.Tag, timeout time.Duration) *Nominatim {
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Nominatim{
		lang:    lang,
		http:    client,
		timeout: timeout,
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	var result []SearchResult

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", address)
	query.Set("limit", "1")
	query.Set("accept-language", n.lang.String())

	code, err := n.http.GetWithTimeout(ctx, APISearchEndpoint, &result, query, nil, n.timeout)
	if geocode.RejectedStatus(code) {
		return geo.Coordinate{}, fmt.Errorf("%w: Nominatim API responded with status %d", geocode.ErrRejected, code)
	}
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if code != 200 {
		return geo.Coordinate{}, fmt.Errorf("received non-positive response code from Nominatim API: %d", code)
	}
	if len(result) < 1 {
		return geo.Coordinate{}, fmt.Errorf("%w for address %q", geocode.ErrNoResult, address)
	}

	var coords geo.Coordinate
	coords.Lat, err = strconv.ParseFloat(result[0].APILat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	coords.Lon, err = strconv.ParseFloat(result[0].APILon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return coords, nil
}
