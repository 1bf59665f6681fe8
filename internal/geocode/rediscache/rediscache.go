// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package rediscache implements a geocode cache shared between service instances on top of
// Redis. Expiry is handled by Redis itself.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/geocode"
)

const DefaultPrefix = "installer-finder:geocode:"

type Cache struct {
	client *redis.Client
	prefix string
}

type record struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Found bool    `json:"found"`
}

func New(client *redis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Ping checks that the Redis server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis server: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, key string) (geocode.Entry, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return geocode.Entry{}, false, nil
	}
	if err != nil {
		return geocode.Entry{}, false, fmt.Errorf("failed to get cache entry from redis: %w", err)
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return geocode.Entry{}, false, err
	}
	return entry, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, entry geocode.Entry, ttl time.Duration) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if err = c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry in redis: %w", err)
	}
	return nil
}

func encodeEntry(entry geocode.Entry) ([]byte, error) {
	data, err := json.Marshal(record{Lat: entry.Coordinate.Lat, Lon: entry.Coordinate.Lon, Found: entry.Found})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (geocode.Entry, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return geocode.Entry{}, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return geocode.Entry{Coordinate: geo.Coordinate{Lat: rec.Lat, Lon: rec.Lon}, Found: rec.Found}, nil
}
