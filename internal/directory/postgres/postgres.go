// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package postgres implements the installer directory on a PostgreSQL database.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/installer"
)

const backend = "postgres"

//go:embed schema.sql
var schema string

type Directory struct {
	pool *pgxpool.Pool
}

var _ directory.Store = (*Directory)(nil)

// Open connects to the database identified by dsn and makes sure the installer table exists.
func Open(ctx context.Context, dsn string) (*Directory, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err = pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create installer schema: %w", err)
	}

	return New(pool), nil
}

// New returns a directory on an existing pool. The schema is expected to exist.
func New(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) Close() error {
	d.pool.Close()
	return nil
}

// All returns all installers in insertion order.
func (d *Directory) All(ctx context.Context) ([]installer.Installer, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, skills, address, rating FROM installers ORDER BY seq`)
	if err != nil {
		return nil, &directory.Error{Backend: backend, Op: "list installers", Err: err}
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (installer.Installer, error) {
		var record installer.Installer
		err := row.Scan(&record.ID, &record.UserID, &record.Skills, &record.Address, &record.Rating)
		return record, err
	})
	if err != nil {
		return nil, &directory.Error{Backend: backend, Op: "scan installers", Err: err}
	}

	return records, nil
}

// Add inserts the installers in a single transaction. Existing records with the same ID are
// replaced.
func (d *Directory) Add(ctx context.Context, installers ...installer.Installer) error {
	records, err := directory.Prepare(installers...)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, record := range records {
			batch.Queue(`
				INSERT INTO installers (id, user_id, skills, address, rating) VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET
					user_id = EXCLUDED.user_id,
					skills = EXCLUDED.skills,
					address = EXCLUDED.address,
					rating = EXCLUDED.rating`,
				record.ID, record.UserID, record.Skills, record.Address, record.Rating)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return &directory.Error{Backend: backend, Op: "insert installers", Err: err}
	}

	return nil
}
