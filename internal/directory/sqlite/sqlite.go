// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package sqlite implements the installer directory on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/directory/sqlite/migrations"
	"github.com/wneessen/installer-finder/internal/installer"
)

const backend = "sqlite"

type Directory struct {
	db   *sql.DB
	path string
}

var _ directory.Store = (*Directory)(nil)

// Open opens (and if required creates) the SQLite database at path and applies all pending
// schema migrations.
func Open(path string) (*Directory, error) {
	if path == "" {
		return nil, errors.New("sqlite database path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	dir := &Directory{db: db, path: path}
	if err = dir.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	return dir, nil
}

func (d *Directory) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *Directory) Path() string {
	return d.path
}

// All returns all installers in insertion order.
func (d *Directory) All(ctx context.Context) ([]installer.Installer, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, skills, address, rating FROM installers ORDER BY seq`)
	if err != nil {
		return nil, &directory.Error{Backend: backend, Op: "list installers", Err: err}
	}
	defer func() { _ = rows.Close() }()

	records := make([]installer.Installer, 0)
	for rows.Next() {
		var record installer.Installer
		var skills string
		if err = rows.Scan(&record.ID, &record.UserID, &skills, &record.Address, &record.Rating); err != nil {
			return nil, &directory.Error{Backend: backend, Op: "scan installer", Err: err}
		}
		if err = json.Unmarshal([]byte(skills), &record.Skills); err != nil {
			return nil, &directory.Error{Backend: backend, Op: "decode installer skills", Err: err}
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, &directory.Error{Backend: backend, Op: "list installers", Err: err}
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

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &directory.Error{Backend: backend, Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		skills, err := json.Marshal(record.Skills)
		if err != nil {
			return fmt.Errorf("failed to encode installer skills: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO installers (id, user_id, skills, address, rating) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				user_id = excluded.user_id,
				skills = excluded.skills,
				address = excluded.address,
				rating = excluded.rating`,
			record.ID, record.UserID, string(skills), record.Address, record.Rating)
		if err != nil {
			return &directory.Error{Backend: backend, Op: "insert installer", Err: err}
		}
	}
	if err = tx.Commit(); err != nil {
		return &directory.Error{Backend: backend, Op: "commit transaction", Err: err}
	}

	return nil
}

func (d *Directory) migrate(fsys fs.FS) error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err = d.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err = fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err = d.db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		if _, err = d.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
	}

	return nil
}
