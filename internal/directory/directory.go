// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package directory provides access to the registered installers. The matching engine only reads
// from it; writers are used by the import tooling.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wneessen/installer-finder/internal/installer"
)

var (
	// ErrEmptyAddress is returned when an installer record without an address is added.
	ErrEmptyAddress = errors.New("installer address must not be empty")
	// ErrNegativeRating is returned when an installer record with a negative rating is added.
	ErrNegativeRating = errors.New("installer rating must not be negative")
)

// Directory is a read-only view on all registered installers.
type Directory interface {
	All(ctx context.Context) ([]installer.Installer, error)
}

// Writer adds installer records to a directory.
type Writer interface {
	Add(ctx context.Context, installers ...installer.Installer) error
}

// Store is a directory backend that can be read from and written to.
type Store interface {
	Directory
	Writer
	Close() error
}

// Error is returned by the directory backends when the underlying storage fails.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("installer directory %s: failed to %s: %s", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Prepare validates the given records and fills in defaults before they are stored. Records
// without an ID get a random UUID, records without skills get an empty skill list.
func Prepare(records ...installer.Installer) ([]installer.Installer, error) {
	prepared := make([]installer.Installer, 0, len(records))
	for i, record := range records {
		record.Address = strings.TrimSpace(record.Address)
		if record.Address == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrEmptyAddress)
		}
		if record.Rating < 0 {
			return nil, fmt.Errorf("record %d: %w", i, ErrNegativeRating)
		}
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.Skills == nil {
			record.Skills = []string{}
		}
		prepared = append(prepared, record)
	}
	return prepared, nil
}
