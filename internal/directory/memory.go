// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package directory

import (
	"context"
	"slices"
	"sync"

	"github.com/wneessen/installer-finder/internal/installer"
)

// Memory is an in-memory installer directory. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records []installer.Installer
}

// NewMemory returns a memory directory holding the given records as-is.
func NewMemory(records ...installer.Installer) *Memory {
	return &Memory{records: slices.Clone(records)}
}

// All returns a snapshot of the directory in insertion order.
func (m *Memory) All(ctx context.Context) ([]installer.Installer, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Backend: "memory", Op: "list installers", Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.records), nil
}

func (m *Memory) Add(_ context.Context, installers ...installer.Installer) error {
	prepared, err := Prepare(installers...)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records = append(m.records, prepared...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
