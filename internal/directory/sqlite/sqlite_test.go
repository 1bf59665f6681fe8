// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/installer"
)

func TestOpen(t *testing.T) {
	t.Run("open creates the database and directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "installers.db")
		dir, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = dir.Close() })
		if dir.Path() != path {
			t.Errorf("expected path to be %q, got %q", path, dir.Path())
		}
		records, err := dir.All(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 0 {
			t.Errorf("expected empty directory, got %d records", len(records))
		}
	})
	t.Run("reopening keeps records and migrations", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "installers.db")
		dir, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if err = dir.Add(t.Context(), installer.Installer{ID: "a", Address: "Lagos"}); err != nil {
			t.Fatal(err)
		}
		if err = dir.Close(); err != nil {
			t.Fatal(err)
		}

		dir, err = Open(path)
		if err != nil {
			t.Fatalf("failed to reopen database: %s", err)
		}
		t.Cleanup(func() { _ = dir.Close() })
		records, err := dir.All(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 || records[0].ID != "a" {
			t.Errorf("expected record a to survive reopening, got %+v", records)
		}
	})
	t.Run("empty path fails", func(t *testing.T) {
		if _, err := Open(""); err == nil {
			t.Error("expected opening an empty path to fail")
		}
	})
}

func TestDirectory_Add(t *testing.T) {
	t.Run("records round trip in insertion order", func(t *testing.T) {
		dir := testDirectory(t)
		err := dir.Add(t.Context(),
			installer.Installer{ID: "b", UserID: "u-2", Skills: []string{"solar", "battery"}, Address: "Abuja", Rating: 4.5},
			installer.Installer{ID: "a", UserID: "u-1", Address: "Lagos"},
		)
		if err != nil {
			t.Fatal(err)
		}
		records, err := dir.All(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].ID != "b" || records[1].ID != "a" {
			t.Errorf("expected insertion order b,a, got %s,%s", records[0].ID, records[1].ID)
		}
		if len(records[0].Skills) != 2 || records[0].Skills[1] != "battery" {
			t.Errorf("expected skills to round trip, got %v", records[0].Skills)
		}
		if records[0].Rating != 4.5 || records[0].UserID != "u-2" {
			t.Errorf("unexpected record: %+v", records[0])
		}
		if records[1].Skills == nil || len(records[1].Skills) != 0 {
			t.Errorf("expected empty skill list, got %v", records[1].Skills)
		}
	})
	t.Run("existing IDs are replaced", func(t *testing.T) {
		dir := testDirectory(t)
		if err := dir.Add(t.Context(), installer.Installer{ID: "a", Address: "Lagos"}); err != nil {
			t.Fatal(err)
		}
		if err := dir.Add(t.Context(), installer.Installer{ID: "a", Address: "Ikeja, Lagos", Rating: 2}); err != nil {
			t.Fatal(err)
		}
		records, err := dir.All(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Address != "Ikeja, Lagos" || records[0].Rating != 2 {
			t.Errorf("expected record to be updated, got %+v", records[0])
		}
	})
	t.Run("missing IDs are generated", func(t *testing.T) {
		dir := testDirectory(t)
		if err := dir.Add(t.Context(), installer.Installer{Address: "Lagos"}); err != nil {
			t.Fatal(err)
		}
		records, err := dir.All(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 || records[0].ID == "" {
			t.Errorf("expected generated ID, got %+v", records)
		}
	})
	t.Run("invalid record fails", func(t *testing.T) {
		dir := testDirectory(t)
		err := dir.Add(t.Context(), installer.Installer{ID: "a"})
		if !errors.Is(err, directory.ErrEmptyAddress) {
			t.Errorf("expected error to be %s, got %s", directory.ErrEmptyAddress, err)
		}
	})
}

func TestDirectory_All(t *testing.T) {
	t.Run("cancelled context fails with a directory error", func(t *testing.T) {
		dir := testDirectory(t)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := dir.All(ctx)
		var dirErr *directory.Error
		if !errors.As(err, &dirErr) {
			t.Fatalf("expected a directory error, got %v", err)
		}
		if dirErr.Backend != backend {
			t.Errorf("expected backend to be %q, got %q", backend, dirErr.Backend)
		}
	})
	t.Run("closed database fails with a directory error", func(t *testing.T) {
		dir := testDirectory(t)
		_ = dir.Close()
		_, err := dir.All(t.Context())
		var dirErr *directory.Error
		if !errors.As(err, &dirErr) {
			t.Errorf("expected a directory error, got %v", err)
		}
	})
}

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := Open(filepath.Join(t.TempDir(), "installers.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite directory: %s", err)
	}
	t.Cleanup(func() { _ = dir.Close() })
	return dir
}
