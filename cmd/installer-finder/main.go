// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the installer-finder command line interface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wneessen/installer-finder/internal/config"
	"github.com/wneessen/installer-finder/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var confPath string
	rootCmd := &cobra.Command{
		Use:           "installer-finder",
		Short:         "Find service installers near an address",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", "", "path to the config file")

	rootCmd.AddCommand(newServeCmd(&confPath))
	rootCmd.AddCommand(newFindCmd(&confPath))
	rootCmd.AddCommand(newImportCmd(&confPath))
	return rootCmd
}

// loadConfig reads the configuration from confPath, from the default location in the user's
// config directory or, if neither exists, from defaults and environment only.
func loadConfig(confPath string) (*config.Config, *logger.Logger, error) {
	var conf *config.Config
	var err error

	switch path, file := findConfigFile(); {
	case confPath != "":
		conf, err = config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	case path != "" && file != "":
		conf, err = config.NewFromFile(path, file)
	default:
		conf, err = config.New()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, logger.New(conf.LogLevel), nil
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "installer-finder", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}

func startupAttrs() []any {
	return []any{slog.String("version", version), slog.String("commit", commit), slog.String("date", date)}
}
