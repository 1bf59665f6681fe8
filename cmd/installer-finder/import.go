// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wneessen/installer-finder/internal/directory"
	"github.com/wneessen/installer-finder/internal/logger"
	"github.com/wneessen/installer-finder/internal/service"
)

func newImportCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import installers from a YAML or JSON file into the installer directory",
		Long: `Import installers from a YAML or JSON file into the installer directory.

The file holds either a list of installers or a mapping with an "installers" list. Installers
without an ID are assigned a random UUID, existing installers with the same ID are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := directory.LoadFile(args[0])
			if err != nil {
				return err
			}

			conf, log, err := loadConfig(*confPath)
			if err != nil {
				return err
			}
			serv, err := service.New(cmd.Context(), conf, log)
			if err != nil {
				return fmt.Errorf("failed to initialize installer-finder service: %w", err)
			}
			defer func() {
				if err := serv.Close(); err != nil {
					log.Error("failed to close service", logger.Err(err))
				}
			}()

			if err = serv.Directory().Add(cmd.Context(), records...); err != nil {
				return fmt.Errorf("failed to import installers: %w", err)
			}
			log.Info("imported installers", slog.String("file", args[0]), slog.Int("count", len(records)))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d installers\n", len(records))
			return err
		},
	}
}
