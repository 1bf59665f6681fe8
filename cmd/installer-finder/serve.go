// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wneessen/installer-finder/internal/logger"
	"github.com/wneessen/installer-finder/internal/service"
)

func newServeCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the installer search HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			log.Info("starting installer-finder service", startupAttrs()...)
			if err = serv.Run(cmd.Context()); err != nil {
				return fmt.Errorf("failed to run installer-finder service: %w", err)
			}
			log.Info("shutting down installer-finder service")
			return nil
		},
	}
}
