// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wneessen/installer-finder/internal/logger"
	"github.com/wneessen/installer-finder/internal/matching"
	"github.com/wneessen/installer-finder/internal/presenter"
	"github.com/wneessen/installer-finder/internal/service"
)

func newFindCmd(confPath *string) *cobra.Command {
	var maxDistance float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "find <address>",
		Short: "Find the installers closest to an address",
		Long: `Find the installers closest to an address, ordered by distance.

If the address cannot be geocoded, installers located in the same city are listed instead.

Examples:
  installer-finder find "10 Palm Rd, Lagos, Nigeria"
  installer-finder find "10 Palm Rd, Lagos, Nigeria" --max-distance 20 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := serv.Engine().Search(cmd.Context(), args[0], maxDistanceFlag(cmd, maxDistance))
			if err != nil {
				return err
			}
			if asJSON {
				return presenter.RenderJSON(cmd.OutOrStdout(), result)
			}
			p, err := presenter.New("")
			if err != nil {
				return err
			}
			return p.Render(cmd.OutOrStdout(), p.BuildView(args[0], result))
		},
	}
	cmd.Flags().Float64VarP(&maxDistance, "max-distance", "d", matching.DefaultMaxDistance,
		"maximum distance in kilometers, matching.max_distance_km from the config if not set")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// maxDistanceFlag returns nil if --max-distance was not given, so the configured radius applies.
func maxDistanceFlag(cmd *cobra.Command, value float64) *float64 {
	if !cmd.Flags().Changed("max-distance") {
		return nil
	}
	return &value
}
