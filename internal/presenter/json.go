// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wneessen/installer-finder/internal/matching"
)

// JSONResult is the JSON representation of a search result.
type JSONResult struct {
	Mode       matching.Mode   `json:"mode"`
	Installers []JSONInstaller `json:"installers"`
}

type JSONInstaller struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Skills     []string `json:"skills"`
	Address    string   `json:"address"`
	Rating     float64  `json:"rating"`
	DistanceKm float64  `json:"distance_km"`
}

// BuildJSON converts the search result into its JSON representation. Installers are listed in
// ranking order and skills are never null.
func BuildJSON(result *matching.Result) JSONResult {
	out := JSONResult{Mode: result.Mode, Installers: make([]JSONInstaller, 0, len(result.Matches))}
	for _, match := range result.Matches {
		skills := match.Installer.Skills
		if skills == nil {
			skills = []string{}
		}
		out.Installers = append(out.Installers, JSONInstaller{
			ID:         match.Installer.ID,
			UserID:     match.Installer.UserID,
			Skills:     skills,
			Address:    match.Installer.Address,
			Rating:     match.Installer.Rating,
			DistanceKm: match.DistanceKm,
		})
	}
	return out
}

// RenderJSON writes the indented JSON representation of result to w.
func RenderJSON(w io.Writer, result *matching.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(BuildJSON(result)); err != nil {
		return fmt.Errorf("failed to encode search result: %w", err)
	}
	return nil
}
