// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package installer

// Installer is a registered service installer as stored in the installer directory.
type Installer struct {
	ID      string   `json:"id" yaml:"id"`
	UserID  string   `json:"user_id" yaml:"user_id"`
	Skills  []string `json:"skills" yaml:"skills"`
	Address string   `json:"address" yaml:"address"`
	Rating  float64  `json:"rating" yaml:"rating"`
}
