// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package migrations embeds the schema of the SQLite installer directory.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
