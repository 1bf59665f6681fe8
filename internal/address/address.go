// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package address provides helpers for the free-text, comma-delimited addresses entered by
// customers and installers, e.g. "123 Main St, Lagos, Nigeria".
package address

import "strings"

// ExtractCity returns a coarse locality token for the given address. The address is split on
// commas and each segment is trimmed. The second segment is returned if it is present and not
// empty, otherwise the first one. This assumes the "<street>, <city>, <country>" convention and
// is only good enough as a fallback when an address cannot be geocoded.
func ExtractCity(addr string) string {
	parts := strings.Split(addr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}

// Normalize lower-cases the address and collapses all whitespace runs into a single space.
func Normalize(addr string) string {
	return strings.ToLower(strings.Join(strings.Fields(addr), " "))
}
