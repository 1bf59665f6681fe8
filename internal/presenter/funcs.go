// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"floatFormat": p.floatFormat,
		"pad":         pad,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func (p *Presenter) floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Round(val*pow)/pow)
}

// pad fills val with spaces up to the given display width. Wide characters count twice.
func pad(val string, width int) string {
	return runewidth.FillRight(val, width)
}
