// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter turns search results into views for terminal and JSON output.
package presenter

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"

	"github.com/wneessen/installer-finder/internal/matching"
)

// MaxAddressWidth is the maximum display width of the address column.
const MaxAddressWidth = 48

// DefaultTableTpl renders a View as an aligned plain text table.
const DefaultTableTpl = `{{- if eq .Mode "city-fallback" -}}
Address could not be geocoded, showing installers in {{.City}}
{{else -}}
Installers within {{floatFormat .MaxDistanceKm 1}} km of {{.Address}}
{{end -}}
{{if not .Rows}}No installers found
{{else -}}
{{pad "#" .Widths.Rank}}  {{pad "ID" .Widths.ID}}  {{pad "ADDRESS" .Widths.Address}}  {{pad "SKILLS" .Widths.Skills}}  {{pad "RATING" .Widths.Rating}}  DISTANCE
{{range .Rows}}{{pad .Rank $.Widths.Rank}}  {{pad .ID $.Widths.ID}}  {{pad .Address $.Widths.Address}}  {{pad .Skills $.Widths.Skills}}  {{pad .Rating $.Widths.Rating}}  {{.Distance}}
{{end}}{{end -}}
{{if .Skipped}}{{.Skipped}} installer(s) skipped, address could not be geocoded
{{end -}}`

// View is the presentation of a search result.
type View struct {
	Address       string
	Mode          string
	City          string
	MaxDistanceKm float64
	Skipped       int
	Rows          []Row
	Widths        Widths
}

// Row is a single, pre-formatted table row.
type Row struct {
	Rank     string
	ID       string
	Address  string
	Skills   string
	Rating   string
	Distance string
}

// Widths holds the display width of each padded column.
type Widths struct {
	Rank    int
	ID      int
	Address int
	Skills  int
	Rating  int
}

type Presenter struct {
	table *template.Template
}

// New returns a Presenter using tpl as table template. An empty tpl selects DefaultTableTpl.
func New(tpl string) (*Presenter, error) {
	if tpl == "" {
		tpl = DefaultTableTpl
	}
	p := &Presenter{}
	table, err := template.New("table").Funcs(p.templateFuncMap()).Parse(tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table template: %w", err)
	}
	p.table = table
	return p, nil
}

// BuildView converts the search result for address into a View.
func (p *Presenter) BuildView(address string, result *matching.Result) View {
	view := View{
		Address:       address,
		Mode:          string(result.Mode),
		City:          result.City,
		MaxDistanceKm: result.MaxDistanceKm,
		Skipped:       result.Skipped,
		Rows:          make([]Row, 0, len(result.Matches)),
		Widths: Widths{
			Rank:    runewidth.StringWidth("#"),
			ID:      runewidth.StringWidth("ID"),
			Address: runewidth.StringWidth("ADDRESS"),
			Skills:  runewidth.StringWidth("SKILLS"),
			Rating:  runewidth.StringWidth("RATING"),
		},
	}

	for i, match := range result.Matches {
		row := Row{
			Rank:     fmt.Sprint(i + 1),
			ID:       match.Installer.ID,
			Address:  runewidth.Truncate(match.Installer.Address, MaxAddressWidth, "…"),
			Skills:   strings.Join(match.Installer.Skills, ", "),
			Rating:   p.floatFormat(match.Installer.Rating, 1),
			Distance: "-",
		}
		if result.Mode == matching.ModeDistance {
			row.Distance = p.floatFormat(match.DistanceKm, 2) + " km"
		}
		view.Widths.Rank = max(view.Widths.Rank, runewidth.StringWidth(row.Rank))
		view.Widths.ID = max(view.Widths.ID, runewidth.StringWidth(row.ID))
		view.Widths.Address = max(view.Widths.Address, runewidth.StringWidth(row.Address))
		view.Widths.Skills = max(view.Widths.Skills, runewidth.StringWidth(row.Skills))
		view.Widths.Rating = max(view.Widths.Rating, runewidth.StringWidth(row.Rating))
		view.Rows = append(view.Rows, row)
	}

	return view
}

// Render writes the view as table to w.
func (p *Presenter) Render(w io.Writer, view View) error {
	if err := p.table.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render table template: %w", err)
	}
	return nil
}
