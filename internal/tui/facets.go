package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/kilowatt/internal/filter"
)

// facetState is the cursor of the filter modal: which facet field, which value.
type facetState struct {
	field  int
	cursor int
}

func (a *App) facetValues(l *listState) (string, []string) {
	if a.facets.field >= len(l.coll.Facets) {
		a.facets.field = 0
	}
	field := l.coll.Facets[a.facets.field]
	return field, filter.Facets(l.view.Source, field)
}

func (a *App) handleFacetKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := a.currentList()
	if l == nil || len(l.coll.Facets) == 0 {
		a.modal = modalNone
		return a, nil
	}
	field, values := a.facetValues(l)
	switch m.String() {
	case "esc", "f", "enter":
		a.modal = modalNone
	case "tab", "right", "l":
		a.facets = facetState{field: (a.facets.field + 1) % len(l.coll.Facets)}
	case "shift+tab", "left", "h":
		a.facets = facetState{field: (a.facets.field + len(l.coll.Facets) - 1) % len(l.coll.Facets)}
	case "up", "k":
		if a.facets.cursor > 0 {
			a.facets.cursor--
		}
	case "down", "j":
		if a.facets.cursor < len(values)-1 {
			a.facets.cursor++
		}
	case " ":
		if a.facets.cursor < len(values) {
			l.view.Filter.Toggle(field, values[a.facets.cursor])
			l.cursor = 0
		}
	case "x":
		l.view.Filter.Clear()
		l.cursor = 0
	}
	return a, nil
}

func (a *App) renderFacets() string {
	l := a.currentList()
	if l == nil || len(l.coll.Facets) == 0 {
		return ""
	}
	field, values := a.facetValues(l)
	out := ""
	for i, f := range l.coll.Facets {
		if i == a.facets.field {
			out += activeTab.Render(f)
		} else {
			out += tabStyle.Render(f)
		}
	}
	out += "\n"
	for i, v := range values {
		box := "[ ]"
		if l.view.Filter.Selected(field, v) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, filter.Label(v))
		if i == a.facets.cursor {
			line = selectedStyle.Render("▶ " + line)
		} else {
			line = "  " + line
		}
		out += line + "\n"
	}
	out += "[space] Toggle  [tab] Next field  [x] Clear  [esc] Close"
	return modalStyle.Render(out)
}
