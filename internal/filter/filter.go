// Package filter computes the visible rows of a list screen from its search box,
// multi-select category filters and sort column.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jask/kilowatt/internal/record"
)

// Unassigned is the category key matched by records whose field is null, absent or
// blank. It can never equal a stored value, so a field literally holding
// UnassignedLabel is an ordinary category.
const Unassigned = "\x00unassigned"

// UnassignedLabel is how Unassigned is shown to users.
const UnassignedLabel = "Unassigned"

// Label returns the display text of a category value.
func Label(v string) string {
	if v == Unassigned {
		return UnassignedLabel
	}
	return v
}

// Set is a multi-select filter's accepted values. An empty set accepts everything.
type Set map[string]struct{}

// NewSet builds a set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members sorted.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// State is the filter input of one list view.
type State struct {
	Search     string
	Categories map[string]Set // field -> accepted values
}

// Toggle adds value to field's accepted set, or removes it when already present.
func (s *State) Toggle(field, value string) {
	if s.Categories == nil {
		s.Categories = map[string]Set{}
	}
	set := s.Categories[field]
	if set == nil {
		set = Set{}
		s.Categories[field] = set
	}
	if set.Has(value) {
		delete(set, value)
		if len(set) == 0 {
			delete(s.Categories, field)
		}
		return
	}
	set[value] = struct{}{}
}

// Include adds value to field's accepted set. Adding a value twice leaves it selected.
func (s *State) Include(field, value string) {
	if s.Categories == nil {
		s.Categories = map[string]Set{}
	}
	if s.Categories[field] == nil {
		s.Categories[field] = Set{}
	}
	s.Categories[field][value] = struct{}{}
}

// Selected reports whether value is accepted for field.
func (s State) Selected(field, value string) bool {
	return s.Categories[field].Has(value)
}

// Active reports whether any predicate restricts the rows.
func (s State) Active() bool {
	if strings.TrimSpace(s.Search) != "" {
		return true
	}
	for _, set := range s.Categories {
		if len(set) > 0 {
			return true
		}
	}
	return false
}

// Clear drops every predicate.
func (s *State) Clear() {
	s.Search = ""
	s.Categories = nil
}

// Engine matches records against a State. Searchable names the fields the free-text
// search looks at; a record matches when any of them contains the query.
type Engine struct {
	searchable []string
}

// NewEngine returns an engine searching the given fields.
func NewEngine(searchable ...string) *Engine {
	return &Engine{searchable: append([]string(nil), searchable...)}
}

// Searchable returns the searched fields.
func (e *Engine) Searchable() []string {
	return append([]string(nil), e.searchable...)
}

// Apply returns the records passing st, in their original order. The input is not modified.
func (e *Engine) Apply(records []record.Record, st State) []record.Record {
	fold := cases.Fold()
	query := normalizeQuery(fold, st.Search)
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if !e.matchesSearch(fold, r, query) {
			continue
		}
		if !matchesCategories(r, st.Categories) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Matches reports whether a single record passes st.
func (e *Engine) Matches(r record.Record, st State) bool {
	fold := cases.Fold()
	return e.matchesSearch(fold, r, normalizeQuery(fold, st.Search)) &&
		matchesCategories(r, st.Categories)
}

// normalizeQuery folds a search query. A whitespace-only query matches everything;
// any other query is matched as typed, surrounding spaces included.
func normalizeQuery(fold cases.Caser, q string) string {
	if strings.TrimSpace(q) == "" {
		return ""
	}
	return fold.String(q)
}

func (e *Engine) matchesSearch(fold cases.Caser, r record.Record, query string) bool {
	if query == "" {
		return true
	}
	for _, f := range e.searchable {
		if strings.Contains(fold.String(r.Text(f)), query) {
			return true
		}
	}
	return false
}

// matchesCategories ANDs across fields and ORs within one field's accepted set.
func matchesCategories(r record.Record, cats map[string]Set) bool {
	for field, accepted := range cats {
		if len(accepted) == 0 {
			continue
		}
		if r.Blank(field) {
			if !accepted.Has(Unassigned) {
				return false
			}
			continue
		}
		if !accepted.Has(r.Text(field)) {
			return false
		}
	}
	return true
}

// Facets lists the distinct values of field, sorted, with Unassigned last when any
// record leaves the field empty.
func Facets(records []record.Record, field string) []string {
	seen := map[string]struct{}{}
	unassigned := false
	for _, r := range records {
		if r.Blank(field) {
			unassigned = true
			continue
		}
		seen[r.Text(field)] = struct{}{}
	}
	out := make([]string, 0, len(seen)+1)
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	if unassigned {
		out = append(out, Unassigned)
	}
	return out
}
