package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jask/kilowatt/internal/record"
)

// Direction orders a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortState is the sort column of a list view. A zero Field means original order.
type SortState struct {
	Field string
	Dir   Direction
}

// Toggle selects field. Selecting the current field flips the direction; a new field
// starts ascending.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Dir == Ascending {
			s.Dir = Descending
		} else {
			s.Dir = Ascending
		}
		return s
	}
	return SortState{Field: field, Dir: Ascending}
}

// Sort returns a new slice ordered by s. Numbers compare naturally, strings
// case-insensitively; empty values sort last when ascending. Equal keys keep their
// original relative order.
func Sort(records []record.Record, s SortState) []record.Record {
	out := append([]record.Record(nil), records...)
	if s.Field == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b record.Record) int {
		c := compareValues(a[s.Field], b[s.Field])
		if s.Dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// Value kinds in sort order: numbers, then text, then empty values.
const (
	kindNumber = iota
	kindText
	kindBlank
)

func kindOf(v any) int {
	switch {
	case record.IsBlank(v):
		return kindBlank
	case record.IsNumeric(v):
		return kindNumber
	default:
		return kindText
	}
}

// compareValues orders by kind first so mixed columns still sort consistently.
func compareValues(a, b any) int {
	ka, kb := kindOf(a), kindOf(b)
	if c := cmp.Compare(ka, kb); c != 0 {
		return c
	}
	switch ka {
	case kindNumber:
		af, _ := record.Number(a)
		bf, _ := record.Number(b)
		return cmp.Compare(af, bf)
	case kindText:
		return strings.Compare(strings.ToLower(record.Text(a)), strings.ToLower(record.Text(b)))
	}
	return 0
}
