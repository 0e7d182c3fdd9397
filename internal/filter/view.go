package filter

import "github.com/jask/kilowatt/internal/record"

// View is the state of one list screen: its source rows plus the predicates and sort
// applied to them. It lives as long as the screen and is never persisted.
type View struct {
	Engine *Engine
	Source []record.Record
	Filter State
	Sort   SortState
}

// NewView returns a view over source.
func NewView(engine *Engine, source []record.Record) *View {
	return &View{Engine: engine, Source: source}
}

// SetSource replaces the rows, keeping predicates and sort.
func (v *View) SetSource(source []record.Record) {
	v.Source = source
}

// Rows recomputes the visible rows.
func (v *View) Rows() []record.Record {
	rows := v.Engine.Apply(v.Source, v.Filter)
	if v.Sort.Field == "" {
		return rows
	}
	return Sort(rows, v.Sort)
}

// ToggleSort applies SortState.Toggle.
func (v *View) ToggleSort(field string) {
	v.Sort = v.Sort.Toggle(field)
}
