package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/catalog"
	"github.com/jask/kilowatt/internal/record"
	"github.com/jask/kilowatt/internal/wizard"
)

// formState is the open data-entry dialog.
type formState struct {
	coll  catalog.Collection
	form  wizard.Form
	w     *wizard.Wizard
	focus int
}

func (f *formState) field() wizard.Field {
	fields := f.w.Current().Fields
	if f.focus >= len(fields) {
		f.focus = 0
	}
	return fields[f.focus]
}

func (a *App) completion(kind string) (wizard.Completion, error) {
	var c wizard.Completion
	switch kind {
	case "account":
		if a.services.Accounts != nil {
			c = a.services.Accounts.Create
		}
	case "provider":
		if a.services.Providers != nil {
			c = a.services.Providers.Create
		}
	case "manager":
		if a.services.Managers != nil {
			c = a.services.Managers.Create
		}
	}
	if c == nil {
		return nil, fmt.Errorf("no service handles %s forms", kind)
	}
	return c, nil
}

func (a *App) openForm(coll catalog.Collection) tea.Cmd {
	fail := func(err error) tea.Cmd {
		return func() tea.Msg { return errMsg{err} }
	}
	form, err := wizard.Lookup(coll.Form)
	if err != nil {
		return fail(err)
	}
	complete, err := a.completion(form.Kind)
	if err != nil {
		return fail(err)
	}
	w, err := form.New(complete)
	if err != nil {
		return fail(err)
	}
	a.form = &formState{coll: coll, form: form, w: w}
	a.modal = modalForm
	a.status = ""
	return nil
}

func (a *App) closeForm() {
	a.form = nil
	a.modal = modalNone
}

func (a *App) submitCmd(w *wizard.Wizard, rec record.Record) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{w: w, err: w.Complete(a.ctx, rec)}
	}
}

func (a *App) finishSubmit(m submitDoneMsg) (tea.Model, tea.Cmd) {
	if a.form == nil || a.form.w != m.w {
		return a, nil
	}
	if err := m.w.FinishSubmit(m.err); err != nil {
		var serr *wizard.SubmissionError
		if errors.As(err, &serr) {
			a.log.Warn("form submit failed", zap.String("form", a.form.form.Kind), zap.Error(serr.Err))
		}
		a.status = "save failed: " + err.Error()
		return a, nil
	}
	a.status = a.form.form.Title + " saved"
	a.closeForm()
	return a, a.loadCmd()
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	w := f.w
	if w.Pending() {
		if m.String() == "esc" || m.String() == "ctrl+x" {
			a.status = "saving, please wait"
		}
		return a, nil
	}
	field := f.field()
	fields := w.Current().Fields

	switch m.String() {
	case "ctrl+x":
		if err := w.Cancel(); err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.closeForm()
		a.status = "cancelled"
		return a, nil
	case "esc":
		if w.Index() == 0 {
			if err := w.Cancel(); err != nil {
				a.status = err.Error()
				return a, nil
			}
			a.closeForm()
			a.status = "cancelled"
			return a, nil
		}
		_ = w.Retreat()
		f.focus = 0
		return a, nil
	case "tab", "down":
		f.focus = (f.focus + 1) % len(fields)
		return a, nil
	case "shift+tab", "up":
		f.focus = (f.focus + len(fields) - 1) % len(fields)
		return a, nil
	case "left", "right":
		if len(field.Options) > 0 {
			_ = w.UpdateField(field.Name, cycleOption(field.Options, record.Text(w.Value(field.Name)), m.String() == "right"))
		}
		return a, nil
	case "enter":
		if !w.OnLastStep() {
			if err := w.Advance(); err != nil {
				if isValidation(err) {
					a.status = "fix the highlighted fields"
				} else {
					a.status = err.Error()
				}
				return a, nil
			}
			f.focus = 0
			a.status = ""
			return a, nil
		}
		rec, err := w.BeginSubmit()
		if err != nil {
			if isValidation(err) {
				a.status = "fix the highlighted fields"
			} else {
				a.status = err.Error()
			}
			return a, nil
		}
		a.status = "saving..."
		return a, a.submitCmd(w, rec)
	}

	if len(field.Options) > 0 {
		return a, nil
	}
	text := record.Text(w.Value(field.Name))
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if r := []rune(text); len(r) > 0 {
			_ = w.UpdateField(field.Name, string(r[:len(r)-1]))
		}
	case tea.KeySpace:
		_ = w.UpdateField(field.Name, text+" ")
	case tea.KeyRunes:
		_ = w.UpdateField(field.Name, text+string(m.Runes))
	}
	return a, nil
}

// cycleOption returns the option after (or before) current, starting from the first
// (or last) when current is not an option.
func cycleOption(options []string, current string, forward bool) string {
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	n := len(options)
	switch {
	case idx < 0 && forward:
		return options[0]
	case idx < 0:
		return options[n-1]
	case forward:
		return options[(idx+1)%n]
	default:
		return options[(idx+n-1)%n]
	}
}

func (a *App) renderForm() string {
	f := a.form
	if f == nil {
		return ""
	}
	w := f.w
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.form.Title))
	fmt.Fprintf(&b, "\nStep %d of %d: %s\n", w.Index()+1, w.Len(), w.Current().Title)
	step := w.Current()
	for i, field := range step.Fields {
		label := field.Title()
		if step.Required(field.Name) {
			label += " *"
		}
		value := record.Text(w.Value(field.Name))
		if len(field.Options) > 0 {
			value = "‹ " + value + " ›"
		}
		line := fmt.Sprintf("%-24s %s", label+":", value)
		if i == f.focus {
			line = selectedStyle.Render("▶ " + line + "_")
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if msg := w.FieldError(field.Name); msg != "" {
			b.WriteString("    " + errorStyle.Render(msg) + "\n")
		}
	}
	if err := w.SubmitErr(); err != nil {
		b.WriteString(errorStyle.Render(err.Error()) + "\n")
	}
	if w.Pending() {
		b.WriteString(dimStyle.Render("saving...") + "\n")
	}
	next := "[enter] Next"
	if w.OnLastStep() {
		next = "[enter] Submit"
	}
	back := "[esc] Back"
	if w.Index() == 0 {
		back = "[esc] Cancel"
	}
	b.WriteString(next + "  " + back + "  [tab] Field  [←/→] Option  [ctrl+x] Cancel")
	return modalStyle.Render(b.String())
}
