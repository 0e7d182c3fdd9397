// Package wizard drives multi-step data-entry forms: per-step validation gates forward
// movement, the draft survives back-and-forth navigation, and the last step hands the
// finished record to a completion callback.
package wizard

import (
	"context"
	"strconv"
	"sync"

	"github.com/jask/kilowatt/internal/record"
)

// Field is one input of a step.
type Field struct {
	Name    string
	Label   string
	Options []string // fixed choices, cycled by the UI
}

// Title returns Label, falling back to Name.
func (f Field) Title() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Step is one page of the form. Rules are keyed by field name and only apply while the
// wizard validates this step.
type Step struct {
	Title  string
	Fields []Field
	Rules  map[string][]Rule
}

// Required reports whether field carries the required rule on this step.
func (s Step) Required(field string) bool {
	for _, r := range s.Rules[field] {
		if r.Kind == RuleRequired {
			return true
		}
	}
	return false
}

// Completion receives the finished record. A non-nil error keeps the wizard open.
type Completion func(ctx context.Context, rec record.Record) error

// Status is the lifecycle state of a wizard.
type Status int

const (
	StatusActive Status = iota
	StatusSubmitted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusCancelled:
		return "cancelled"
	default:
		return "active"
	}
}

// Wizard is the state of one open data-entry dialog. A wizard is single use: after
// a successful submit or a cancel, open a new one.
type Wizard struct {
	mu        sync.Mutex
	steps     []Step
	complete  Completion
	index     int
	draft     record.Record
	errs      map[string]string
	submitErr error
	pending   bool
	status    Status
}

// New validates the step definitions and returns a wizard on step 0 with an empty draft.
func New(steps []Step, complete Completion) (*Wizard, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}
	if complete == nil {
		return nil, &ConfigurationError{Step: -1, Reason: "completion callback is nil"}
	}
	return &Wizard{
		steps:    steps,
		complete: complete,
		draft:    record.Record{},
		errs:     map[string]string{},
	}, nil
}

// MustNew is New for definitions known at compile time.
func MustNew(steps []Step, complete Completion) *Wizard {
	w, err := New(steps, complete)
	if err != nil {
		panic(err)
	}
	return w
}

func validateSteps(steps []Step) error {
	if len(steps) == 0 {
		return &ConfigurationError{Step: -1, Reason: "no steps"}
	}
	seen := map[string]int{}
	for i, s := range steps {
		declared := map[string]bool{}
		for _, f := range s.Fields {
			if f.Name == "" {
				return &ConfigurationError{Step: i, Reason: "field with empty name"}
			}
			if prev, ok := seen[f.Name]; ok {
				return &ConfigurationError{Step: i, Field: f.Name, Reason: "already declared on step " + strconv.Itoa(prev+1)}
			}
			seen[f.Name] = i
			declared[f.Name] = true
		}
		for name, rules := range s.Rules {
			if !declared[name] {
				return &ConfigurationError{Step: i, Field: name, Reason: "rule for a field not declared on this step"}
			}
			for _, r := range rules {
				if err := r.valid(); err != nil {
					return &ConfigurationError{Step: i, Field: name, Reason: err.Error()}
				}
			}
		}
	}
	return nil
}

// Advance validates the current step and moves forward one step. An invalid step stays
// put and returns a *ValidationError; the last step returns ErrLastStep.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	if err := w.validateLocked(); err != nil {
		return err
	}
	if w.index == len(w.steps)-1 {
		return ErrLastStep
	}
	w.index++
	return nil
}

// Retreat moves back one step without validating. It is a no-op on step 0.
func (w *Wizard) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	if w.index > 0 {
		w.index--
	}
	return nil
}

// UpdateField sets a draft value and clears that field's error until the next
// validation attempt.
func (w *Wizard) UpdateField(name string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	w.draft[name] = value
	delete(w.errs, name)
	return nil
}

// Submit validates the last step and awaits the completion callback. On success the
// wizard resets to an empty step 0 and becomes StatusSubmitted. On callback failure the
// draft is kept and a *SubmissionError is returned; Submit may be called again.
func (w *Wizard) Submit(ctx context.Context) error {
	snapshot, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	return w.FinishSubmit(w.complete(ctx, snapshot))
}

// BeginSubmit performs the synchronous half of Submit: it validates, marks the wizard
// pending and returns a copy of the draft for the callback.
func (w *Wizard) BeginSubmit() (record.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return nil, err
	}
	if w.index != len(w.steps)-1 {
		return nil, ErrNotLastStep
	}
	if err := w.validateLocked(); err != nil {
		return nil, err
	}
	w.pending = true
	w.submitErr = nil
	return w.draft.Clone(), nil
}

// Complete runs the completion callback on rec. It does not touch wizard state.
func (w *Wizard) Complete(ctx context.Context, rec record.Record) error {
	return w.complete(ctx, rec)
}

// FinishSubmit records the callback result of a BeginSubmit.
func (w *Wizard) FinishSubmit(callbackErr error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending {
		return ErrNotPending
	}
	w.pending = false
	if callbackErr != nil {
		w.submitErr = &SubmissionError{Err: callbackErr}
		return w.submitErr
	}
	w.resetLocked()
	w.status = StatusSubmitted
	return nil
}

// Cancel discards the draft. It is refused while a submit is pending.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.usable(); err != nil {
		return err
	}
	w.resetLocked()
	w.status = StatusCancelled
	return nil
}

func (w *Wizard) usable() error {
	if w.status != StatusActive {
		return ErrClosed
	}
	if w.pending {
		return ErrSubmitPending
	}
	return nil
}

func (w *Wizard) resetLocked() {
	w.index = 0
	w.draft = record.Record{}
	w.errs = map[string]string{}
	w.submitErr = nil
}

// validateLocked checks the current step, replacing the error entries of its fields.
func (w *Wizard) validateLocked() error {
	step := w.steps[w.index]
	failed := map[string]string{}
	for _, f := range step.Fields {
		delete(w.errs, f.Name)
		if msg := checkField(f, step.Rules[f.Name], w.draft[f.Name]); msg != "" {
			failed[f.Name] = msg
		}
	}
	if len(failed) == 0 {
		return nil
	}
	for name, msg := range failed {
		w.errs[name] = msg
	}
	return &ValidationError{Step: w.index, Fields: failed}
}

func checkField(f Field, rules []Rule, v any) string {
	required := false
	for _, r := range rules {
		if r.Kind == RuleRequired {
			required = true
		}
	}
	if record.IsBlank(v) {
		if required {
			return Required().check(f.Title(), v)
		}
		return ""
	}
	for _, r := range rules {
		if msg := r.check(f.Title(), v); msg != "" {
			return msg
		}
	}
	return ""
}

// Index returns the current step index.
func (w *Wizard) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// Len returns the number of steps.
func (w *Wizard) Len() int { return len(w.steps) }

// Current returns the current step definition.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.index]
}

// Steps returns the step definitions.
func (w *Wizard) Steps() []Step { return w.steps }

// OnLastStep reports whether Submit is available.
func (w *Wizard) OnLastStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index == len(w.steps)-1
}

// Draft returns a copy of the record being built.
func (w *Wizard) Draft() record.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Value returns one draft value.
func (w *Wizard) Value(name string) any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft[name]
}

// Errors returns a copy of the field errors.
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.errs))
	for k, v := range w.errs {
		out[k] = v
	}
	return out
}

// FieldError returns the error message of one field.
func (w *Wizard) FieldError(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs[name]
}

// SubmitErr returns the last submission failure, nil after a retry starts.
func (w *Wizard) SubmitErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitErr
}

// Pending reports whether the completion callback is running.
func (w *Wizard) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Status returns the lifecycle state.
func (w *Wizard) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}
