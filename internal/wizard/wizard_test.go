package wizard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jask/kilowatt/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func twoSteps() []Step {
	return []Step{
		{
			Title:  "Contact",
			Fields: []Field{{Name: "email", Label: "Email"}, {Name: "name", Label: "Name"}},
			Rules: map[string][]Rule{
				"email": {Required(), Email()},
				"name":  {Required(), MinLength(2)},
			},
		},
		{
			Title:  "Details",
			Fields: []Field{{Name: "usage", Label: "Usage"}, {Name: "notes"}},
			Rules:  map[string][]Rule{"usage": {Numeric()}},
		},
	}
}

type recorder struct {
	mu    sync.Mutex
	calls []record.Record
	err   error
}

func (r *recorder) complete(_ context.Context, rec record.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rec)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newWizard(t *testing.T, rec *recorder) *Wizard {
	t.Helper()
	w, err := New(twoSteps(), rec.complete)
	require.NoError(t, err)
	return w
}

func TestEmailRuleBlocksThenAllowsAdvance(t *testing.T) {
	w := newWizard(t, &recorder{})
	require.NoError(t, w.UpdateField("name", "ABC"))
	require.NoError(t, w.UpdateField("email", "not-an-email"))

	err := w.Advance()
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 0, w.Index())
	require.NotEmpty(t, w.FieldError("email"))

	require.NoError(t, w.UpdateField("email", "a@b.com"))
	require.Empty(t, w.FieldError("email"), "editing clears the field error")
	require.NoError(t, w.Advance())
	require.Equal(t, 1, w.Index())
}

func TestAdvanceOnValidStepIncrementsByOne(t *testing.T) {
	w := newWizard(t, &recorder{})
	require.NoError(t, w.UpdateField("email", "ops@kilowatt.io"))
	require.NoError(t, w.UpdateField("name", "Tech Solutions"))
	before := w.Index()
	require.NoError(t, w.Advance())
	require.Equal(t, before+1, w.Index())
	require.Empty(t, w.Errors())
}

func TestAdvanceReportsExactlyFailingFields(t *testing.T) {
	w := newWizard(t, &recorder{})
	require.NoError(t, w.UpdateField("name", "X"))

	err := w.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 0, verr.Step)
	require.Equal(t, 0, w.Index())

	errs := w.Errors()
	require.Len(t, errs, 2)
	require.Equal(t, "Email is required", errs["email"])
	require.Equal(t, "Name must be at least 2 characters", errs["name"])
	require.Equal(t, errs, verr.Fields)
}

func TestOptionalFieldSkipsRulesWhenBlank(t *testing.T) {
	w := newWizard(t, &recorder{})
	require.NoError(t, w.UpdateField("email", "a@b.com"))
	require.NoError(t, w.UpdateField("name", "AB"))
	require.NoError(t, w.Advance())

	require.ErrorIs(t, w.Advance(), ErrLastStep, "blank optional numeric field passes")
	require.NoError(t, w.UpdateField("usage", "lots"))
	require.ErrorIs(t, w.Advance(), ErrValidation)
	require.Equal(t, "Usage must be a number", w.FieldError("usage"))
	require.Equal(t, 1, w.Index())
}

func TestRetreatThenAdvanceKeepsDraft(t *testing.T) {
	w := newWizard(t, &recorder{})
	require.NoError(t, w.UpdateField("email", "a@b.com"))
	require.NoError(t, w.UpdateField("name", "ABC"))
	require.NoError(t, w.Advance())
	require.NoError(t, w.UpdateField("usage", 1500))
	before := w.Draft()

	require.NoError(t, w.Retreat())
	require.Equal(t, 0, w.Index())
	require.NoError(t, w.Advance())
	require.Equal(t, before, w.Draft())
}

func TestRetreatAtFirstStepIsNoop(t *testing.T) {
	w := newWizard(t, &recorder{})
	require.NoError(t, w.Retreat())
	require.Equal(t, 0, w.Index())
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	rec := &recorder{}
	w := newWizard(t, rec)
	require.ErrorIs(t, w.Submit(context.Background()), ErrNotLastStep)
	require.Zero(t, rec.count())
}

func advanceToLast(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.UpdateField("email", "a@b.com"))
	require.NoError(t, w.UpdateField("name", "ABC"))
	require.NoError(t, w.Advance())
	require.True(t, w.OnLastStep())
}

func TestSubmitSuccessHandsOffDraftAndResets(t *testing.T) {
	rec := &recorder{}
	w := newWizard(t, rec)
	advanceToLast(t, w)
	require.NoError(t, w.UpdateField("notes", "call Friday"))

	require.NoError(t, w.Submit(context.Background()))
	require.Equal(t, 1, rec.count())
	require.Equal(t, record.Record{"email": "a@b.com", "name": "ABC", "notes": "call Friday"}, rec.calls[0])

	require.Equal(t, 0, w.Index())
	require.Empty(t, w.Draft())
	require.Equal(t, StatusSubmitted, w.Status())
	require.ErrorIs(t, w.Advance(), ErrClosed)
}

func TestSubmitFailureKeepsStateAndAllowsRetry(t *testing.T) {
	rec := &recorder{err: errors.New("backend unavailable")}
	w := newWizard(t, rec)
	advanceToLast(t, w)
	draft := w.Draft()

	err := w.Submit(context.Background())
	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	require.EqualError(t, serr.Err, "backend unavailable")
	require.Equal(t, 1, w.Index())
	require.Equal(t, draft, w.Draft())
	require.Equal(t, err, w.SubmitErr())
	require.Equal(t, StatusActive, w.Status())

	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()
	require.NoError(t, w.Submit(context.Background()))
	require.Equal(t, 2, rec.count())
	require.Nil(t, w.SubmitErr())
}

func TestSubmitRevalidatesLastStep(t *testing.T) {
	rec := &recorder{}
	w := newWizard(t, rec)
	advanceToLast(t, w)
	require.NoError(t, w.UpdateField("usage", "abc"))
	require.ErrorIs(t, w.Submit(context.Background()), ErrValidation)
	require.Zero(t, rec.count())
}

func TestCancelNeverCallsCompletion(t *testing.T) {
	for step := 0; step < 2; step++ {
		rec := &recorder{}
		w := newWizard(t, rec)
		if step == 1 {
			advanceToLast(t, w)
		} else {
			require.NoError(t, w.UpdateField("email", "bad"))
			require.Error(t, w.Advance())
		}
		require.NoError(t, w.Cancel())
		require.Equal(t, StatusCancelled, w.Status())
		require.Empty(t, w.Draft())
		require.Empty(t, w.Errors())
		require.ErrorIs(t, w.Submit(context.Background()), ErrClosed)
		require.Zero(t, rec.count())
	}
}

func TestPendingSubmitRejectsReentry(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	w, err := New(twoSteps(), func(ctx context.Context, _ record.Record) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	})
	require.NoError(t, err)
	advanceToLast(t, w)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-started

	require.True(t, w.Pending())
	require.ErrorIs(t, w.Submit(context.Background()), ErrSubmitPending)
	require.ErrorIs(t, w.Cancel(), ErrSubmitPending)
	require.ErrorIs(t, w.UpdateField("notes", "x"), ErrSubmitPending)
	require.ErrorIs(t, w.Retreat(), ErrSubmitPending)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, int32(1), calls.Load())
	require.False(t, w.Pending())
}

func TestBeginFinishSubmit(t *testing.T) {
	rec := &recorder{}
	w := newWizard(t, rec)
	require.ErrorIs(t, w.FinishSubmit(nil), ErrNotPending)
	advanceToLast(t, w)

	snap, err := w.BeginSubmit()
	require.NoError(t, err)
	require.Equal(t, "ABC", snap.Text("name"))
	_, err = w.BeginSubmit()
	require.ErrorIs(t, err, ErrSubmitPending)

	cbErr := w.Complete(context.Background(), snap)
	require.NoError(t, w.FinishSubmit(cbErr))
	require.Equal(t, 1, rec.count())
	require.Equal(t, StatusSubmitted, w.Status())
}

func TestConfigurationErrors(t *testing.T) {
	noop := func(context.Context, record.Record) error { return nil }
	cases := map[string][]Step{
		"no steps":     nil,
		"empty name":   {{Fields: []Field{{Name: ""}}}},
		"unknown rule": {{Fields: []Field{{Name: "a"}}, Rules: map[string][]Rule{"a": {{Kind: "phone"}}}}},
		"bad min":      {{Fields: []Field{{Name: "a"}}, Rules: map[string][]Rule{"a": {MinLength(0)}}}},
		"undeclared":   {{Fields: []Field{{Name: "a"}}, Rules: map[string][]Rule{"b": {Required()}}}},
		"duplicate":    {{Fields: []Field{{Name: "a"}}}, {Fields: []Field{{Name: "a"}}}},
	}
	for name, steps := range cases {
		_, err := New(steps, noop)
		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr, name)
	}

	_, err := New(twoSteps(), nil)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)

	require.Panics(t, func() { MustNew(nil, noop) })
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("min_length:3")
	require.NoError(t, err)
	require.Equal(t, MinLength(3), r)
	require.Equal(t, "min_length:3", r.String())

	r, err = ParseRule(" email ")
	require.NoError(t, err)
	require.Equal(t, Email(), r)

	for _, bad := range []string{"phone", "min_length", "min_length:-1", "required:1"} {
		_, err := ParseRule(bad)
		require.Error(t, err, bad)
	}
}
