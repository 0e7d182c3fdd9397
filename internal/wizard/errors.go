package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("wizard: validation failed")
	// ErrLastStep is returned by Advance on the final step; use Submit there.
	ErrLastStep = errors.New("wizard: already at last step")
	// ErrNotLastStep is returned by Submit before the final step.
	ErrNotLastStep = errors.New("wizard: submit is only available on the last step")
	// ErrSubmitPending rejects operations while the completion callback is running.
	ErrSubmitPending = errors.New("wizard: submit in progress")
	// ErrNotPending is returned by FinishSubmit without a matching BeginSubmit.
	ErrNotPending = errors.New("wizard: no submit in progress")
	// ErrClosed is returned once the wizard is submitted or cancelled.
	ErrClosed = errors.New("wizard: closed")
)

// ValidationError carries the per-field messages of a failed step.
type ValidationError struct {
	Step   int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Sprintf("wizard: step %d has invalid fields: %s", e.Step+1, strings.Join(names, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SubmissionError wraps a failed completion callback. The draft is kept for a retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "submission failed: " + e.Err.Error() }

func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfigurationError reports a malformed step definition.
type ConfigurationError struct {
	Step   int // -1 when not tied to a step
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("wizard config")
	if e.Step >= 0 {
		fmt.Fprintf(&b, ": step %d", e.Step+1)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}
