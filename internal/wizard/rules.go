package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jask/kilowatt/internal/record"
)

// RuleKind names a validation rule.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleEmail     RuleKind = "email"
	RuleNumeric   RuleKind = "numeric"
	RuleMinLength RuleKind = "min_length"
)

// Rule validates one field value.
type Rule struct {
	Kind RuleKind
	Min  int // RuleMinLength only
}

func Required() Rule       { return Rule{Kind: RuleRequired} }
func Email() Rule          { return Rule{Kind: RuleEmail} }
func Numeric() Rule        { return Rule{Kind: RuleNumeric} }
func MinLength(n int) Rule { return Rule{Kind: RuleMinLength, Min: n} }

func (r Rule) String() string {
	if r.Kind == RuleMinLength {
		return fmt.Sprintf("%s:%d", r.Kind, r.Min)
	}
	return string(r.Kind)
}

// ParseRule reads the textual form used in form definitions: "required", "email",
// "numeric" or "min_length:N".
func ParseRule(s string) (Rule, error) {
	kind, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch RuleKind(kind) {
	case RuleRequired, RuleEmail, RuleNumeric:
		if hasArg {
			return Rule{}, fmt.Errorf("rule %q takes no argument", kind)
		}
		return Rule{Kind: RuleKind(kind)}, nil
	case RuleMinLength:
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n <= 0 {
			return Rule{}, fmt.Errorf("rule %q needs a positive length", s)
		}
		return MinLength(n), nil
	default:
		return Rule{}, fmt.Errorf("unknown rule %q", s)
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// check returns the message for a failing value, "" when it passes. Blank values are
// handled by the caller.
func (r Rule) check(label string, v any) string {
	text := strings.TrimSpace(record.Text(v))
	switch r.Kind {
	case RuleRequired:
		if record.IsBlank(v) {
			return label + " is required"
		}
	case RuleEmail:
		if !emailPattern.MatchString(text) {
			return label + " must be a valid email address"
		}
	case RuleNumeric:
		if _, ok := record.Number(v); !ok {
			return label + " must be a number"
		}
	case RuleMinLength:
		if utf8.RuneCountInString(text) < r.Min {
			return fmt.Sprintf("%s must be at least %d characters", label, r.Min)
		}
	}
	return ""
}

func (r Rule) valid() error {
	switch r.Kind {
	case RuleRequired, RuleEmail, RuleNumeric:
		return nil
	case RuleMinLength:
		if r.Min <= 0 {
			return fmt.Errorf("min_length needs a positive length, got %d", r.Min)
		}
		return nil
	}
	return fmt.Errorf("unknown rule %q", r.Kind)
}
