package wizard

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed forms.yaml
var formsYAML []byte

// Form is a named set of steps, e.g. the account data-entry dialog.
type Form struct {
	Kind  string
	Title string
	Steps []Step
}

// New opens a wizard for this form.
func (f Form) New(complete Completion) (*Wizard, error) {
	return New(f.Steps, complete)
}

type formsDoc struct {
	Forms map[string]formDoc `yaml:"forms"`
}

type formDoc struct {
	Title string    `yaml:"title"`
	Steps []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	Title  string              `yaml:"title"`
	Fields []fieldDoc          `yaml:"fields"`
	Rules  map[string][]string `yaml:"rules"`
}

type fieldDoc struct {
	Name    string   `yaml:"name"`
	Label   string   `yaml:"label"`
	Options []string `yaml:"options"`
}

var loadForms = sync.OnceValues(func() (map[string]Form, error) {
	return ParseForms(formsYAML)
})

// Forms returns the built-in form definitions keyed by kind (account, provider, manager).
func Forms() (map[string]Form, error) {
	return loadForms()
}

// Lookup returns one built-in form.
func Lookup(kind string) (Form, error) {
	forms, err := Forms()
	if err != nil {
		return Form{}, err
	}
	f, ok := forms[kind]
	if !ok {
		return Form{}, fmt.Errorf("unknown form %q", kind)
	}
	return f, nil
}

// ParseForms decodes a forms document and validates every form's steps.
func ParseForms(data []byte) (map[string]Form, error) {
	var doc formsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse forms: %w", err)
	}
	kinds := make([]string, 0, len(doc.Forms))
	for k := range doc.Forms {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	out := make(map[string]Form, len(doc.Forms))
	for _, kind := range kinds {
		fd := doc.Forms[kind]
		form := Form{Kind: kind, Title: fd.Title}
		for i, sd := range fd.Steps {
			step := Step{Title: sd.Title, Rules: map[string][]Rule{}}
			for _, f := range sd.Fields {
				step.Fields = append(step.Fields, Field{Name: f.Name, Label: f.Label, Options: f.Options})
			}
			for field, names := range sd.Rules {
				for _, name := range names {
					r, err := ParseRule(name)
					if err != nil {
						return nil, fmt.Errorf("form %s: %w", kind, &ConfigurationError{Step: i, Field: field, Reason: err.Error()})
					}
					step.Rules[field] = append(step.Rules[field], r)
				}
			}
			form.Steps = append(form.Steps, step)
		}
		if err := validateSteps(form.Steps); err != nil {
			return nil, fmt.Errorf("form %s: %w", kind, err)
		}
		out[kind] = form
	}
	return out, nil
}
