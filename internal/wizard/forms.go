package wizard

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"

	"bizdir/internal/gateway"
)

// FieldKind selects the format rule applied after presence checks.
type FieldKind int

const (
	KindText FieldKind = iota
	KindEmail
	KindPassword
	KindDigits
	KindURL
	KindChoice
)

// Field declares one form input and its validation rules.
type Field struct {
	Name      string
	Label     string
	Kind      FieldKind
	Required  bool
	MinLength int
	MaxLength int
	Choices   []string
}

// Schema is the declared field set for one wizard step. Unknown submitted
// keys are ignored; only declared fields survive into session state.
type Schema struct {
	Fields []Field
}

// Validation messages are fixed strings so tests and templates can rely on
// them.
const (
	msgRequired      = "This field is required"
	msgInvalidEmail  = "Enter a valid email address"
	msgInvalidURL    = "Enter a valid web address"
	msgDigitsOnly    = "Enter numbers only"
	msgInvalidChoice = "Select a valid option"
)

// Validate checks submitted form values against the schema, returning the
// cleaned values and any field errors. No remote calls happen here; remote
// checks belong to step finishers and side effects.
func (s Schema) Validate(form url.Values) (map[string]string, gateway.FieldErrors) {
	clean := make(map[string]string, len(s.Fields))
	errs := gateway.FieldErrors{}

	for _, f := range s.Fields {
		value := strings.TrimSpace(form.Get(f.Name))

		if value == "" {
			if f.Required {
				errs.Add(f.Name, msgRequired)
			}
			continue
		}

		if msg := f.check(value); msg != "" {
			errs.Add(f.Name, msg)
			continue
		}

		clean[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return clean, nil
}

func (f Field) check(value string) string {
	if f.MinLength > 0 || f.MaxLength > 0 {
		max := f.MaxLength
		if max == 0 {
			max = 1 << 16
		}
		if !govalidator.StringLength(value, strconv.Itoa(f.MinLength), strconv.Itoa(max)) {
			return lengthMessage(f.MinLength, f.MaxLength)
		}
	}

	switch f.Kind {
	case KindEmail:
		if !govalidator.IsEmail(value) {
			return msgInvalidEmail
		}
	case KindDigits:
		if !govalidator.IsNumeric(value) {
			return msgDigitsOnly
		}
	case KindURL:
		if !govalidator.IsURL(value) {
			return msgInvalidURL
		}
	case KindChoice:
		for _, c := range f.Choices {
			if value == c {
				return ""
			}
		}
		return msgInvalidChoice
	}
	return ""
}

func lengthMessage(min, max int) string {
	switch {
	case min > 0 && max > 0 && min == max:
		return "Must be exactly " + strconv.Itoa(min) + " characters"
	case min > 0 && max > 0:
		return "Must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters"
	case min > 0:
		return "Must be at least " + strconv.Itoa(min) + " characters"
	default:
		return "Must be at most " + strconv.Itoa(max) + " characters"
	}
}
