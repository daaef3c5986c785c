// Package flags resolves feature flags from a YAML file at startup. Flags are
// configuration, not user state: the set is resolved once and consulted at
// step-applicability and progress-numbering decision points.
package flags

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Known flag names.
const (
	// SelectBusiness gates the business-type selection step. When off, flows
	// start at account creation and progress numbering shifts down by one.
	SelectBusiness = "ENROLMENT_SELECT_BUSINESS_ON"
)

// defaults is the single source of truth for known flags and their values
// when no flags file is configured.
var defaults = map[string]bool{
	SelectBusiness: true,
}

// Set is an immutable flag mapping. The zero value answers with defaults.
type Set struct {
	values map[string]bool
}

// Default returns a Set holding only the built-in defaults.
func Default() Set {
	return Set{}
}

// FromMap builds a Set from explicit values, for tests and wiring.
func FromMap(values map[string]bool) Set {
	copied := make(map[string]bool, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Set{values: copied}
}

// Load reads a YAML file of flag-name: bool pairs. A missing path returns the
// defaults.
func Load(path string) (Set, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read flags file: %w", err)
	}
	var values map[string]bool
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return Set{}, fmt.Errorf("parse flags file: %w", err)
	}
	return FromMap(values), nil
}

// Enabled reports whether the named flag is on, falling back to the built-in
// default for flags the file does not mention.
func (s Set) Enabled(name string) bool {
	if v, ok := s.values[name]; ok {
		return v
	}
	return defaults[name]
}
