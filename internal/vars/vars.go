// Package vars is the flat key/value registry scripts use for text
// substitution. One store per interpreter; never persisted.
package vars

import (
	"fmt"
	"strings"
)

// Store maps case-sensitive variable names to values. Last write wins.
type Store struct {
	values map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// Set stores a value, overwriting any previous one.
func (s *Store) Set(name string, value any) {
	s.values[name] = value
}

// Get returns the stored value and whether it exists.
func (s *Store) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of stored variables.
func (s *Store) Len() int {
	return len(s.values)
}

// Substitute resolves text of the exact form "${name}" to the stored value,
// rendered as a string. Any other text, including partial interpolations,
// passes through unchanged. A whole-string reference to a missing variable
// is an error.
func (s *Store) Substitute(text string) (string, error) {
	if !strings.HasPrefix(text, "${") || !strings.HasSuffix(text, "}") {
		return text, nil
	}
	name := text[2 : len(text)-1]
	v, ok := s.values[name]
	if !ok {
		return "", fmt.Errorf("variable %q not set", name)
	}
	return fmt.Sprintf("%v", v), nil
}
