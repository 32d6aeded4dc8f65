// Package normalization maps loosely-typed strings (flags, environment
// variables, config values) onto canonical enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
// Keys are matched case-insensitively with surrounding whitespace ignored.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		normalizedKey := clean(k)
		normalized[normalizedKey] = v
		validKeys = append(validKeys, normalizedKey)
	}

	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:         name,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts raw to the enum type, falling back to the default when unrecognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, exists := n.validValues[clean(raw)]; exists {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError converts raw to the enum type or reports the valid options.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, exists := n.validValues[clean(raw)]; exists {
		return value, nil
	}

	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// IsKnown reports whether raw matches one of the registered keys.
func (n *Normalizer[T]) IsKnown(raw string) bool {
	_, exists := n.validValues[clean(raw)]
	return exists
}

// ValidKeys returns all valid normalized keys.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
