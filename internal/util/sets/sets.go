// Package sets provides a minimal generic set.
package sets

// Set is a hash set of comparable keys.
type Set[T comparable] map[T]struct{}

// New creates a set holding vals.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Insert adds v and reports whether it was not already present.
func (s Set[T]) Insert(v T) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has reports whether v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}
