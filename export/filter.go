package export

import "strings"

// Predicate drops rows by substring containment at a fixed column
// position. Position is a 0-based index into the resolved header order, so
// a predicate always refers to the same semantic column regardless of how
// many dynamic columns a given record carries.
type Predicate struct {
	Position  int
	Substring string
}

// Contains creates a predicate that drops rows whose field at the given
// header position contains the substring (case-sensitive).
func Contains(position int, substring string) Predicate {
	return Predicate{Position: position, Substring: substring}
}

// matches reports whether the predicate fires for the projected fields.
// An empty or absent field never matches, and a position beyond the header
// width never matches.
func (p Predicate) matches(fields []string) bool {
	if p.Position < 0 || p.Position >= len(fields) {
		return false
	}
	v := fields[p.Position]
	if v == "" {
		return false
	}
	return strings.Contains(v, p.Substring)
}

// FilterSet evaluates a list of predicates against projected rows.
type FilterSet struct {
	Predicates []Predicate
}

// NewFilterSet creates a filter set from the given predicates.
func NewFilterSet(predicates ...Predicate) *FilterSet {
	return &FilterSet{Predicates: predicates}
}

// ShouldSkip reports whether the projected row matches ANY predicate and
// must therefore be excluded from the output.
func (fs *FilterSet) ShouldSkip(fields []string) bool {
	if fs == nil {
		return false
	}
	for _, p := range fs.Predicates {
		if p.matches(fields) {
			return true
		}
	}
	return false
}
