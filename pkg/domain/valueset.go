package domain

// ValueSet is an ordered string set: insertion order is preserved and
// duplicates are collapsed on first occurrence. The zero value is empty and
// ready to use.
type ValueSet struct {
	seen   map[string]struct{}
	values []string
}

// NewValueSet builds a set seeded with the given values in order.
func NewValueSet(values ...string) ValueSet {
	var s ValueSet
	s.AddAll(values)
	return s
}

// Add inserts v unless an equal string is already present. It reports whether
// the value was newly added.
func (s *ValueSet) Add(v string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// AddAll inserts each value in order, skipping ones already present.
func (s *ValueSet) AddAll(values []string) {
	for _, v := range values {
		s.Add(v)
	}
}

// Contains reports whether v is present.
func (s ValueSet) Contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// Len returns the number of distinct values.
func (s ValueSet) Len() int { return len(s.values) }

// Values returns the distinct values in first-occurrence order. The slice is
// a copy; mutating it does not affect the set.
func (s ValueSet) Values() []string {
	if len(s.values) == 0 {
		return nil
	}
	return append([]string(nil), s.values...)
}
