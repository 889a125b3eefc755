package domain

import (
	"context"
	"strings"
)

// Scope bounds how far below the base DN a search descends.
type Scope string

// Supported search scopes.
const (
	// ScopeBase matches only the base entry itself.
	ScopeBase Scope = "base"
	// ScopeOneLevel matches the immediate children of the base, excluding
	// the base itself and deeper descendants.
	ScopeOneLevel Scope = "one"
	// ScopeSubtree matches the base and all of its descendants.
	ScopeSubtree Scope = "sub"
)

// Filter is an equality predicate on a single attribute. The empty Filter
// matches every entry.
type Filter struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// ClassFilter builds the class-membership predicate used by virtual attribute
// providers: objectClass equals the given class name.
func ClassFilter(class string) Filter {
	return Filter{Attribute: AttrObjectClass, Value: class}
}

// IsEmpty reports whether the filter matches unconditionally.
func (f Filter) IsEmpty() bool { return f.Attribute == "" }

// Matches evaluates the predicate against an entry. Attribute names and
// values compare case-insensitively, matching directory equality semantics.
func (f Filter) Matches(e Entry) bool {
	if f.IsEmpty() {
		return true
	}
	for _, v := range e.GetValues(f.Attribute) {
		if strings.EqualFold(v, f.Value) {
			return true
		}
	}
	return false
}

// String renders the filter in parenthesized attribute=value form.
func (f Filter) String() string {
	if f.IsEmpty() {
		return "(objectClass=*)"
	}
	return "(" + f.Attribute + "=" + f.Value + ")"
}

// SearchRequest describes a single directory search: where to start, how deep
// to go, which entries qualify, and which attributes to return. Requests are
// immutable values built fresh per operation.
type SearchRequest struct {
	Base       DN       `json:"base"`
	Scope      Scope    `json:"scope"`
	Filter     Filter   `json:"filter"`
	Attributes []string `json:"attributes,omitempty"`
}

// Searcher executes directory searches. Implementations must be safe for
// concurrent use; result ordering is implementation-defined and callers must
// not assume it is stable across calls.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Entry, error)
}
