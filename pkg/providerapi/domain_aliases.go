package providerapi

import "dircore/pkg/domain"

// Naming and entry aliases.
type (
	// DN is an alias of domain.DN identifying a node in the tree.
	DN = domain.DN
	// RDN is an alias of domain.RDN, a single DN component.
	RDN = domain.RDN
	// Entry is an alias of domain.Entry.
	Entry = domain.Entry
	// Attribute is an alias of domain.Attribute.
	Attribute = domain.Attribute
	// ValueSet is an alias of domain.ValueSet, an ordered deduplicated set.
	ValueSet = domain.ValueSet
)

// Search aliases.
type (
	// SearchRequest is an alias of domain.SearchRequest.
	SearchRequest = domain.SearchRequest
	// Filter is an alias of domain.Filter, an equality predicate.
	Filter = domain.Filter
	// Scope is an alias of domain.Scope.
	Scope = domain.Scope
)

// Search scope aliases.
const (
	ScopeBase     = domain.ScopeBase
	ScopeOneLevel = domain.ScopeOneLevel
	ScopeSubtree  = domain.ScopeSubtree
)

// Error aliases recovered by providers during generation.
var (
	// ErrNoParent marks an entry at the hierarchy root.
	ErrNoParent = domain.ErrNoParent
)
