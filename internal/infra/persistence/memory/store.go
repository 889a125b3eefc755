// Package memory provides the canonical in-memory implementation of the
// directory persistence store used for tests, ephemeral deployments, and as
// the transactional engine behind the durable backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dircore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Entry aliases domain.Entry for in-memory persistence operations.
	Entry = domain.Entry
	// Attribute aliases domain.Attribute.
	Attribute = domain.Attribute
	// DN aliases domain.DN.
	DN = domain.DN
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// RuleView aliases domain.RuleView providing read-only state.
	RuleView = domain.RuleView
)

// Snapshot captures a point-in-time clone of the store state keyed by
// normalized DN. It is the unit the durable backends persist.
type Snapshot struct {
	Suffix  string           `json:"suffix"`
	Entries map[string]Entry `json:"entries"`
}

// Store provides an in-memory transactional directory store rooted at a
// single suffix DN.
type Store struct {
	mu        sync.RWMutex
	suffix    DN
	entries   map[string]Entry
	engine    *RulesEngine
	sizeLimit int
}

// NewStore constructs an empty store rooted at suffix. A nil engine disables
// rule evaluation.
func NewStore(suffix DN, engine *RulesEngine) *Store {
	return &Store{
		suffix:  suffix,
		entries: make(map[string]Entry),
		engine:  engine,
	}
}

// Suffix returns the hierarchy root the store serves.
func (s *Store) Suffix() DN {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suffix
}

// SetSizeLimit bounds the number of entries a single search may return.
// Zero (the default) means unlimited.
func (s *Store) SetSizeLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizeLimit = n
}

// RulesEngine exposes the configured rules engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// ExportState returns a deep copy of the current state for persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Suffix: s.suffix.String(), Entries: cloneEntries(s.entries)}
}

// ImportState replaces the store state with the supplied snapshot.
func (s *Store) ImportState(snapshot Snapshot) error {
	suffix := s.suffix
	if snapshot.Suffix != "" {
		parsed, err := domain.ParseDN(snapshot.Suffix)
		if err != nil {
			return fmt.Errorf("snapshot suffix: %w", err)
		}
		suffix = parsed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suffix = suffix
	s.entries = cloneEntries(snapshot.Entries)
	if s.entries == nil {
		s.entries = make(map[string]Entry)
	}
	return nil
}

// Close releases resources; the memory store holds none.
func (s *Store) Close() error { return nil }

type transaction struct {
	store   *Store
	suffix  DN
	entries map[string]Entry
	changes []Change
}

// RunInTransaction executes fn within a transactional copy of the store
// state, evaluates registered rules over the pending changes, and commits
// unless a blocking violation or error occurred.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store:   s,
		suffix:  s.suffix,
		entries: cloneEntries(s.entries),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := view{suffix: tx.suffix, entries: tx.entries}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.entries = tx.entries
	return result, nil
}

// Snapshot returns a read-only view of the pending transaction state.
func (t *transaction) Snapshot() RuleView {
	return view{suffix: t.suffix, entries: t.entries}
}

// AddEntry inserts a new entry. The DN must be unoccupied and lie at or
// under the store suffix.
func (t *transaction) AddEntry(entry Entry) (Entry, error) {
	if entry.DN.IsZero() {
		return Entry{}, fmt.Errorf("add entry: empty DN")
	}
	if !entry.DN.Equal(t.suffix) && !entry.DN.IsDescendantOf(t.suffix) {
		return Entry{}, fmt.Errorf("add %s: outside suffix %s", entry.DN, t.suffix)
	}
	key := entry.DN.Normalize()
	if _, exists := t.entries[key]; exists {
		return Entry{}, fmt.Errorf("add %s: %w", entry.DN, domain.ErrEntryExists)
	}
	stored := entry.Clone()
	t.entries[key] = stored
	after := stored.Clone()
	t.changes = append(t.changes, Change{Action: domain.ActionAdd, DN: stored.DN, After: &after})
	return stored.Clone(), nil
}

// ModifyEntry applies mutator to a copy of the entry and stores the result.
func (t *transaction) ModifyEntry(dn DN, mutator func(*Entry) error) (Entry, error) {
	key := dn.Normalize()
	current, ok := t.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("modify %s: %w", dn, domain.ErrNoSuchEntry)
	}
	before := current.Clone()
	updated := current.Clone()
	if err := mutator(&updated); err != nil {
		return Entry{}, err
	}
	// The DN is the entry's identity; mutators may only touch attributes.
	updated.DN = current.DN
	t.entries[key] = updated
	after := updated.Clone()
	t.changes = append(t.changes, Change{Action: domain.ActionModify, DN: dn, Before: &before, After: &after})
	return updated.Clone(), nil
}

// DeleteEntry removes a leaf entry. Entries with children cannot be deleted.
func (t *transaction) DeleteEntry(dn DN) error {
	key := dn.Normalize()
	current, ok := t.entries[key]
	if !ok {
		return fmt.Errorf("delete %s: %w", dn, domain.ErrNoSuchEntry)
	}
	for _, e := range t.entries {
		if parent, ok := e.DN.Parent(); ok && parent.Equal(dn) {
			return fmt.Errorf("delete %s: entry has children", dn)
		}
	}
	before := current.Clone()
	delete(t.entries, key)
	t.changes = append(t.changes, Change{Action: domain.ActionDelete, DN: dn, Before: &before})
	return nil
}

// FindEntry looks up an entry within the transaction.
func (t *transaction) FindEntry(dn DN) (Entry, bool) {
	e, ok := t.entries[dn.Normalize()]
	if !ok {
		return Entry{}, false
	}
	return e.Clone(), true
}

type view struct {
	suffix  DN
	entries map[string]Entry
}

func (v view) Suffix() DN { return v.suffix }

func (v view) ListEntries() []Entry {
	return sortedEntries(v.entries)
}

func (v view) FindEntry(dn DN) (Entry, bool) {
	e, ok := v.entries[dn.Normalize()]
	if !ok {
		return Entry{}, false
	}
	return e.Clone(), true
}

// GetEntry returns a copy of the entry at dn.
func (s *Store) GetEntry(dn DN) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[dn.Normalize()]
	if !ok {
		return Entry{}, false
	}
	return e.Clone(), true
}

// ListEntries returns copies of all entries ordered by normalized DN.
func (s *Store) ListEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedEntries(s.entries)
}

// Search evaluates req against the current state. Results are ordered by
// normalized DN; callers must not rely on that ordering being stable across
// store implementations. Failures are reported as domain.QueryError values
// carrying a structured kind.
func (s *Store) Search(ctx context.Context, req domain.SearchRequest) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.QueryError{Kind: domain.QueryTimeout, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entries[req.Base.Normalize()]; !ok {
		return nil, &domain.QueryError{Kind: domain.QueryProtocol, Err: fmt.Errorf("search base %s: %w", req.Base, domain.ErrNoSuchEntry)}
	}

	var matches []Entry
	for _, e := range sortedEntries(s.entries) {
		if !inScope(e.DN, req.Base, req.Scope) {
			continue
		}
		if !req.Filter.Matches(e) {
			continue
		}
		if s.sizeLimit > 0 && len(matches) == s.sizeLimit {
			return nil, &domain.QueryError{Kind: domain.QuerySizeLimit, Err: fmt.Errorf("search exceeded size limit %d", s.sizeLimit)}
		}
		matches = append(matches, project(e, req.Attributes))
	}
	return matches, nil
}

func inScope(dn, base DN, scope domain.Scope) bool {
	switch scope {
	case domain.ScopeBase:
		return dn.Equal(base)
	case domain.ScopeOneLevel:
		parent, ok := dn.Parent()
		return ok && parent.Equal(base)
	case domain.ScopeSubtree:
		return dn.Equal(base) || dn.IsDescendantOf(base)
	default:
		return false
	}
}

// project trims an entry to the requested attributes. An empty request
// returns the full entry.
func project(e Entry, attrs []string) Entry {
	if len(attrs) == 0 {
		return e
	}
	out := Entry{DN: e.DN}
	for _, want := range attrs {
		for _, attr := range e.Attributes {
			if strings.EqualFold(attr.Name, want) {
				out.Attributes = append(out.Attributes, Attribute{Name: attr.Name, Values: append([]string(nil), attr.Values...)})
			}
		}
	}
	return out
}

func cloneEntries(entries map[string]Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for k, e := range entries {
		out[k] = e.Clone()
	}
	return out
}

func sortedEntries(entries map[string]Entry) []Entry {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, entries[k].Clone())
	}
	return out
}
