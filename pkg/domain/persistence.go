package domain

import "context"

// Transaction exposes the entry mutations a persistence implementation must
// support within an atomic scope.
type Transaction interface {
	Snapshot() RuleView
	AddEntry(Entry) (Entry, error)
	ModifyEntry(dn DN, mutator func(*Entry) error) (Entry, error)
	DeleteEntry(dn DN) error
	FindEntry(dn DN) (Entry, bool)
}

// PersistentStore is a minimal abstraction over durable directory backends.
// It combines the transactional write surface with the read-side search
// capability consumed by virtual attribute providers.
type PersistentStore interface {
	Searcher
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	GetEntry(dn DN) (Entry, bool)
	ListEntries() []Entry
	Suffix() DN
	Close() error
}
