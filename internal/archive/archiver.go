package archive

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"dircore/internal/ldif"
	"dircore/pkg/domain"
)

const snapshotPrefix = "snapshots/"

// Source is the read surface an Archiver snapshots.
type Source interface {
	Suffix() domain.DN
	ListEntries() []domain.Entry
}

// Archiver writes LDIF snapshots of a directory source to an archive store.
type Archiver struct {
	store  Store
	source Source
	nowFn  func() time.Time
}

// NewArchiver wires a source to a backend store.
func NewArchiver(store Store, source Source) *Archiver {
	return &Archiver{store: store, source: source, nowFn: time.Now}
}

// Snapshot exports the full tree as one LDIF object keyed by UTC timestamp.
func (a *Archiver) Snapshot(ctx context.Context) (Info, error) {
	entries := a.source.ListEntries()
	data := ldif.Marshal(entries)
	key := snapshotPrefix + a.nowFn().UTC().Format("20060102T150405.000Z") + ".ldif"
	info, err := a.store.Put(ctx, key, bytes.NewReader(data), PutOptions{
		ContentType: "text/plain; charset=utf-8",
		Metadata: map[string]string{
			"suffix":  a.source.Suffix().String(),
			"entries": strconv.Itoa(len(entries)),
		},
	})
	if err != nil {
		return Info{}, fmt.Errorf("archive snapshot: %w", err)
	}
	return info, nil
}

// List returns stored snapshots ordered by key (and thus by timestamp).
func (a *Archiver) List(ctx context.Context) ([]Info, error) {
	return a.store.List(ctx, snapshotPrefix)
}

// Restore parses the entries held in the named snapshot.
func (a *Archiver) Restore(ctx context.Context, key string) ([]domain.Entry, error) {
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("archive restore %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	entries, err := ldif.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("archive restore %s: %w", key, err)
	}
	return entries, nil
}
