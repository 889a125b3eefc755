package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	archmem "dircore/internal/infra/archive/memory"
	"dircore/internal/infra/persistence/memory"
	"dircore/pkg/domain"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore(domain.MustParseDN("dc=example,dc=com"), nil)
	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		root := domain.Entry{DN: domain.MustParseDN("dc=example,dc=com")}
		root.PutAttribute("objectClass", "domain")
		if _, err := tx.AddEntry(root); err != nil {
			return err
		}
		child := domain.Entry{DN: domain.MustParseDN("ou=people,dc=example,dc=com")}
		child.PutAttribute("objectClass", "organizationalUnit")
		_, err := tx.AddEntry(child)
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestSnapshotAndRestore(t *testing.T) {
	source := seededStore(t)
	backend := archmem.New()
	a := NewArchiver(backend, source)
	a.nowFn = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	info, err := a.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if info.Key != "snapshots/20260829T120000.000Z.ldif" {
		t.Fatalf("key = %q", info.Key)
	}
	if info.Metadata["entries"] != "2" {
		t.Fatalf("metadata = %+v", info.Metadata)
	}
	if info.Metadata["suffix"] != "dc=example,dc=com" {
		t.Fatalf("metadata = %+v", info.Metadata)
	}

	entries, err := a.Restore(ctx, info.Key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("restored %d entries", len(entries))
	}
	if !entries[1].DN.Equal(domain.MustParseDN("ou=people,dc=example,dc=com")) {
		t.Fatalf("restored entries = %+v", entries)
	}
}

func TestListReturnsSnapshotsInOrder(t *testing.T) {
	source := seededStore(t)
	backend := archmem.New()
	a := NewArchiver(backend, source)

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		stamp := base.Add(time.Duration(i) * time.Minute)
		a.nowFn = func() time.Time { return stamp }
		if _, err := a.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}

	infos, err := a.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("snapshots = %d", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].Key >= infos[i].Key {
			t.Fatalf("keys out of order: %q before %q", infos[i-1].Key, infos[i].Key)
		}
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	a := NewArchiver(archmem.New(), seededStore(t))
	_, err := a.Restore(context.Background(), "snapshots/absent.ldif")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
