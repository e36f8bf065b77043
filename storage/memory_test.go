package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/storage/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		return storage.NewMemory()
	})
}

func TestReplicating_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		return storage.Replicating{Backends: []storage.NamedStore{
			{Name: "a", Store: storage.NewMemory()},
			{Name: "b", Store: storage.NewMemory()},
		}}
	})
}

func TestReplicating_WritesEveryBackend(t *testing.T) {
	ctx := context.Background()
	a, b := storage.NewMemory(), storage.NewMemory()
	r := storage.Replicating{Backends: []storage.NamedStore{{Name: "a", Store: a}, {Name: "b", Store: b}}}

	id, per, err := r.PutAll(ctx, []byte("replicated"))
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if per["a"] != id || per["b"] != id {
		t.Fatalf("per-backend CIDs mismatch: %v", per)
	}
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("expected one chunk in each backend, got %d and %d", a.Len(), b.Len())
	}
}

func TestReplicating_ReadFallsBack(t *testing.T) {
	ctx := context.Background()
	empty, full := storage.NewMemory(), storage.NewMemory()
	id, err := full.Put(ctx, []byte("only here"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	r := storage.Replicating{Backends: []storage.NamedStore{{Name: "empty", Store: empty}, {Name: "full", Store: full}}}
	got, err := r.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "only here" {
		t.Fatalf("unexpected bytes %q", got)
	}
}

func TestReplicating_NoBackends(t *testing.T) {
	_, err := storage.Replicating{}.Put(context.Background(), []byte("x"))
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestErrorHelpers(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()
	id, err := m.Put(ctx, []byte("chunk"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = m.Get(ctx, id)
	if !storage.IsNotFound(fmt.Errorf("load: %w", err)) || storage.IsCorrupt(err) {
		t.Fatalf("missing chunk: got %v", err)
	}
	for _, err := range []error{storage.ErrCIDMismatch, fmt.Errorf("put: %w", storage.ErrImmutable)} {
		if !storage.IsCorrupt(err) || storage.IsNotFound(err) {
			t.Fatalf("%v: expected corrupt only", err)
		}
	}
	if storage.IsCorrupt(storage.ErrInvalidCID) {
		t.Fatalf("invalid cid is not corruption")
	}
}
