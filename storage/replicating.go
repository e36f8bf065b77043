package storage

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/seqnet/cidutil"
)

// NamedStore associates a Store with a stable backend name.
type NamedStore struct {
	Name  string
	Store Store
}

// Replicating writes to every backend and reads from the first that has the
// chunk.
//
// Writes require all returned CIDs to match (otherwise ErrCIDMismatch).
// Deletes go to every backend; ErrNotFound is returned only when no backend
// held the chunk.
type Replicating struct {
	Backends []NamedStore
}

var _ Store = (*Replicating)(nil)

// PutAll writes data to all backends and returns the per-backend CIDs.
func (r Replicating) PutAll(ctx context.Context, data []byte) (cid.Cid, map[string]cid.Cid, error) {
	want := cidutil.ForChunk(data)
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: Replicating has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		got, err := b.Store.Put(ctx, data)
		if err != nil {
			return cid.Undef, nil, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(ctx, data)
	return id, err
}

func (r Replicating) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		out, err := b.Store.Get(ctx, id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r Replicating) Has(ctx context.Context, id cid.Cid) (bool, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		ok, err := b.Store.Has(ctx, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (r Replicating) Delete(ctx context.Context, id cid.Cid) error {
	deleted := false
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		err := b.Store.Delete(ctx, id)
		switch {
		case err == nil:
			deleted = true
		case IsNotFound(err):
		default:
			return fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
