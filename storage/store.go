// Package storage holds the content-addressed chunk stores that back
// Sequence entries.
package storage

import (
	"context"

	"github.com/ipfs/go-cid"
)

// Store is a content-addressed chunk store.
//
// Contract:
// - Put MUST be idempotent and return cidutil.ForChunk(bytes).
// - Stored chunks MUST be immutable.
// - Get MUST return ErrNotFound when the CID is absent, and MUST verify the
//   bytes it returns against the CID.
// - Delete of an absent chunk MUST return ErrNotFound.
type Store interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
	Has(ctx context.Context, id cid.Cid) (bool, error)
	Delete(ctx context.Context, id cid.Cid) error
}
