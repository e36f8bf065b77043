package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/xorname"
)

var ErrMissingStore = errors.New("engine: missing chunk store")

type record struct {
	owner       sequence.Owner
	perms       sequence.Permissions
	entries     []cid.Cid
	ownersIndex uint64
	permsIndex  uint64
}

// Engine executes Sequence requests. It is safe for concurrent use.
type Engine struct {
	store storage.Store

	mu   sync.RWMutex
	seqs map[sequence.Address]*record
	refs map[cid.Cid]int
}

// New returns an Engine persisting entries in store.
func New(store storage.Store) (*Engine, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	return &Engine{
		store: store,
		seqs:  make(map[sequence.Address]*record),
		refs:  make(map[cid.Cid]int),
	}, nil
}

// Authorize is the per-kind gate applied before execution. Public reads are
// open to everyone; private reads and writes need an identified requester.
func (e *Engine) Authorize(ctx context.Context, kind messaging.AuthorisationKind, requester keys.PublicKey, dst xorname.Name) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch kind {
	case messaging.PublicRead:
		return nil
	case messaging.PrivateRead, messaging.Write:
		if requester.IsZero() {
			return messaging.NewError(messaging.KindAccessDenied, fmt.Sprintf("%s on %s requires an identified requester", kind, dst.Short()))
		}
		return nil
	default:
		return messaging.NewError(messaging.KindAccessDenied, fmt.Sprintf("unknown authorisation kind %d", uint8(kind)))
	}
}

// Len returns the number of Sequences held.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.seqs)
}

func (e *Engine) lookup(addr sequence.Address) (*record, error) {
	rec, ok := e.seqs[addr]
	if !ok {
		return nil, messaging.NewError(messaging.KindNoSuchData, addr.String())
	}
	return rec, nil
}

func (r *record) isOwner(k keys.PublicKey) bool {
	return !k.IsZero() && r.owner.PublicKey == k
}

func (r *record) canRead(addr sequence.Address, k keys.PublicKey) bool {
	if addr.IsPub() || r.isOwner(k) {
		return true
	}
	p, ok := r.perms.(sequence.PrivPermissions)
	return ok && p.CanRead(k)
}

func (r *record) canAppend(k keys.PublicKey) bool {
	if r.isOwner(k) {
		return true
	}
	switch p := r.perms.(type) {
	case sequence.PubPermissions:
		return p.CanAppend(k)
	case sequence.PrivPermissions:
		return p.CanAppend(k)
	default:
		return false
	}
}

func (r *record) isAdmin(k keys.PublicKey) bool {
	if r.isOwner(k) {
		return true
	}
	switch p := r.perms.(type) {
	case sequence.PubPermissions:
		return p.IsAdmin(k)
	case sequence.PrivPermissions:
		return p.IsAdmin(k)
	default:
		return false
	}
}

func accessDenied(op string, addr sequence.Address) error {
	return messaging.NewError(messaging.KindAccessDenied, fmt.Sprintf("%s not permitted on %s", op, addr))
}

func internal(msg string, err error) error {
	return messaging.WrapError(messaging.KindInternal, msg, err)
}

func emptyPermissions(kind sequence.Kind) sequence.Permissions {
	if kind == sequence.Public {
		return sequence.PubPermissions{Entries: map[sequence.User]sequence.PubUserPermissions{}}
	}
	return sequence.PrivPermissions{Entries: map[keys.PublicKey]sequence.PrivUserPermissions{}}
}

// fetch loads the chunks behind ids, in order.
func (e *Engine) fetch(ctx context.Context, ids []cid.Cid) ([]sequence.Entry, error) {
	out := make([]sequence.Entry, 0, len(ids))
	for _, id := range ids {
		b, err := e.store.Get(ctx, id)
		switch {
		case err == nil:
		case storage.IsNotFound(err):
			return nil, internal("entry "+id.String()+" missing from store", err)
		case storage.IsCorrupt(err):
			return nil, internal("entry "+id.String()+" failed verification", err)
		default:
			return nil, internal("load entry "+id.String(), err)
		}
		out = append(out, sequence.Entry(b))
	}
	return out, nil
}
