package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/storage"
)

// Write executes op on behalf of requester.
func (e *Engine) Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch v := op.(type) {
	case messaging.NewSequence:
		return e.create(ctx, requester, v.Data)
	case messaging.EditSequence:
		return e.appendEntry(ctx, requester, v.Op)
	case messaging.DeleteSequence:
		return e.delete(ctx, requester, v.Address)
	case messaging.SetSequenceOwner:
		return e.setOwner(requester, v.Op)
	case messaging.SetPubPermissions:
		return e.setPermissions(requester, v.Op.Address, v.Op.Payload)
	case messaging.SetPrivPermissions:
		return e.setPermissions(requester, v.Op.Address, v.Op.Payload)
	default:
		return messaging.NewError(messaging.KindInvalidOperation, fmt.Sprintf("unsupported write %T", op))
	}
}

func (e *Engine) create(ctx context.Context, requester keys.PublicKey, d sequence.Data) error {
	if err := d.Validate(); err != nil {
		switch {
		case errors.Is(err, sequence.ErrMissingOwner):
			return messaging.WrapError(messaging.KindInvalidOwners, err.Error(), err)
		case errors.Is(err, sequence.ErrPermissionsKind):
			return messaging.WrapError(messaging.KindInvalidPermissions, err.Error(), err)
		default:
			return messaging.WrapError(messaging.KindInvalidOperation, err.Error(), err)
		}
	}
	if d.Owner.PublicKey != requester {
		return accessDenied(messaging.WriteNew.String(), d.Address)
	}
	if _, exists := e.seqs[d.Address]; exists {
		return messaging.NewError(messaging.KindDataExists, d.Address.String())
	}

	ids, err := e.putEntries(ctx, d.Entries)
	if err != nil {
		return err
	}
	perms := d.Permissions
	if perms == nil {
		perms = emptyPermissions(d.Address.Kind)
	}
	owner := d.Owner
	owner.EntriesIndex = uint64(len(ids))
	owner.PermissionsIndex = 0
	e.seqs[d.Address] = &record{
		owner:       owner,
		perms:       perms,
		entries:     ids,
		ownersIndex: 1,
	}
	return nil
}

func (e *Engine) appendEntry(ctx context.Context, requester keys.PublicKey, op sequence.WriteOp[sequence.Entry]) error {
	rec, err := e.lookup(op.Address)
	if err != nil {
		return err
	}
	if !rec.canAppend(requester) {
		return accessDenied(messaging.WriteEdit.String(), op.Address)
	}
	ids, err := e.putEntries(ctx, []sequence.Entry{op.Payload})
	if err != nil {
		return err
	}
	rec.entries = append(rec.entries, ids...)
	return nil
}

func (e *Engine) delete(ctx context.Context, requester keys.PublicKey, addr sequence.Address) error {
	rec, err := e.lookup(addr)
	if err != nil {
		return err
	}
	if addr.IsPub() {
		return messaging.NewError(messaging.KindInvalidOperation, "public sequences cannot be deleted")
	}
	if !rec.isOwner(requester) {
		return accessDenied(messaging.WriteDelete.String(), addr)
	}
	delete(e.seqs, addr)
	var firstErr error
	for _, id := range rec.entries {
		if err := e.release(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Engine) setOwner(requester keys.PublicKey, op sequence.WriteOp[sequence.Owner]) error {
	rec, err := e.lookup(op.Address)
	if err != nil {
		return err
	}
	if !rec.isOwner(requester) {
		return accessDenied(messaging.WriteSetOwner.String(), op.Address)
	}
	if op.Payload.PublicKey.IsZero() {
		return messaging.NewError(messaging.KindInvalidOwners, "new owner key is required")
	}
	rec.owner = sequence.Owner{
		PublicKey:        op.Payload.PublicKey,
		EntriesIndex:     uint64(len(rec.entries)),
		PermissionsIndex: rec.permsIndex,
	}
	rec.ownersIndex++
	return nil
}

func (e *Engine) setPermissions(requester keys.PublicKey, addr sequence.Address, p sequence.Permissions) error {
	rec, err := e.lookup(addr)
	if err != nil {
		return err
	}
	if p.Kind() != addr.Kind {
		return messaging.NewError(messaging.KindInvalidPermissions, fmt.Sprintf("%s permissions on a %s sequence", p.Kind(), addr.Kind))
	}
	if !rec.isAdmin(requester) {
		return accessDenied("permissions change", addr)
	}
	switch v := p.(type) {
	case sequence.PubPermissions:
		v.EntriesIndex, v.OwnersIndex = uint64(len(rec.entries)), rec.ownersIndex
		p = v
	case sequence.PrivPermissions:
		v.EntriesIndex, v.OwnersIndex = uint64(len(rec.entries)), rec.ownersIndex
		p = v
	}
	rec.perms = p
	rec.permsIndex++
	return nil
}

// putEntries stores entries and takes a reference on each chunk. On failure
// the references taken so far are released.
func (e *Engine) putEntries(ctx context.Context, entries []sequence.Entry) ([]cid.Cid, error) {
	ids := make([]cid.Cid, 0, len(entries))
	for _, entry := range entries {
		id, err := e.store.Put(ctx, entry)
		if err != nil {
			for _, done := range ids {
				_ = e.release(ctx, done)
			}
			return nil, internal("store entry", err)
		}
		e.refs[id]++
		ids = append(ids, id)
	}
	return ids, nil
}

// release drops one reference and deletes the chunk once unreferenced.
func (e *Engine) release(ctx context.Context, id cid.Cid) error {
	e.refs[id]--
	if e.refs[id] > 0 {
		return nil
	}
	delete(e.refs, id)
	if err := e.store.Delete(ctx, id); err != nil && !storage.IsNotFound(err) {
		return internal("delete entry "+id.String(), err)
	}
	return nil
}
