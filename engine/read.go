package engine

import (
	"context"
	"fmt"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
)

// Read executes op on behalf of requester and returns the successful
// response. Failures are returned as errors for the caller to correlate.
func (e *Engine) Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) (messaging.QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr := messaging.ReadAddress(op)

	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, err := e.lookup(addr)
	if err != nil {
		return nil, err
	}
	if !rec.canRead(addr, requester) {
		return nil, accessDenied(messaging.ReadName(op), addr)
	}

	switch v := op.(type) {
	case messaging.GetSequence:
		entries, err := e.fetch(ctx, rec.entries)
		if err != nil {
			return nil, err
		}
		return messaging.GetSequenceResponse{Result: messaging.Ok(sequence.Data{
			Address:     addr,
			Owner:       rec.owner,
			Permissions: rec.perms,
			Entries:     entries,
		})}, nil

	case messaging.GetSequenceRange:
		start, end, ok := v.Range.Resolve(uint64(len(rec.entries)))
		if !ok {
			return nil, messaging.NewError(messaging.KindNoSuchEntry, fmt.Sprintf("range %s..%s outside %d entries", v.Range.Start, v.Range.End, len(rec.entries)))
		}
		entries, err := e.fetch(ctx, rec.entries[start:end])
		if err != nil {
			return nil, err
		}
		return messaging.GetSequenceRangeResponse{Result: messaging.Ok(entries)}, nil

	case messaging.GetSequenceLastEntry:
		n := len(rec.entries)
		if n == 0 {
			return nil, messaging.NewError(messaging.KindNoSuchEntry, "sequence is empty")
		}
		entries, err := e.fetch(ctx, rec.entries[n-1:])
		if err != nil {
			return nil, err
		}
		return messaging.GetSequenceLastEntryResponse{Result: messaging.Ok(sequence.IndexedEntry{
			Index: uint64(n - 1),
			Entry: entries[0],
		})}, nil

	case messaging.GetSequencePermissions:
		return messaging.GetSequencePermissionsResponse{Result: messaging.Ok(rec.perms)}, nil

	case messaging.GetSequenceUserPermissions:
		up, ok := rec.perms.ForUser(v.User)
		if !ok {
			return nil, messaging.NewError(messaging.KindNoSuchEntry, "no permissions for "+v.User.String())
		}
		return messaging.GetSequenceUserPermissionsResponse{Result: messaging.Ok(up)}, nil

	case messaging.GetSequenceOwner:
		return messaging.GetSequenceOwnerResponse{Result: messaging.Ok(rec.owner)}, nil

	default:
		return nil, messaging.NewError(messaging.KindInvalidOperation, fmt.Sprintf("unsupported read %T", op))
	}
}
