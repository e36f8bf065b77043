// Package engine is a single-replica reference executor for Sequence
// requests.
//
// Sequence metadata (owner, permissions, entry list) is kept in memory and
// entry bytes live in a storage.Store, keyed by CID. Access rules enforced
// here:
//   - reads of a private Sequence need the owner or a read grant;
//   - appends need the owner or an append grant;
//   - permission changes need the owner or an admin grant, and the new set
//     must match the Sequence visibility;
//   - only the owner may delete a Sequence or hand ownership over;
//   - public Sequences can never be deleted.
//
// Engine also implements the coarse per-kind gate used by dispatch
// (Authorize).
package engine
