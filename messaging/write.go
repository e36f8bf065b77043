package messaging

import (
	"fmt"

	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/xorname"
)

// WriteKind discriminates the SequenceWrite variants.
type WriteKind uint8

const (
	WriteNew WriteKind = iota
	WriteEdit
	WriteDelete
	WriteSetOwner
	WriteSetPubPermissions
	WriteSetPrivPermissions

	numWriteKinds
)

// WriteKinds returns every WriteKind in declaration order.
func WriteKinds() []WriteKind {
	out := make([]WriteKind, 0, numWriteKinds)
	for k := WriteKind(0); k < numWriteKinds; k++ {
		out = append(out, k)
	}
	return out
}

func (k WriteKind) Valid() bool { return k < numWriteKinds }

// SequenceWrite is a mutation of one Sequence. The set of implementations is
// closed to this package.
type SequenceWrite interface {
	Kind() WriteKind
	sequenceWrite()
}

// NewSequence creates a Sequence. The descriptor carries its own address.
type NewSequence struct {
	Data sequence.Data `json:"data"`
}

// EditSequence appends one entry.
type EditSequence struct {
	Op sequence.WriteOp[sequence.Entry] `json:"op"`
}

// DeleteSequence deletes a private Sequence. It must fail for a public one,
// and only the owner may perform it; both checks belong to the engine.
type DeleteSequence struct {
	Address sequence.Address `json:"address"`
}

// SetSequenceOwner replaces the owner. Only the current owner may do this.
type SetSequenceOwner struct {
	Op sequence.WriteOp[sequence.Owner] `json:"op"`
}

// SetPubPermissions replaces the permissions of a public Sequence.
type SetPubPermissions struct {
	Op sequence.WriteOp[sequence.PubPermissions] `json:"op"`
}

// SetPrivPermissions replaces the permissions of a private Sequence.
type SetPrivPermissions struct {
	Op sequence.WriteOp[sequence.PrivPermissions] `json:"op"`
}

func (NewSequence) Kind() WriteKind        { return WriteNew }
func (EditSequence) Kind() WriteKind       { return WriteEdit }
func (DeleteSequence) Kind() WriteKind     { return WriteDelete }
func (SetSequenceOwner) Kind() WriteKind   { return WriteSetOwner }
func (SetPubPermissions) Kind() WriteKind  { return WriteSetPubPermissions }
func (SetPrivPermissions) Kind() WriteKind { return WriteSetPrivPermissions }

func (NewSequence) sequenceWrite()        {}
func (EditSequence) sequenceWrite()       {}
func (DeleteSequence) sequenceWrite()     {}
func (SetSequenceOwner) sequenceWrite()   {}
func (SetPubPermissions) sequenceWrite()  {}
func (SetPrivPermissions) sequenceWrite() {}

// WriteErrorResponse wraps err in the uniform CmdError shape. op's kind does
// not affect the result.
func WriteErrorResponse(op SequenceWrite, err error) *CmdError {
	checkWrite(op)
	return &CmdError{Err: err}
}

// WriteAuthorisation is Write for every variant. Finer gating (owner-only
// Delete and SetOwner, admin-only permission changes) is the engine's job.
func WriteAuthorisation(op SequenceWrite) AuthorisationKind {
	checkWrite(op)
	return Write
}

// WriteDestination returns the content name of the Sequence op targets.
func WriteDestination(op SequenceWrite) xorname.Name {
	if v, ok := op.(NewSequence); ok {
		return v.Data.Name()
	}
	return WriteAddress(op).Name
}

// WriteAddress returns the address op targets.
func WriteAddress(op SequenceWrite) sequence.Address {
	switch v := op.(type) {
	case NewSequence:
		return v.Data.Address
	case EditSequence:
		return v.Op.Address
	case DeleteSequence:
		return v.Address
	case SetSequenceOwner:
		return v.Op.Address
	case SetPubPermissions:
		return v.Op.Address
	case SetPrivPermissions:
		return v.Op.Address
	default:
		panic(fmt.Sprintf("messaging: unknown write %T", op))
	}
}

func checkWrite(op SequenceWrite) WriteKind {
	k := op.Kind()
	if !k.Valid() {
		panic(fmt.Sprintf("messaging: unknown write kind %d", uint8(k)))
	}
	return k
}
