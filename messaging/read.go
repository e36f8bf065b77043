package messaging

import (
	"fmt"

	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/xorname"
)

// ReadKind discriminates the SequenceRead variants.
type ReadKind uint8

const (
	ReadGet ReadKind = iota
	ReadGetRange
	ReadGetLastEntry
	ReadGetPermissions
	ReadGetUserPermissions
	ReadGetOwner

	numReadKinds
)

// ReadKinds returns every ReadKind in declaration order.
func ReadKinds() []ReadKind {
	out := make([]ReadKind, 0, numReadKinds)
	for k := ReadKind(0); k < numReadKinds; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k names a known variant.
func (k ReadKind) Valid() bool { return k < numReadKinds }

// SequenceRead is a query against one Sequence. The set of implementations is
// closed to this package.
type SequenceRead interface {
	Kind() ReadKind
	sequenceRead()
}

// GetSequence fetches the full current state.
type GetSequence struct {
	Address sequence.Address `json:"address"`
}

// GetSequenceRange fetches the entries within Range. The bounds are passed
// through to the engine untouched.
type GetSequenceRange struct {
	Address sequence.Address `json:"address"`
	Range   sequence.Range   `json:"range"`
}

// GetSequenceLastEntry fetches the most recent entry.
type GetSequenceLastEntry struct {
	Address sequence.Address `json:"address"`
}

// GetSequencePermissions lists all current user permissions.
type GetSequencePermissions struct {
	Address sequence.Address `json:"address"`
}

// GetSequenceUserPermissions fetches the permissions of a single user.
type GetSequenceUserPermissions struct {
	Address sequence.Address `json:"address"`
	User    sequence.User    `json:"user"`
}

// GetSequenceOwner fetches the current owner.
type GetSequenceOwner struct {
	Address sequence.Address `json:"address"`
}

func (GetSequence) Kind() ReadKind                { return ReadGet }
func (GetSequenceRange) Kind() ReadKind           { return ReadGetRange }
func (GetSequenceLastEntry) Kind() ReadKind       { return ReadGetLastEntry }
func (GetSequencePermissions) Kind() ReadKind     { return ReadGetPermissions }
func (GetSequenceUserPermissions) Kind() ReadKind { return ReadGetUserPermissions }
func (GetSequenceOwner) Kind() ReadKind           { return ReadGetOwner }

func (GetSequence) sequenceRead()                {}
func (GetSequenceRange) sequenceRead()           {}
func (GetSequenceLastEntry) sequenceRead()       {}
func (GetSequencePermissions) sequenceRead()     {}
func (GetSequenceUserPermissions) sequenceRead() {}
func (GetSequenceOwner) sequenceRead()           {}

// readErrorShapes builds the failure response for each read kind.
var readErrorShapes = [numReadKinds]func(error) QueryResponse{
	ReadGet: func(err error) QueryResponse {
		return GetSequenceResponse{Result: Fail[sequence.Data](err)}
	},
	ReadGetRange: func(err error) QueryResponse {
		return GetSequenceRangeResponse{Result: Fail[[]sequence.Entry](err)}
	},
	ReadGetLastEntry: func(err error) QueryResponse {
		return GetSequenceLastEntryResponse{Result: Fail[sequence.IndexedEntry](err)}
	},
	ReadGetPermissions: func(err error) QueryResponse {
		return GetSequencePermissionsResponse{Result: Fail[sequence.Permissions](err)}
	},
	ReadGetUserPermissions: func(err error) QueryResponse {
		return GetSequenceUserPermissionsResponse{Result: Fail[sequence.UserPermissions](err)}
	},
	ReadGetOwner: func(err error) QueryResponse {
		return GetSequenceOwnerResponse{Result: Fail[sequence.Owner](err)}
	},
}

// ReadErrorResponse returns the response to op carrying err in its failure
// slot. The response kind always equals op.Kind().
func ReadErrorResponse(op SequenceRead, err error) QueryResponse {
	return readErrorShapes[checkRead(op)](err)
}

// ReadAuthorisation returns PublicRead for reads of a public Sequence and
// PrivateRead otherwise. The query kind plays no part.
func ReadAuthorisation(op SequenceRead) AuthorisationKind {
	if readAddress(op).IsPub() {
		return PublicRead
	}
	return PrivateRead
}

// ReadDestination returns the content name of the Sequence op targets.
func ReadDestination(op SequenceRead) xorname.Name {
	return readAddress(op).Name
}

// ReadAddress returns the address op targets.
func ReadAddress(op SequenceRead) sequence.Address {
	return readAddress(op)
}

func readAddress(op SequenceRead) sequence.Address {
	switch v := op.(type) {
	case GetSequence:
		return v.Address
	case GetSequenceRange:
		return v.Address
	case GetSequenceLastEntry:
		return v.Address
	case GetSequencePermissions:
		return v.Address
	case GetSequenceUserPermissions:
		return v.Address
	case GetSequenceOwner:
		return v.Address
	default:
		panic(fmt.Sprintf("messaging: unknown read %T", op))
	}
}

func checkRead(op SequenceRead) ReadKind {
	k := op.Kind()
	if !k.Valid() {
		panic(fmt.Sprintf("messaging: unknown read kind %d", uint8(k)))
	}
	return k
}
