package messaging

import (
	"crypto/ed25519"
	"testing"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/xorname"
)

func testKey(t *testing.T, b byte) keys.PublicKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	k, err := keys.PublicKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("PublicKeyFromSeed: %v", err)
	}
	return k
}

func pubAddr() sequence.Address {
	return sequence.PublicAddress(xorname.FromContent([]byte("public seq")), 1)
}

func privAddr() sequence.Address {
	return sequence.PrivateAddress(xorname.FromContent([]byte("private seq")), 1)
}

// allReads returns one value of every read variant targeting addr.
func allReads(t *testing.T, addr sequence.Address) []SequenceRead {
	t.Helper()
	return []SequenceRead{
		GetSequence{Address: addr},
		GetSequenceRange{Address: addr, Range: sequence.FullRange()},
		GetSequenceLastEntry{Address: addr},
		GetSequencePermissions{Address: addr},
		GetSequenceUserPermissions{Address: addr, User: sequence.UserKey(testKey(t, 9))},
		GetSequenceOwner{Address: addr},
	}
}

// allWrites returns one value of every write variant targeting addr.
func allWrites(t *testing.T, addr sequence.Address) []SequenceWrite {
	t.Helper()
	owner := sequence.Owner{PublicKey: testKey(t, 1)}
	dot := sequence.Dot{Actor: owner.PublicKey.Name(), Counter: 1}
	return []SequenceWrite{
		NewSequence{Data: sequence.Data{Address: addr, Owner: owner}},
		EditSequence{Op: sequence.NewWriteOp(addr, dot, sequence.Entry("entry"))},
		DeleteSequence{Address: addr},
		SetSequenceOwner{Op: sequence.NewWriteOp(addr, dot, owner)},
		SetPubPermissions{Op: sequence.NewWriteOp(addr, dot, sequence.PubPermissions{})},
		SetPrivPermissions{Op: sequence.NewWriteOp(addr, dot, sequence.PrivPermissions{})},
	}
}
